package types

import (
	"net/url"
	"strings"
)

// NotFound is the sentinel emitted when resume extraction cannot locate a
// field. Fields are never left ambiguously empty vs. absent.
const NotFound = "Not found"

// CandidateRecord aggregates resume-derived and pipeline-derived data for
// one person under evaluation.
type CandidateRecord struct {
	ID          string `json:"id"`
	ExternalUID string `json:"externalUid,omitempty"`

	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`

	Education      string `json:"education"`
	Experience     string `json:"experience"`
	Skills         string `json:"skills"`
	Certifications string `json:"certifications"`

	// Derived fields, regenerated on every structured-field write.
	ResumeTextContent string `json:"resumeTextContent"`
	TopSkill          string `json:"topSkill"`
	Role              string `json:"role"`
	AvatarURL         string `json:"avatarUrl"`

	// Pipeline outputs, nil until the corresponding stage has run.
	FitScore         *int    `json:"fitScore,omitempty"`
	FitJustification *string `json:"fitJustification,omitempty"`
	DiscoverySummary *string `json:"discoverySummary,omitempty"`
	FlagSummary      *string `json:"flagSummary,omitempty"`
	Flagged          *bool   `json:"flagged,omitempty"`

	// Current job application, nil until one is recorded. A new
	// application overwrites the previous one.
	Application *JobApplication `json:"application,omitempty"`
}

// RecordPatch is a shallow field-level update of the structured resume
// fields. Nil fields are left untouched.
type RecordPatch struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	Education      *string `json:"education,omitempty"`
	Experience     *string `json:"experience,omitempty"`
	Skills         *string `json:"skills,omitempty"`
	Certifications *string `json:"certifications,omitempty"`
}

// ParseResumeInput represents the input for parsing raw resume text
type ParseResumeInput struct {
	ResumeText string `json:"resumeText"`
}

// ParseResumeOutput represents the structured fields extracted from a resume
type ParseResumeOutput struct {
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone"`
	Education      string `json:"education"`
	Experience     string `json:"experience"`
	Skills         string `json:"skills"`
	Certifications string `json:"certifications"`
}

// DiscoverProfileInput represents the input for profile discovery
type DiscoverProfileInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// DiscoverProfileOutput represents the model-generated presence summary.
// No real lookup is performed; the summary is an impression inferred from
// the name and email alone and must not be treated as verified data.
type DiscoverProfileOutput struct {
	Summary string `json:"summary"`
}

// DetectFlagsInput represents the input for red-flag detection
type DetectFlagsInput struct {
	ResumeText       string `json:"resumeText"`
	DiscoverySummary string `json:"discoverySummary"`
}

// DetectFlagsOutput represents the red-flag assessment
type DetectFlagsOutput struct {
	Inconsistencies string `json:"inconsistencies"`
	Flagged         bool   `json:"flagged"`
}

// MatchRoleInput represents the input for matching a resume against a role
type MatchRoleInput struct {
	ResumeText     string `json:"resumeText"`
	JobDescription string `json:"jobDescription"`
}

// MatchRoleOutput represents the fit assessment for a role
type MatchRoleOutput struct {
	FitmentScore  int    `json:"fitmentScore"`
	Justification string `json:"justification"`
}

// ApplicationStatus is the status of a candidate's application to a job.
// Any status may follow any other; the store records a single overwrite.
type ApplicationStatus string

const (
	StatusApplied      ApplicationStatus = "Applied"
	StatusScreening    ApplicationStatus = "Screening"
	StatusInterviewing ApplicationStatus = "Interviewing"
	StatusOffered      ApplicationStatus = "Offered"
	StatusHired        ApplicationStatus = "Hired"
	StatusRejected     ApplicationStatus = "Rejected"
)

// ValidApplicationStatus reports whether s is one of the known statuses.
func ValidApplicationStatus(s ApplicationStatus) bool {
	switch s {
	case StatusApplied, StatusScreening, StatusInterviewing, StatusOffered, StatusHired, StatusRejected:
		return true
	}
	return false
}

// JobApplication links a candidate record to a job identifier.
type JobApplication struct {
	CandidateID string            `json:"candidateId"`
	JobID       string            `json:"jobId"`
	Status      ApplicationStatus `json:"status"`
}

// RenderResumeText flattens the structured resume fields into plain text.
// The result depends only on the structured fields, so regenerating it
// after any merge keeps ResumeTextContent consistent with its sources.
func RenderResumeText(r CandidateRecord) string {
	var b strings.Builder
	writeSection(&b, "Name", r.Name)
	writeSection(&b, "Email", r.Email)
	writeSection(&b, "Phone", r.Phone)
	writeSection(&b, "Education", r.Education)
	writeSection(&b, "Experience", r.Experience)
	writeSection(&b, "Skills", r.Skills)
	writeSection(&b, "Certifications", r.Certifications)
	return strings.TrimRight(b.String(), "\n")
}

func writeSection(b *strings.Builder, label, value string) {
	if value == "" {
		value = NotFound
	}
	b.WriteString(label)
	b.WriteString(": ")
	b.WriteString(value)
	b.WriteString("\n")
}

// DeriveTopSkill returns the first comma-separated token of the skills
// summary, or empty when no skills were extracted.
func DeriveTopSkill(skills string) string {
	if skills == "" || skills == NotFound {
		return ""
	}
	first, _, _ := strings.Cut(skills, ",")
	return strings.TrimSpace(first)
}

// DeriveRole returns the first line of the experience summary, or empty
// when no experience was extracted.
func DeriveRole(experience string) string {
	if experience == "" || experience == NotFound {
		return ""
	}
	first, _, _ := strings.Cut(experience, "\n")
	return strings.TrimSpace(first)
}

// DeriveAvatarURL builds a deterministic placeholder avatar from the
// candidate's initials.
func DeriveAvatarURL(name string) string {
	initials := Initials(name)
	if initials == "" {
		initials = "?"
	}
	return "https://ui-avatars.com/api/?name=" + url.QueryEscape(initials)
}

// Initials returns the uppercased first letters of up to the first two
// words of name. Sentinel or empty names yield an empty string.
func Initials(name string) string {
	if name == "" || name == NotFound {
		return ""
	}
	words := strings.Fields(name)
	var b strings.Builder
	for i, w := range words {
		if i == 2 {
			break
		}
		runes := []rune(w)
		b.WriteString(strings.ToUpper(string(runes[0])))
	}
	return b.String()
}

// Refresh recomputes every derived field from the structured fields.
func (r *CandidateRecord) Refresh() {
	r.ResumeTextContent = RenderResumeText(*r)
	r.TopSkill = DeriveTopSkill(r.Skills)
	r.Role = DeriveRole(r.Experience)
	r.AvatarURL = DeriveAvatarURL(r.Name)
}

// ApplyPatch merges non-nil patch fields into the structured resume fields
// and recomputes the derived fields.
func (r *CandidateRecord) ApplyPatch(p RecordPatch) {
	if p.Name != nil {
		r.Name = *p.Name
	}
	if p.Email != nil {
		r.Email = *p.Email
	}
	if p.Phone != nil {
		r.Phone = *p.Phone
	}
	if p.Education != nil {
		r.Education = *p.Education
	}
	if p.Experience != nil {
		r.Experience = *p.Experience
	}
	if p.Skills != nil {
		r.Skills = *p.Skills
	}
	if p.Certifications != nil {
		r.Certifications = *p.Certifications
	}
	r.Refresh()
}

// ApplyParsed replaces the structured resume fields from a parse output
// and recomputes the derived fields. Pipeline outputs are left untouched.
func (r *CandidateRecord) ApplyParsed(out ParseResumeOutput) {
	r.Name = out.Name
	r.Email = out.Email
	r.Phone = out.Phone
	r.Education = out.Education
	r.Experience = out.Experience
	r.Skills = out.Skills
	r.Certifications = out.Certifications
	r.Refresh()
}
