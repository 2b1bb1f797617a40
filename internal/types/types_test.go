package types

import (
	"strings"
	"testing"
)

func sampleRecord() CandidateRecord {
	return CandidateRecord{
		ID:             "rec-1",
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Phone:          NotFound,
		Education:      "BSc Computer Science",
		Experience:     "Backend Engineer at Initech\nIntern at Hooli",
		Skills:         "Go, Rust, PostgreSQL",
		Certifications: NotFound,
	}
}

func TestRenderResumeText(t *testing.T) {
	record := sampleRecord()
	text := RenderResumeText(record)

	if !strings.HasPrefix(text, "Name: Jane Doe\n") {
		t.Errorf("Expected rendered text to start with the name section, got %q", text)
	}
	if !strings.Contains(text, "Phone: Not found") {
		t.Error("Expected missing phone to render the sentinel")
	}
	if strings.HasSuffix(text, "\n") {
		t.Error("Expected trailing newline to be trimmed")
	}

	// Rendering depends only on the structured fields, so it is stable
	if again := RenderResumeText(record); again != text {
		t.Error("Expected rendering to be deterministic")
	}
}

func TestRenderResumeTextEmptyFieldsUseSentinel(t *testing.T) {
	text := RenderResumeText(CandidateRecord{Name: "Jane Doe"})

	for _, label := range []string{"Email", "Phone", "Education", "Experience", "Skills", "Certifications"} {
		if !strings.Contains(text, label+": "+NotFound) {
			t.Errorf("Expected empty %s to render as %q", label, NotFound)
		}
	}
}

func TestDeriveTopSkill(t *testing.T) {
	tests := []struct {
		skills   string
		expected string
	}{
		{"Go, Rust, PostgreSQL", "Go"},
		{"  Kubernetes  ", "Kubernetes"},
		{"Single", "Single"},
		{NotFound, ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DeriveTopSkill(tt.skills); got != tt.expected {
			t.Errorf("DeriveTopSkill(%q) = %q, want %q", tt.skills, got, tt.expected)
		}
	}
}

func TestDeriveRole(t *testing.T) {
	tests := []struct {
		experience string
		expected   string
	}{
		{"Backend Engineer at Initech\nIntern at Hooli", "Backend Engineer at Initech"},
		{"Staff Engineer", "Staff Engineer"},
		{NotFound, ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := DeriveRole(tt.experience); got != tt.expected {
			t.Errorf("DeriveRole(%q) = %q, want %q", tt.experience, got, tt.expected)
		}
	}
}

func TestInitials(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Jane Doe", "JD"},
		{"jane", "J"},
		{"Ada Augusta Lovelace", "AA"},
		{"émile zola", "ÉZ"},
		{NotFound, ""},
		{"", ""},
	}

	for _, tt := range tests {
		if got := Initials(tt.name); got != tt.expected {
			t.Errorf("Initials(%q) = %q, want %q", tt.name, got, tt.expected)
		}
	}
}

func TestDeriveAvatarURL(t *testing.T) {
	if got := DeriveAvatarURL("Jane Doe"); got != "https://ui-avatars.com/api/?name=JD" {
		t.Errorf("Unexpected avatar URL: %q", got)
	}
	// Unknown names fall back to a placeholder rather than an empty query
	if got := DeriveAvatarURL(NotFound); !strings.Contains(got, "name=%3F") {
		t.Errorf("Expected fallback initials in avatar URL, got %q", got)
	}
}

func TestRefreshRecomputesDerivedFields(t *testing.T) {
	record := sampleRecord()
	record.Refresh()

	if record.TopSkill != "Go" {
		t.Errorf("Expected top skill 'Go', got %q", record.TopSkill)
	}
	if record.Role != "Backend Engineer at Initech" {
		t.Errorf("Expected role 'Backend Engineer at Initech', got %q", record.Role)
	}
	if record.ResumeTextContent != RenderResumeText(record) {
		t.Error("Expected resume text content to match rendering of current fields")
	}

	record.Skills = "Rust, Go"
	record.Refresh()
	if record.TopSkill != "Rust" {
		t.Errorf("Expected top skill to track updated skills, got %q", record.TopSkill)
	}
}

func TestApplyPatchMergesOnlyProvidedFields(t *testing.T) {
	record := sampleRecord()
	record.Refresh()

	newName := "Janet Doe"
	newSkills := "Rust, Go"
	record.ApplyPatch(RecordPatch{Name: &newName, Skills: &newSkills})

	if record.Name != newName {
		t.Errorf("Expected patched name %q, got %q", newName, record.Name)
	}
	if record.Email != "jane@example.com" {
		t.Errorf("Expected unpatched email preserved, got %q", record.Email)
	}
	if record.TopSkill != "Rust" {
		t.Errorf("Expected derived fields recomputed after patch, got top skill %q", record.TopSkill)
	}
	if !strings.Contains(record.ResumeTextContent, "Name: Janet Doe") {
		t.Error("Expected resume text to reflect the patched name")
	}
}

func TestApplyParsedReplacesStructuredFields(t *testing.T) {
	record := sampleRecord()
	summary := "existing summary"
	record.DiscoverySummary = &summary
	record.Refresh()

	record.ApplyParsed(ParseResumeOutput{
		Name:           "New Name",
		Email:          "new@example.com",
		Phone:          "555-0100",
		Education:      NotFound,
		Experience:     "SRE at Example Corp",
		Skills:         "Terraform",
		Certifications: NotFound,
	})

	if record.Name != "New Name" {
		t.Errorf("Expected replaced name, got %q", record.Name)
	}
	if record.Role != "SRE at Example Corp" {
		t.Errorf("Expected derived role from new experience, got %q", record.Role)
	}
	// Pipeline outputs survive a re-parse
	if record.DiscoverySummary == nil || *record.DiscoverySummary != summary {
		t.Error("Expected discovery summary to be preserved across re-parse")
	}
}

func TestValidApplicationStatus(t *testing.T) {
	for _, s := range []ApplicationStatus{StatusApplied, StatusScreening, StatusInterviewing, StatusOffered, StatusHired, StatusRejected} {
		if !ValidApplicationStatus(s) {
			t.Errorf("Expected %q to be a valid status", s)
		}
	}
	if ValidApplicationStatus("Ghosted") {
		t.Error("Expected unknown status to be invalid")
	}
}
