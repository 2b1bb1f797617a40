package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"talentlens/internal/errors"
	"talentlens/internal/types"
)

func newTestStore(t *testing.T) (*CandidateStore, *MemoryCollection) {
	t.Helper()
	collection := NewMemoryCollection()
	s, err := NewCandidateStore(context.Background(), collection, nil)
	if err != nil {
		t.Fatalf("NewCandidateStore() error = %v", err)
	}
	return s, collection
}

func sampleParse() types.ParseResumeOutput {
	return types.ParseResumeOutput{
		Name:           "Jane Doe",
		Email:          "jane@example.com",
		Phone:          types.NotFound,
		Education:      "BSc Computer Science",
		Experience:     "Backend Engineer at Initech\n5 years building billing systems",
		Skills:         "Go, Rust, PostgreSQL",
		Certifications: types.NotFound,
	}
}

func TestCreateRequiresNameAndEmail(t *testing.T) {
	s, _ := newTestStore(t)

	parsed := sampleParse()
	parsed.Name = types.NotFound
	if _, err := s.Create(context.Background(), "", parsed); err == nil {
		t.Error("expected error creating record without a name")
	}

	parsed = sampleParse()
	parsed.Email = ""
	if _, err := s.Create(context.Background(), "", parsed); err == nil {
		t.Error("expected error creating record without an email")
	}
}

func TestCreateAndGet(t *testing.T) {
	s, _ := newTestStore(t)

	created, err := s.Create(context.Background(), "u1", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created.ID == "" {
		t.Error("expected store-assigned id")
	}
	if created.TopSkill != "Go" {
		t.Errorf("TopSkill = %q, want %q", created.TopSkill, "Go")
	}
	if created.Role != "Backend Engineer at Initech" {
		t.Errorf("Role = %q, want first experience line", created.Role)
	}
	if created.ResumeTextContent == "" {
		t.Error("expected regenerated resume text content")
	}

	got, err := s.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Name != "Jane Doe" {
		t.Errorf("Name = %q, want %q", got.Name, "Jane Doe")
	}
}

func TestCreateDuplicateExternalUID(t *testing.T) {
	s, _ := newTestStore(t)

	if _, err := s.Create(context.Background(), "u1", sampleParse()); err != nil {
		t.Fatalf("first Create() error = %v", err)
	}

	_, err := s.Create(context.Background(), "u1", sampleParse())
	if !errors.IsCode(err, errors.ErrCodeDuplicateRecord) {
		t.Errorf("second Create() error = %v, want code %s", err, errors.ErrCodeDuplicateRecord)
	}
}

func TestUpsertByUIDSingleRecord(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	nameA := "A"
	if _, err := s.UpsertByUID(ctx, "u1", types.RecordPatch{Name: &nameA}); err != nil {
		t.Fatalf("first UpsertByUID() error = %v", err)
	}

	nameB := "B"
	record, err := s.UpsertByUID(ctx, "u1", types.RecordPatch{Name: &nameB})
	if err != nil {
		t.Fatalf("second UpsertByUID() error = %v", err)
	}

	records := s.List(ctx)
	if len(records) != 1 {
		t.Fatalf("len(List()) = %d, want 1", len(records))
	}
	if records[0].Name != "B" {
		t.Errorf("Name = %q, want %q", records[0].Name, "B")
	}
	if records[0].ID != record.ID {
		t.Errorf("upsert returned id %s, store holds %s", record.ID, records[0].ID)
	}
}

func TestUpsertRegeneratesDerivedFields(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	skills := "Rust, Go"
	updated, err := s.UpsertByUID(ctx, "u1", types.RecordPatch{Skills: &skills})
	if err != nil {
		t.Fatalf("UpsertByUID() error = %v", err)
	}
	if updated.TopSkill != "Rust" {
		t.Errorf("TopSkill = %q, want %q", updated.TopSkill, "Rust")
	}
	if updated.ResumeTextContent == created.ResumeTextContent {
		t.Error("expected resume text content to be regenerated after merge")
	}
	if updated.ResumeTextContent != types.RenderResumeText(*updated) {
		t.Error("resume text content inconsistent with its source fields")
	}
}

func TestDeleteMissingRecord(t *testing.T) {
	s, _ := newTestStore(t)

	err := s.Delete(context.Background(), "no-such-id")
	if !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Delete() error = %v, want code %s", err, errors.ErrCodeRecordNotFound)
	}
}

func TestDeleteRemovesFromBothLayers(t *testing.T) {
	s, collection := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	if _, err := s.Get(ctx, created.ID); !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Get() after delete error = %v, want code %s", err, errors.ErrCodeRecordNotFound)
	}
	if _, err := collection.Get(ctx, created.ID); !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("collection Get() after delete error = %v, want code %s", err, errors.ErrCodeRecordNotFound)
	}

	// The external uid is free for reuse after delete.
	if _, err := s.Create(ctx, "u1", sampleParse()); err != nil {
		t.Errorf("Create() after delete error = %v", err)
	}
}

func TestRecordPipelineOutput(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	record, err := s.RecordPipelineOutput(ctx, created.ID, "discover", types.DiscoverProfileOutput{
		Summary: "Active open-source contributor",
	})
	if err != nil {
		t.Fatalf("RecordPipelineOutput(discover) error = %v", err)
	}
	if record.DiscoverySummary == nil || *record.DiscoverySummary != "Active open-source contributor" {
		t.Errorf("DiscoverySummary = %v, want discovery text", record.DiscoverySummary)
	}

	record, err = s.RecordPipelineOutput(ctx, created.ID, "flag", types.DetectFlagsOutput{
		Inconsistencies: "None detected",
		Flagged:         false,
	})
	if err != nil {
		t.Fatalf("RecordPipelineOutput(flag) error = %v", err)
	}
	if record.Flagged == nil || *record.Flagged {
		t.Errorf("Flagged = %v, want false", record.Flagged)
	}

	record, err = s.RecordPipelineOutput(ctx, created.ID, "match", types.MatchRoleOutput{
		FitmentScore:  82,
		Justification: "Strong backend background",
	})
	if err != nil {
		t.Fatalf("RecordPipelineOutput(match) error = %v", err)
	}
	if record.FitScore == nil || *record.FitScore != 82 {
		t.Errorf("FitScore = %v, want 82", record.FitScore)
	}

	// Earlier stage outputs survive later merges.
	if record.DiscoverySummary == nil {
		t.Error("discovery summary lost after later stage merges")
	}
}

func TestRecordPipelineOutputUnknownID(t *testing.T) {
	s, _ := newTestStore(t)

	_, err := s.RecordPipelineOutput(context.Background(), "no-such-id", "match", types.MatchRoleOutput{})
	if !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("RecordPipelineOutput() error = %v, want code %s", err, errors.ErrCodeRecordNotFound)
	}
}

func TestRecordPipelineOutputTypeMismatch(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if _, err := s.RecordPipelineOutput(ctx, created.ID, "match", types.DetectFlagsOutput{}); err == nil {
		t.Error("expected error for output type not matching stage")
	}
}

func TestSetApplication(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	record, err := s.SetApplication(ctx, created.ID, "job-1", types.StatusApplied)
	if err != nil {
		t.Fatalf("SetApplication() error = %v", err)
	}
	if record.Application == nil || record.Application.JobID != "job-1" {
		t.Fatalf("Application = %+v, want job-1", record.Application)
	}
	if record.Application.CandidateID != created.ID {
		t.Errorf("CandidateID = %q, want %q", record.Application.CandidateID, created.ID)
	}

	// A later application overwrites the earlier one.
	record, err = s.SetApplication(ctx, created.ID, "job-2", types.StatusRejected)
	if err != nil {
		t.Fatalf("second SetApplication() error = %v", err)
	}
	if record.Application.JobID != "job-2" || record.Application.Status != types.StatusRejected {
		t.Errorf("Application = %+v, want job-2/Rejected", record.Application)
	}

	if _, err := s.SetApplication(ctx, created.ID, "job-3", "Ghosted"); !errors.IsCode(err, errors.ErrCodeInvalidRequest) {
		t.Errorf("SetApplication(unknown status) error = %v, want code %s", err, errors.ErrCodeInvalidRequest)
	}
	if _, err := s.SetApplication(ctx, "no-such-id", "job-1", types.StatusApplied); !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("SetApplication(unknown id) error = %v, want code %s", err, errors.ErrCodeRecordNotFound)
	}
}

func TestReloadHealsProjection(t *testing.T) {
	s, collection := newTestStore(t)
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Simulate a delete that reached durable storage but not the
	// projection before a crash.
	if err := collection.Delete(ctx, created.ID); err != nil {
		t.Fatalf("collection Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, created.ID); err != nil {
		t.Fatalf("projection should still hold the record, got %v", err)
	}

	if err := s.Reload(ctx); err != nil {
		t.Fatalf("Reload() error = %v", err)
	}
	if _, err := s.Get(ctx, created.ID); !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Get() after reload error = %v, want code %s", err, errors.ErrCodeRecordNotFound)
	}
	if s.Count() != 0 {
		t.Errorf("Count() = %d, want 0", s.Count())
	}
}

func TestCreateDuplicateDetectedFromDurableStore(t *testing.T) {
	s, collection := newTestStore(t)
	ctx := context.Background()

	// Write a document durably without going through the store, as if
	// another writer had created it after the projection was loaded.
	doc := &types.CandidateRecord{
		ID:          "written-elsewhere",
		ExternalUID: "u1",
		Name:        "Jane Doe",
		Email:       "jane@example.com",
	}
	if err := collection.Put(ctx, doc); err != nil {
		t.Fatalf("collection Put() error = %v", err)
	}

	_, err := s.Create(ctx, "u1", sampleParse())
	if !errors.IsCode(err, errors.ErrCodeDuplicateRecord) {
		t.Errorf("Create() error = %v, want code %s", err, errors.ErrCodeDuplicateRecord)
	}
}

func TestUpsertMergesIntoDurableOnlyRecord(t *testing.T) {
	s, collection := newTestStore(t)
	ctx := context.Background()

	doc := &types.CandidateRecord{
		ID:          "written-elsewhere",
		ExternalUID: "u1",
		Name:        "Jane Doe",
		Email:       "jane@example.com",
	}
	if err := collection.Put(ctx, doc); err != nil {
		t.Fatalf("collection Put() error = %v", err)
	}

	name := "Janet Doe"
	record, err := s.UpsertByUID(ctx, "u1", types.RecordPatch{Name: &name})
	if err != nil {
		t.Fatalf("UpsertByUID() error = %v", err)
	}
	if record.ID != "written-elsewhere" {
		t.Errorf("upsert created id %s instead of merging into the durable record", record.ID)
	}
	if record.Name != "Janet Doe" {
		t.Errorf("Name = %q, want %q", record.Name, "Janet Doe")
	}

	// The durable hit is folded back into the projection.
	got, err := s.Get(ctx, "written-elsewhere")
	if err != nil {
		t.Fatalf("Get() after upsert error = %v", err)
	}
	if got.Email != "jane@example.com" {
		t.Errorf("Email = %q, want the durable document's email", got.Email)
	}
}

// gatedCollection blocks one armed Put until released, holding a mutation
// open in the window between its projection read and its durable write.
type gatedCollection struct {
	*MemoryCollection

	mu      sync.Mutex
	armed   bool
	entered chan struct{}
	release chan struct{}
}

func newGatedCollection() *gatedCollection {
	return &gatedCollection{
		MemoryCollection: NewMemoryCollection(),
		entered:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (g *gatedCollection) arm() {
	g.mu.Lock()
	g.armed = true
	g.mu.Unlock()
}

func (g *gatedCollection) Put(ctx context.Context, record *types.CandidateRecord) error {
	g.mu.Lock()
	armed := g.armed
	g.armed = false
	g.mu.Unlock()

	if armed {
		close(g.entered)
		<-g.release
	}
	return g.MemoryCollection.Put(ctx, record)
}

func TestConcurrentUpsertAndDeleteSameRecord(t *testing.T) {
	collection := newGatedCollection()
	s, err := NewCandidateStore(context.Background(), collection, nil)
	if err != nil {
		t.Fatalf("NewCandidateStore() error = %v", err)
	}
	ctx := context.Background()

	created, err := s.Create(ctx, "u1", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	collection.arm()

	name := "Renamed"
	upsertDone := make(chan error, 1)
	go func() {
		_, err := s.UpsertByUID(ctx, "u1", types.RecordPatch{Name: &name})
		upsertDone <- err
	}()

	// The upsert now holds the record locks mid durable write.
	<-collection.entered

	deleteDone := make(chan error, 1)
	go func() {
		deleteDone <- s.Delete(ctx, created.ID)
	}()

	// Same-record mutations are mutually exclusive: the delete must
	// wait for the in-flight upsert.
	select {
	case <-deleteDone:
		t.Fatal("Delete() completed while an upsert held the record")
	case <-time.After(50 * time.Millisecond):
	}

	close(collection.release)

	if err := <-upsertDone; err != nil {
		t.Fatalf("UpsertByUID() error = %v", err)
	}
	if err := <-deleteDone; err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	// The delete serialized after the upsert, so the record is gone
	// from both layers and Get agrees with List.
	if _, err := s.Get(ctx, created.ID); !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("Get() after delete error = %v, want code %s", err, errors.ErrCodeRecordNotFound)
	}
	if records := s.List(ctx); len(records) != 0 {
		t.Errorf("len(List()) = %d, want 0", len(records))
	}
	if _, err := collection.Get(ctx, created.ID); !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		t.Errorf("collection Get() after delete error = %v, want code %s", err, errors.ErrCodeRecordNotFound)
	}
}

func TestReplaceProjectionRestoresOrdering(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	record := &types.CandidateRecord{ID: "orphan", Name: "Jane Doe", Email: "jane@example.com"}
	s.replaceProjection(record)

	if _, err := s.Get(ctx, "orphan"); err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	records := s.List(ctx)
	if len(records) != 1 || records[0].ID != "orphan" {
		t.Errorf("List() = %d records, want the re-entered record", len(records))
	}
}

func TestListInsertionOrder(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, "u1", sampleParse())
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	parsed := sampleParse()
	parsed.Email = "second@example.com"
	second, err := s.Create(ctx, "u2", parsed)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	records := s.List(ctx)
	if len(records) != 2 {
		t.Fatalf("len(List()) = %d, want 2", len(records))
	}
	if records[0].ID != first.ID || records[1].ID != second.ID {
		t.Error("List() did not preserve insertion order")
	}
}
