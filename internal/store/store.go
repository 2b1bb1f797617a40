package store

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"talentlens/internal/errors"
	"talentlens/internal/types"
)

// CandidateStore keeps the authoritative in-memory projection of candidate
// records, synchronized against a durable document collection. The durable
// collection is written first on every mutation; the projection follows, so
// a crash between the two steps is healed by the next Reload.
type CandidateStore struct {
	mu      sync.RWMutex
	records map[string]*types.CandidateRecord
	order   []string
	byUID   map[string]string

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex

	collection DocumentCollection
	logger     *errors.Logger
}

// NewCandidateStore loads the projection from the durable collection.
func NewCandidateStore(ctx context.Context, collection DocumentCollection, logger *errors.Logger) (*CandidateStore, error) {
	s := &CandidateStore{
		records:    make(map[string]*types.CandidateRecord),
		byUID:      make(map[string]string),
		locks:      make(map[string]*sync.Mutex),
		collection: collection,
		logger:     logger,
	}
	if err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Reload rebuilds the in-memory projection from durable storage. The
// durable collection is authoritative; any projection-only state is
// discarded.
func (s *CandidateStore) Reload(ctx context.Context) error {
	docs, err := s.collection.List(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.records = make(map[string]*types.CandidateRecord, len(docs))
	s.order = make([]string, 0, len(docs))
	s.byUID = make(map[string]string)
	for _, doc := range docs {
		s.records[doc.ID] = doc
		s.order = append(s.order, doc.ID)
		if doc.ExternalUID != "" {
			s.byUID[doc.ExternalUID] = doc.ID
		}
	}

	if s.logger != nil {
		s.logger.Info("Candidate store loaded", "records", len(docs))
	}
	return nil
}

// lockKey serializes mutations that target the same logical record.
// Mutations keyed by id use the id; creates and upserts take the uid
// lock first, which covers the create-vs-merge race for a uid that has
// no id yet. An upsert that resolves to an existing record also takes
// the id lock, always after the uid lock, so id-keyed mutations cannot
// interleave with the merge.
func (s *CandidateStore) lockKey(key string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()

	lock, ok := s.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[key] = lock
	}
	return lock
}

// Create inserts a new record from parse output. A record requires at
// minimum a non-empty name and email. When externalUID is supplied and
// already present the call fails with DUPLICATE_RECORD.
func (s *CandidateStore) Create(ctx context.Context, externalUID string, parsed types.ParseResumeOutput) (*types.CandidateRecord, error) {
	if parsed.Name == "" || parsed.Name == types.NotFound {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "candidate record requires a name", nil)
	}
	if parsed.Email == "" || parsed.Email == types.NotFound {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "candidate record requires an email", nil)
	}

	if externalUID != "" {
		lock := s.lockKey("uid:" + externalUID)
		lock.Lock()
		defer lock.Unlock()

		_, err := s.resolveUID(ctx, externalUID)
		if err == nil {
			return nil, errors.NewStoreError(
				errors.ErrCodeDuplicateRecord,
				"a candidate record already exists for this external uid",
				nil,
			).WithContext("external_uid", externalUID)
		}
		if !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
			return nil, err
		}
	}

	record := &types.CandidateRecord{
		ID:          uuid.NewString(),
		ExternalUID: externalUID,
	}
	record.ApplyParsed(parsed)

	if err := s.collection.Put(ctx, record); err != nil {
		return nil, err
	}
	s.insertProjection(record)

	if s.logger != nil {
		s.logger.Info("Candidate record created", "id", record.ID, "has_external_uid", externalUID != "")
	}
	copied := *record
	return &copied, nil
}

// resolveUID returns the record carrying the external uid. The projection
// is checked first; on a miss the durable collection is authoritative, and
// a durable hit is folded back into the projection. Callers must hold the
// uid lock.
func (s *CandidateStore) resolveUID(ctx context.Context, uid string) (*types.CandidateRecord, error) {
	s.mu.RLock()
	id, ok := s.byUID[uid]
	var record types.CandidateRecord
	if ok {
		record = *s.records[id]
	}
	s.mu.RUnlock()
	if ok {
		return &record, nil
	}

	doc, err := s.collection.FindByUID(ctx, uid)
	if err != nil {
		return nil, err
	}
	s.insertProjection(doc)
	return doc, nil
}

// UpsertByUID creates a record for uid if absent, otherwise merges the
// patch into the existing record. ResumeTextContent and the other derived
// fields are always regenerated after the merge.
func (s *CandidateStore) UpsertByUID(ctx context.Context, uid string, patch types.RecordPatch) (*types.CandidateRecord, error) {
	if uid == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "external uid is required", nil)
	}

	uidLock := s.lockKey("uid:" + uid)
	uidLock.Lock()
	defer uidLock.Unlock()

	existing, err := s.resolveUID(ctx, uid)
	if err != nil && !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
		return nil, err
	}

	if existing != nil {
		idLock := s.lockKey(existing.ID)
		idLock.Lock()
		defer idLock.Unlock()

		// Re-read under the id lock: a delete may have won the race
		// between resolution and locking, turning the merge into a
		// create.
		s.mu.RLock()
		current, ok := s.records[existing.ID]
		var snapshot types.CandidateRecord
		if ok {
			snapshot = *current
		}
		s.mu.RUnlock()

		if ok {
			snapshot.ApplyPatch(patch)
			if err := s.collection.Put(ctx, &snapshot); err != nil {
				return nil, err
			}
			s.replaceProjection(&snapshot)
			copied := snapshot
			return &copied, nil
		}
	}

	record := &types.CandidateRecord{
		ID:          uuid.NewString(),
		ExternalUID: uid,
	}
	record.ApplyPatch(patch)

	if err := s.collection.Put(ctx, record); err != nil {
		return nil, err
	}
	s.insertProjection(record)

	copied := *record
	return &copied, nil
}

// Get returns a copy of the record with the given id.
func (s *CandidateStore) Get(ctx context.Context, id string) (*types.CandidateRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return nil, notFoundErr(id)
	}
	copied := *record
	return &copied, nil
}

// List returns copies of all records in insertion order as loaded from
// durable storage.
func (s *CandidateStore) List(ctx context.Context) []*types.CandidateRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*types.CandidateRecord, 0, len(s.order))
	for _, id := range s.order {
		copied := *s.records[id]
		result = append(result, &copied)
	}
	return result
}

// Delete removes the record from durable storage first, then from the
// projection. A crash between the two steps leaves a projection-only
// entry that the next Reload removes.
func (s *CandidateStore) Delete(ctx context.Context, id string) error {
	lock := s.lockKey(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	_, ok := s.records[id]
	s.mu.RUnlock()
	if !ok {
		return notFoundErr(id)
	}

	if err := s.collection.Delete(ctx, id); err != nil {
		// The projection claimed the record exists; treat a durable
		// miss as already deleted and drop the projection entry.
		if !errors.IsCode(err, errors.ErrCodeRecordNotFound) {
			return err
		}
	}
	s.removeProjection(id)

	if s.logger != nil {
		s.logger.Info("Candidate record deleted", "id", id)
	}
	return nil
}

// RecordPipelineOutput merges a stage's typed output into the record's
// pipeline fields. The output type must match the stage.
func (s *CandidateStore) RecordPipelineOutput(ctx context.Context, id, stageName string, output any) (*types.CandidateRecord, error) {
	lock := s.lockKey(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	existing, ok := s.records[id]
	var record types.CandidateRecord
	if ok {
		record = *existing
	}
	s.mu.RUnlock()
	if !ok {
		return nil, notFoundErr(id)
	}

	fields, err := applyStageOutput(&record, stageName, output)
	if err != nil {
		return nil, err
	}

	if err := s.collection.Update(ctx, id, fields); err != nil {
		return nil, err
	}
	s.replaceProjection(&record)

	if s.logger != nil {
		s.logger.Debug("Pipeline output recorded", "id", id, "stage", stageName)
	}
	copied := record
	return &copied, nil
}

// applyStageOutput mutates record with a stage output and returns the
// durable partial-update field map.
func applyStageOutput(record *types.CandidateRecord, stageName string, output any) (map[string]any, error) {
	switch stageName {
	case "parse":
		parsed, ok := output.(types.ParseResumeOutput)
		if !ok {
			return nil, stageOutputTypeErr(stageName, output)
		}
		record.ApplyParsed(parsed)
		return map[string]any{
			"name":              record.Name,
			"email":             record.Email,
			"phone":             record.Phone,
			"education":         record.Education,
			"experience":        record.Experience,
			"skills":            record.Skills,
			"certifications":    record.Certifications,
			"resumeTextContent": record.ResumeTextContent,
			"topSkill":          record.TopSkill,
			"role":              record.Role,
			"avatarUrl":         record.AvatarURL,
		}, nil

	case "discover":
		discovered, ok := output.(types.DiscoverProfileOutput)
		if !ok {
			return nil, stageOutputTypeErr(stageName, output)
		}
		record.DiscoverySummary = &discovered.Summary
		return map[string]any{"discoverySummary": discovered.Summary}, nil

	case "flag":
		flags, ok := output.(types.DetectFlagsOutput)
		if !ok {
			return nil, stageOutputTypeErr(stageName, output)
		}
		record.FlagSummary = &flags.Inconsistencies
		record.Flagged = &flags.Flagged
		return map[string]any{
			"flagSummary": flags.Inconsistencies,
			"flagged":     flags.Flagged,
		}, nil

	case "match":
		match, ok := output.(types.MatchRoleOutput)
		if !ok {
			return nil, stageOutputTypeErr(stageName, output)
		}
		record.FitScore = &match.FitmentScore
		record.FitJustification = &match.Justification
		return map[string]any{
			"fitScore":         match.FitmentScore,
			"fitJustification": match.Justification,
		}, nil

	default:
		return nil, errors.NewValidationError(
			errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown pipeline stage: %s", stageName),
			nil,
		)
	}
}

func stageOutputTypeErr(stageName string, output any) *errors.AppError {
	return errors.NewValidationError(
		errors.ErrCodeInvalidRequest,
		fmt.Sprintf("output type %T does not match stage %s", output, stageName),
		nil,
	)
}

// SetApplication records the candidate's current job application. A new
// application overwrites any previous one; no transition rules apply.
func (s *CandidateStore) SetApplication(ctx context.Context, id, jobID string, status types.ApplicationStatus) (*types.CandidateRecord, error) {
	if jobID == "" {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidRequest, "job id is required", nil)
	}
	if !types.ValidApplicationStatus(status) {
		return nil, errors.NewValidationError(
			errors.ErrCodeInvalidRequest,
			fmt.Sprintf("unknown application status: %s", status),
			nil,
		)
	}

	lock := s.lockKey(id)
	lock.Lock()
	defer lock.Unlock()

	s.mu.RLock()
	existing, ok := s.records[id]
	var record types.CandidateRecord
	if ok {
		record = *existing
	}
	s.mu.RUnlock()
	if !ok {
		return nil, notFoundErr(id)
	}

	application := types.JobApplication{
		CandidateID: id,
		JobID:       jobID,
		Status:      status,
	}
	record.Application = &application

	if err := s.collection.Update(ctx, id, map[string]any{"application": application}); err != nil {
		return nil, err
	}
	s.replaceProjection(&record)

	if s.logger != nil {
		s.logger.Info("Application recorded", "id", id, "job_id", jobID, "status", string(status))
	}
	copied := record
	return &copied, nil
}

// Count returns the number of records in the projection.
func (s *CandidateStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Ping reports whether the durable collection is reachable.
func (s *CandidateStore) Ping(ctx context.Context) error {
	return s.collection.Ping(ctx)
}

// Close releases the durable collection.
func (s *CandidateStore) Close() error {
	return s.collection.Close()
}

func (s *CandidateStore) insertProjection(record *types.CandidateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	s.records[copied.ID] = &copied
	s.order = append(s.order, copied.ID)
	if copied.ExternalUID != "" {
		s.byUID[copied.ExternalUID] = copied.ID
	}
}

func (s *CandidateStore) replaceProjection(record *types.CandidateRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	// Keep Get and List in agreement: a record absent from the
	// projection re-enters the ordering as well.
	if _, ok := s.records[copied.ID]; !ok {
		s.order = append(s.order, copied.ID)
	}
	s.records[copied.ID] = &copied
	if copied.ExternalUID != "" {
		s.byUID[copied.ExternalUID] = copied.ID
	}
}

func (s *CandidateStore) removeProjection(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return
	}
	if record.ExternalUID != "" {
		delete(s.byUID, record.ExternalUID)
	}
	delete(s.records, id)
	for i, existing := range s.order {
		if existing == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}
