package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"talentlens/internal/observability"
	"talentlens/internal/pipeline"
	"talentlens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

func pipelineStage(name string) pipeline.Stage {
	return pipeline.Stage(name)
}

// createCandidateHandler parses raw resume text and creates a candidate
// record from the extracted fields.
func (s *Server) createCandidateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentlens.api")
		ctx, span := tracer.Start(ctx, "api.candidates.create")
		defer span.End()

		var req CreateCandidateRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Bool("request.has_external_uid", req.ExternalUID != ""),
		)

		metrics := om.GetMetrics()
		var parsed types.ParseResumeOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "parse", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := s.Orchestrator.RunParse(ctx, types.ParseResumeInput{ResumeText: req.ResumeText})
			parsed = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)
		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, om)
			writeStageError(w, "Failed to parse resume", err)
			return
		}
		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, om)

		record, err := s.Store.Create(ctx, req.ExternalUID, parsed)
		metrics.RecordStoreOp(ctx, "create", err == nil, om)
		if err != nil {
			span.RecordError(err)
			writeStageError(w, "Failed to create candidate record", err)
			return
		}
		metrics.RecordStoreRecordCount(ctx, s.Store.Count())

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("candidate.id", record.ID),
		)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		if err := json.NewEncoder(w).Encode(record); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// upsertCandidateHandler creates or merges a record keyed by external uid
func (s *Server) upsertCandidateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentlens.api")
		ctx, span := tracer.Start(ctx, "api.candidates.upsert")
		defer span.End()

		var req UpsertCandidateRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ExternalUID) == "" {
			err := fmt.Errorf("missing external uid")
			span.RecordError(err)
			writeErrorResponse(w, "Missing external uid", "externalUid field is required", http.StatusBadRequest)
			return
		}

		patch := types.RecordPatch{
			Name:           req.Name,
			Email:          req.Email,
			Phone:          req.Phone,
			Education:      req.Education,
			Experience:     req.Experience,
			Skills:         req.Skills,
			Certifications: req.Certifications,
		}

		metrics := om.GetMetrics()
		record, err := s.Store.UpsertByUID(ctx, req.ExternalUID, patch)
		metrics.RecordStoreOp(ctx, "upsert", err == nil, om)
		if err != nil {
			span.RecordError(err)
			writeStageError(w, "Failed to upsert candidate record", err)
			return
		}
		metrics.RecordStoreRecordCount(ctx, s.Store.Count())

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.String("candidate.id", record.ID),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(record); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// listCandidatesHandler returns all records in insertion order
func (s *Server) listCandidatesHandler(w http.ResponseWriter, r *http.Request) {
	records := s.Store.List(r.Context())

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(records); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// getCandidateHandler returns a single record by id
func (s *Server) getCandidateHandler(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	record, err := s.Store.Get(r.Context(), id)
	if err != nil {
		writeStageError(w, "Failed to get candidate record", err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(record); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// deleteCandidateHandler removes a record from durable storage and the
// projection.
func (s *Server) deleteCandidateHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.PathValue("id")

		metrics := om.GetMetrics()
		err := s.Store.Delete(ctx, id)
		metrics.RecordStoreOp(ctx, "delete", err == nil, om)
		if err != nil {
			writeStageError(w, "Failed to delete candidate record", err)
			return
		}
		metrics.RecordStoreRecordCount(ctx, s.Store.Count())

		w.WriteHeader(http.StatusNoContent)
	}
}

// setApplicationHandler records the candidate's current job application.
// A new application overwrites the previous one.
func (s *Server) setApplicationHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.PathValue("id")

		var req SetApplicationRequest
		if err := parseJSONRequest(r, &req); err != nil {
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		metrics := om.GetMetrics()
		record, err := s.Store.SetApplication(ctx, id, req.JobID, types.ApplicationStatus(req.Status))
		metrics.RecordStoreOp(ctx, "set_application", err == nil, om)
		if err != nil {
			writeStageError(w, "Failed to record application", err)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(record); err != nil {
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// runStageHandler runs a pipeline stage against a stored record and merges
// the output back into it.
func (s *Server) runStageHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		id := r.PathValue("id")
		stageName := r.PathValue("stage")

		tracer := om.Tracer("talentlens.api")
		ctx, span := tracer.Start(ctx, "api.candidates.stage."+stageName)
		defer span.End()

		if !pipeline.ValidStage(stageName) {
			err := fmt.Errorf("unknown stage: %s", stageName)
			span.RecordError(err)
			writeErrorResponse(w, "Unknown stage", fmt.Sprintf("stage must be one of parse, discover, flag, match; got %q", stageName), http.StatusBadRequest)
			return
		}

		var req RunStageRequest
		if r.ContentLength > 0 {
			if err := parseJSONRequest(r, &req); err != nil {
				span.RecordError(err)
				writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
				return
			}
		}

		record, err := s.Store.Get(ctx, id)
		if err != nil {
			span.RecordError(err)
			writeStageError(w, "Failed to get candidate record", err)
			return
		}

		span.SetAttributes(
			attribute.String("candidate.id", id),
			attribute.String("stage", stageName),
		)

		output, err := s.runStageForRecord(ctx, om, pipelineStage(stageName), record, req)
		if err != nil {
			span.RecordError(err)
			writeStageError(w, fmt.Sprintf("Failed to run %s stage", stageName), err)
			return
		}

		metrics := om.GetMetrics()
		updated, err := s.Store.RecordPipelineOutput(ctx, id, stageName, output)
		metrics.RecordStoreOp(ctx, "record_pipeline_output", err == nil, om)
		if err != nil {
			span.RecordError(err)
			writeStageError(w, "Failed to record pipeline output", err)
			return
		}

		span.SetAttributes(attribute.Bool("success", true))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(updated); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// runStageForRecord assembles a stage's input from the stored record and
// the per-request fields, then invokes the stage.
func (s *Server) runStageForRecord(ctx context.Context, om *observability.ObservabilityManager, stage pipeline.Stage, record *types.CandidateRecord, req RunStageRequest) (any, error) {
	metrics := om.GetMetrics()

	switch stage {
	case pipeline.StageParse:
		var output types.ParseResumeOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "parse", func(ctx context.Context) *observability.AIOperationResult {
			out, tokenUsage, aiErr := s.Orchestrator.RunParse(ctx, types.ParseResumeInput{ResumeText: req.ResumeText})
			output = out
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: (*observability.TokenUsage)(tokenUsage)}
		}, om)
		metrics.RecordBusinessMetric(ctx, "resume_parsed", err == nil, om)
		return output, err

	case pipeline.StageDiscover:
		var output types.DiscoverProfileOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "discover", func(ctx context.Context) *observability.AIOperationResult {
			out, tokenUsage, aiErr := s.Orchestrator.RunDiscover(ctx, types.DiscoverProfileInput{
				Name:  record.Name,
				Email: record.Email,
			})
			output = out
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: (*observability.TokenUsage)(tokenUsage)}
		}, om)
		metrics.RecordBusinessMetric(ctx, "profile_discovered", err == nil, om)
		return output, err

	case pipeline.StageFlag:
		input := types.DetectFlagsInput{ResumeText: record.ResumeTextContent}
		if record.DiscoverySummary != nil {
			input.DiscoverySummary = *record.DiscoverySummary
		}
		var output types.DetectFlagsOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "flag", func(ctx context.Context) *observability.AIOperationResult {
			out, tokenUsage, aiErr := s.Orchestrator.RunFlag(ctx, input)
			output = out
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: (*observability.TokenUsage)(tokenUsage)}
		}, om)
		metrics.RecordBusinessMetric(ctx, "flags_detected", err == nil, om)
		return output, err

	case pipeline.StageMatch:
		input := types.MatchRoleInput{
			ResumeText:     record.ResumeTextContent,
			JobDescription: req.JobDescription,
		}
		var output types.MatchRoleOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "match", func(ctx context.Context) *observability.AIOperationResult {
			out, tokenUsage, aiErr := s.Orchestrator.RunMatch(ctx, input)
			output = out
			return &observability.AIOperationResult{Error: aiErr, TokenUsage: (*observability.TokenUsage)(tokenUsage)}
		}, om)
		metrics.RecordBusinessMetric(ctx, "role_matched", err == nil, om)
		return output, err

	default:
		return nil, fmt.Errorf("unknown stage: %s", stage)
	}
}
