package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"talentlens/internal/ai"
	"talentlens/internal/observability"
	"talentlens/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createParseHandler wraps the parse stage with observability
func (s *Server) createParseHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentlens.api")
		ctx, span := tracer.Start(ctx, "api.parse")
		defer span.End()

		var req ParseRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		if len(req.ResumeText) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("resume text too large: %d chars", len(req.ResumeText))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Resume text too large", fmt.Sprintf("resumeText exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("stage", "parse"),
		)

		input := types.ParseResumeInput{ResumeText: req.ResumeText}

		metrics := om.GetMetrics()
		var result types.ParseResumeOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "parse", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := s.Orchestrator.RunParse(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "ai_processing"))
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, om,
				attribute.String("error", err.Error()))
			writeStageError(w, "Failed to parse resume", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, om)

		span.SetAttributes(attribute.Bool("success", true))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createDiscoverHandler wraps the discover stage with observability
func (s *Server) createDiscoverHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentlens.api")
		ctx, span := tracer.Start(ctx, "api.discover")
		defer span.End()

		var req DiscoverRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.Name) == "" {
			err := fmt.Errorf("missing candidate name")
			span.RecordError(err)
			writeErrorResponse(w, "Missing candidate name", "name field is required", http.StatusBadRequest)
			return
		}
		if strings.TrimSpace(req.Email) == "" {
			err := fmt.Errorf("missing candidate email")
			span.RecordError(err)
			writeErrorResponse(w, "Missing candidate email", "email field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(attribute.String("stage", "discover"))

		input := types.DiscoverProfileInput{Name: req.Name, Email: req.Email}

		metrics := om.GetMetrics()
		var result types.DiscoverProfileOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "discover", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := s.Orchestrator.RunDiscover(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "profile_discovered", false, om)
			writeStageError(w, "Failed to discover profile", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "profile_discovered", true, om,
			attribute.Int("summary_length", len(result.Summary)))

		span.SetAttributes(attribute.Bool("success", true))

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createFlagHandler wraps the flag stage with observability
func (s *Server) createFlagHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentlens.api")
		ctx, span := tracer.Start(ctx, "api.flag")
		defer span.End()

		var req FlagRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("stage", "flag"),
		)

		input := types.DetectFlagsInput{
			ResumeText:       req.ResumeText,
			DiscoverySummary: req.DiscoverySummary,
		}

		metrics := om.GetMetrics()
		var result types.DetectFlagsOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "flag", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := s.Orchestrator.RunFlag(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "flags_detected", false, om)
			writeStageError(w, "Failed to run red-flag detection", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "flags_detected", true, om,
			attribute.Bool("flagged", result.Flagged))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Bool("flagged", result.Flagged),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createMatchHandler wraps the match stage with observability
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("talentlens.api")
		ctx, span := tracer.Start(ctx, "api.match")
		defer span.End()

		var req MatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_length", len(req.JobDescription)),
			attribute.String("stage", "match"),
		)

		input := types.MatchRoleInput{
			ResumeText:     req.ResumeText,
			JobDescription: req.JobDescription,
		}

		metrics := om.GetMetrics()
		var result types.MatchRoleOutput
		err := metrics.TrackAIOperationWithTokens(ctx, "match", func(ctx context.Context) *observability.AIOperationResult {
			output, tokenUsage, aiErr := s.Orchestrator.RunMatch(ctx, input)
			result = output
			return &observability.AIOperationResult{
				Error:      aiErr,
				TokenUsage: (*observability.TokenUsage)(tokenUsage),
			}
		}, om)

		if err != nil {
			span.RecordError(err)
			metrics.RecordBusinessMetric(ctx, "role_matched", false, om)
			writeStageError(w, "Failed to match role", err)
			return
		}

		metrics.RecordBusinessMetric(ctx, "role_matched", true, om,
			attribute.Int("fitment_score", result.FitmentScore))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("fitment_score", result.FitmentScore),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(result); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// stageService returns the ai service behind a stage for health reporting
func (s *Server) stageService(stage string) *ai.Service {
	if s.Orchestrator == nil {
		return nil
	}
	return s.Orchestrator.Service(pipelineStage(stage))
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
