package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"talentlens/internal/ai"
	talentlensErrors "talentlens/internal/errors"
	"talentlens/internal/pipeline"
)

// getHealthCheckTimeout returns the configured health check timeout
func (s *Server) getHealthCheckTimeout() time.Duration {
	return s.AppConfig.Observability.HealthCheck.Timeout
}

// healthHandler provides a comprehensive health check endpoint including AI model status
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"status":  "healthy",
		"service": "talentlens",
		"version": s.Version,
	}

	// Check AI model availability for all pipeline stages
	aiStatus := s.checkAIModelsHealth()
	response["ai_models"] = aiStatus

	// Check circuit breaker status
	circuitBreakerStatus := s.checkCircuitBreakerHealth()
	response["circuit_breakers"] = circuitBreakerStatus

	// Check candidate store status
	storeStatus := s.checkStoreHealth(r.Context())
	response["store"] = storeStatus

	// Determine overall health status
	overallHealthy := true
	for _, modelStatus := range aiStatus {
		if modelInfo, ok := modelStatus.(map[string]any); ok {
			if available, exists := modelInfo["available"]; exists {
				if avail, ok := available.(bool); ok && !avail {
					overallHealthy = false
					break
				}
			}
		}
	}

	if healthy, exists := storeStatus["healthy"]; exists {
		if storeHealthy, ok := healthy.(bool); ok && !storeHealthy {
			overallHealthy = false
		}
	}

	if !overallHealthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth checks the health of the model behind each stage
func (s *Server) checkAIModelsHealth() map[string]any {
	// Use configurable health check timeout
	timeout := s.getHealthCheckTimeout()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)

	for _, stage := range pipeline.Stages {
		service := s.stageService(string(stage))
		if service == nil {
			aiStatus[string(stage)] = map[string]any{
				"available": false,
				"error":     "stage service not initialized",
			}
			continue
		}
		aiStatus[string(stage)] = service.GetModelInfo(ctx)
	}

	return aiStatus
}

// checkCircuitBreakerHealth reports circuit breaker state per stage
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	circuitBreakerStatus := make(map[string]any)

	for _, stage := range pipeline.Stages {
		service := s.stageService(string(stage))
		if service == nil {
			circuitBreakerStatus[string(stage)] = map[string]any{
				"available": false,
				"error":     "stage service not initialized",
			}
			continue
		}

		if provider, ok := service.Provider.(*ai.GeminiProvider); ok {
			circuitBreakerStatus[string(stage)] = provider.GetCircuitBreakerStats()
		} else {
			circuitBreakerStatus[string(stage)] = map[string]any{
				"available": true,
				"message":   "Circuit breaker stats not exposed by provider",
			}
		}
	}

	return circuitBreakerStatus
}

// checkStoreHealth checks the candidate store and its durable backend
func (s *Server) checkStoreHealth(ctx context.Context) map[string]any {
	storeStatus := make(map[string]any)

	if s.Store == nil {
		storeStatus["healthy"] = false
		storeStatus["error"] = "candidate store not initialized"
		return storeStatus
	}

	timeout := s.getHealthCheckTimeout()
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := s.Store.Ping(pingCtx); err != nil {
		storeStatus["healthy"] = false
		storeStatus["error"] = fmt.Sprintf("durable store unreachable: %v", err)
		return storeStatus
	}

	storeStatus["healthy"] = true
	storeStatus["driver"] = s.AppConfig.Store.Driver
	storeStatus["records"] = s.Store.Count()
	return storeStatus
}

// statsHandler provides server statistics including rate limiting info
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "talentlens",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
	}

	if s.Store != nil {
		response["store"] = map[string]any{
			"driver":  s.AppConfig.Store.Driver,
			"records": s.Store.Count(),
		}
	}

	// Add rate limiting stats if enabled
	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{
			"enabled": false,
		}
	}

	// Add configuration info
	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest parses JSON request body into the provided struct
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}

	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   error,
		Message: message,
	}

	err := json.NewEncoder(w).Encode(response)
	if err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}

// writeStageError maps a typed application error to an HTTP status
func writeStageError(w http.ResponseWriter, summary string, err error) {
	writeErrorResponse(w, summary, err.Error(), statusForError(err))
}

// statusForError maps the error taxonomy onto HTTP status codes
func statusForError(err error) int {
	var appErr *talentlensErrors.AppError
	if !errors.As(err, &appErr) {
		return http.StatusInternalServerError
	}

	switch appErr.Code {
	case talentlensErrors.ErrCodeInvalidRequest, talentlensErrors.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case talentlensErrors.ErrCodeRecordNotFound:
		return http.StatusNotFound
	case talentlensErrors.ErrCodeDuplicateRecord:
		return http.StatusConflict
	case talentlensErrors.ErrCodeDependencyNotSatisfied:
		return http.StatusUnprocessableEntity
	case talentlensErrors.ErrCodeModelUnavailable:
		return http.StatusServiceUnavailable
	case talentlensErrors.ErrCodeSchemaViolation, talentlensErrors.ErrCodeEmptyResponse:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
