package ai

import (
	"context"
	"fmt"
	"testing"
	"time"

	"talentlens/internal/config"
	tlerrors "talentlens/internal/errors"
	"talentlens/internal/types"

	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

// fakeGenerator queues canned responses for the invoker seam.
type fakeGenerator struct {
	responses  []*genai.GenerateContentResponse
	errs       []error
	calls      int
	lastModel  string
	lastConfig *genai.GenerateContentConfig
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, model string, contents []*genai.Content, cfg *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	i := f.calls
	f.calls++
	f.lastModel = model
	f.lastConfig = cfg

	if i < len(f.errs) && f.errs[i] != nil {
		return nil, f.errs[i]
	}
	if i < len(f.responses) {
		return f.responses[i], nil
	}
	return nil, fmt.Errorf("fake generator: no response queued for call %d", i)
}

func textResponse(payload string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: payload}},
			},
		}},
		UsageMetadata: &genai.GenerateContentResponseUsageMetadata{
			PromptTokenCount:     10,
			CandidatesTokenCount: 5,
			TotalTokenCount:      15,
		},
	}
}

// newFakeProvider wires a provider straight to the fake generator. Both
// circuit breakers stay nil so calls pass through ungated.
func newFakeProvider(fake *fakeGenerator) *GeminiProvider {
	temperature := float32(0.2)
	timeout := 5 * time.Second
	useSystemPrompts := true

	return &GeminiProvider{
		generator: fake,
		config: &config.StageAIConfig{
			Provider:         "gemini",
			Model:            "test-model",
			Timeout:          &timeout,
			Temperature:      &temperature,
			UseSystemPrompts: &useSystemPrompts,
		},
		logger: testLogger,
	}
}

const validParsePayload = `{
	"name": "Jane Doe",
	"email": "jane@example.com",
	"phone": "Not found",
	"education": "BSc Computer Science",
	"experience": "5 years backend development",
	"skills": "Go, PostgreSQL",
	"certifications": "Not found"
}`

func TestParseResumeDecodesSchemaConformingPayload(t *testing.T) {
	fake := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse(validParsePayload)}}
	provider := newFakeProvider(fake)

	output, usage, err := provider.ParseResume(context.Background(), types.ParseResumeInput{ResumeText: "Jane Doe resume text"})
	if err != nil {
		t.Fatalf("ParseResume failed: %v", err)
	}

	if output.Name != "Jane Doe" {
		t.Errorf("Expected name 'Jane Doe', got %q", output.Name)
	}
	if output.Phone != types.NotFound {
		t.Errorf("Expected phone %q, got %q", types.NotFound, output.Phone)
	}
	if usage == nil || usage.TotalTokens != 15 {
		t.Errorf("Expected token usage total 15, got %+v", usage)
	}
	if fake.calls != 1 {
		t.Errorf("Expected exactly 1 model call, got %d", fake.calls)
	}
	if fake.lastModel != "test-model" {
		t.Errorf("Expected model 'test-model', got %q", fake.lastModel)
	}
	if fake.lastConfig == nil || fake.lastConfig.ResponseMIMEType != "application/json" {
		t.Error("Expected JSON response schema to be sent with the request")
	}
}

func TestParseResumeRejectsEmptyInputBeforeAnyCall(t *testing.T) {
	fake := &fakeGenerator{}
	provider := newFakeProvider(fake)

	_, _, err := provider.ParseResume(context.Background(), types.ParseResumeInput{ResumeText: "   "})
	if err == nil {
		t.Fatal("Expected error for empty resume text")
	}
	if !tlerrors.IsCode(err, tlerrors.ErrCodeInvalidRequest) {
		t.Errorf("Expected INVALID_REQUEST, got %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("Expected no model calls, got %d", fake.calls)
	}
}

func TestInvokerEmptyResponse(t *testing.T) {
	fake := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse("   ")}}
	provider := newFakeProvider(fake)

	_, _, err := provider.ParseResume(context.Background(), types.ParseResumeInput{ResumeText: "resume"})
	if err == nil {
		t.Fatal("Expected error for empty payload")
	}
	if !tlerrors.IsCode(err, tlerrors.ErrCodeEmptyResponse) {
		t.Errorf("Expected EMPTY_RESPONSE, got %v", err)
	}
	// A failed call is never re-issued
	if fake.calls != 1 {
		t.Errorf("Expected exactly 1 model call, got %d", fake.calls)
	}
}

func TestInvokerMalformedJSON(t *testing.T) {
	fake := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse("{not json")}}
	provider := newFakeProvider(fake)

	_, _, err := provider.ParseResume(context.Background(), types.ParseResumeInput{ResumeText: "resume"})
	if !tlerrors.IsCode(err, tlerrors.ErrCodeSchemaViolation) {
		t.Errorf("Expected SCHEMA_VIOLATION for malformed JSON, got %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("Expected exactly 1 model call, got %d", fake.calls)
	}
}

func TestInvokerRejectsPlaceholderTokens(t *testing.T) {
	payload := `{
		"name": "string",
		"email": "jane@example.com",
		"phone": "Not found",
		"education": "BSc",
		"experience": "5 years",
		"skills": "Go",
		"certifications": "Not found"
	}`
	fake := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse(payload)}}
	provider := newFakeProvider(fake)

	_, _, err := provider.ParseResume(context.Background(), types.ParseResumeInput{ResumeText: "resume"})
	if !tlerrors.IsCode(err, tlerrors.ErrCodeSchemaViolation) {
		t.Errorf("Expected SCHEMA_VIOLATION for placeholder token, got %v", err)
	}
}

func TestInvokerRejectsEmptyRequiredField(t *testing.T) {
	payload := `{
		"name": "Jane Doe",
		"email": "",
		"phone": "Not found",
		"education": "BSc",
		"experience": "5 years",
		"skills": "Go",
		"certifications": "Not found"
	}`
	fake := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse(payload)}}
	provider := newFakeProvider(fake)

	_, _, err := provider.ParseResume(context.Background(), types.ParseResumeInput{ResumeText: "resume"})
	if !tlerrors.IsCode(err, tlerrors.ErrCodeSchemaViolation) {
		t.Errorf("Expected SCHEMA_VIOLATION for empty field, got %v", err)
	}
}

func TestInvokerTransportError(t *testing.T) {
	apiErr := &googleapi.Error{Code: 503, Message: "backend overloaded"}
	fake := &fakeGenerator{errs: []error{apiErr}}
	provider := newFakeProvider(fake)

	_, _, err := provider.ParseResume(context.Background(), types.ParseResumeInput{ResumeText: "resume"})
	if !tlerrors.IsCode(err, tlerrors.ErrCodeModelUnavailable) {
		t.Errorf("Expected MODEL_UNAVAILABLE for transport error, got %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("Expected exactly 1 model call, got %d", fake.calls)
	}
}

func TestOpenCircuitGatesWithoutReissuing(t *testing.T) {
	apiErr := &googleapi.Error{Code: 503, Message: "backend overloaded"}
	fake := &fakeGenerator{errs: []error{apiErr, apiErr}}
	provider := newFakeProvider(fake)
	provider.circuitBreaker = NewAICircuitBreaker("parse", &config.StageAIConfig{
		CircuitBreaker: config.CircuitBreakerConfig{
			Enabled:          true,
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          time.Minute,
			MinRequests:      1,
			FailureThreshold: 0.1,
		},
	}, testLogger)

	input := types.ParseResumeInput{ResumeText: "resume"}

	// First call fails and trips the breaker
	_, _, err := provider.ParseResume(context.Background(), input)
	if !tlerrors.IsCode(err, tlerrors.ErrCodeModelUnavailable) {
		t.Fatalf("Expected MODEL_UNAVAILABLE on first failure, got %v", err)
	}
	if fake.calls != 1 {
		t.Fatalf("Expected 1 model call, got %d", fake.calls)
	}

	// Second call is gated by the open breaker; the model is never hit again
	_, _, err = provider.ParseResume(context.Background(), input)
	if !tlerrors.IsCode(err, tlerrors.ErrCodeModelUnavailable) {
		t.Fatalf("Expected MODEL_UNAVAILABLE from open breaker, got %v", err)
	}
	if fake.calls != 1 {
		t.Errorf("Open breaker must not re-issue the call; got %d calls", fake.calls)
	}
}

func TestDetectFlagsRequiresDiscoverySummary(t *testing.T) {
	fake := &fakeGenerator{}
	provider := newFakeProvider(fake)

	_, _, err := provider.DetectFlags(context.Background(), types.DetectFlagsInput{
		ResumeText:       "resume",
		DiscoverySummary: "",
	})
	if !tlerrors.IsCode(err, tlerrors.ErrCodeInvalidRequest) {
		t.Errorf("Expected INVALID_REQUEST for missing discovery summary, got %v", err)
	}
	if fake.calls != 0 {
		t.Errorf("Expected no model calls, got %d", fake.calls)
	}
}

func TestMatchRoleScoreBounds(t *testing.T) {
	tests := []struct {
		name      string
		score     int
		expectErr bool
	}{
		{"lower bound", 0, false},
		{"upper bound", 100, false},
		{"above range", 150, true},
		{"below range", -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload := fmt.Sprintf(`{"fitmentScore": %d, "justification": "Solid backend background"}`, tt.score)
			fake := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse(payload)}}
			provider := newFakeProvider(fake)

			output, _, err := provider.MatchRole(context.Background(), types.MatchRoleInput{
				ResumeText:     "resume",
				JobDescription: "job",
			})

			if tt.expectErr {
				if !tlerrors.IsCode(err, tlerrors.ErrCodeSchemaViolation) {
					t.Errorf("Expected SCHEMA_VIOLATION for score %d, got %v", tt.score, err)
				}
			} else {
				if err != nil {
					t.Fatalf("MatchRole failed for score %d: %v", tt.score, err)
				}
				if output.FitmentScore != tt.score {
					t.Errorf("Expected score %d, got %d", tt.score, output.FitmentScore)
				}
			}
		})
	}
}

func TestDiscoverProfileDecodesSummary(t *testing.T) {
	payload := `{"summary": "Likely maintains a GitHub profile under jdoe; common name, low-confidence matches only."}`
	fake := &fakeGenerator{responses: []*genai.GenerateContentResponse{textResponse(payload)}}
	provider := newFakeProvider(fake)

	output, _, err := provider.DiscoverProfile(context.Background(), types.DiscoverProfileInput{
		Name:  "Jane Doe",
		Email: "jane@example.com",
	})
	if err != nil {
		t.Fatalf("DiscoverProfile failed: %v", err)
	}
	if output.Summary == "" {
		t.Error("Expected a non-empty summary")
	}
}

func TestRenderTemplate(t *testing.T) {
	template := "Resume:\n{{resumeText}}\n\nJob:\n{{jobDescription}}"
	rendered := renderTemplate(template, map[string]string{
		"resumeText":     "the resume",
		"jobDescription": "the job",
	})

	expected := "Resume:\nthe resume\n\nJob:\nthe job"
	if rendered != expected {
		t.Errorf("Expected %q, got %q", expected, rendered)
	}
}
