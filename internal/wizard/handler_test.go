package wizard

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"cvwizard-backend/internal/generation"
	"cvwizard-backend/internal/jobs"
	"cvwizard-backend/internal/profiles"
)

type handlerHarness struct {
	engine   *gin.Engine
	handler  *Handler
	jobs     *jobs.Service
	profiles *profiles.Service
	jobID    string
}

func newHandlerHarness(t *testing.T, api generation.API) *handlerHarness {
	t.Helper()
	gin.SetMode(gin.TestMode)

	jobsSvc := &jobs.Service{Repo: jobs.NewMemoryRepo(), DefaultLanguage: "en"}
	profilesSvc := &profiles.Service{Repo: profiles.NewMemoryRepo()}

	h := NewHandler(api, NewDocumentCache(), NewProgressStore(), jobsSvc, profilesSvc, "en", WithInterval(5*time.Millisecond))

	engine := gin.New()
	group := engine.Group("/api/v1")
	group.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	h.RegisterRoutes(group)

	job, err := jobsSvc.Create(context.Background(), "user-1", "Backend Engineer", "Acme", "build services", "en")
	if err != nil {
		t.Fatalf("create job: %v", err)
	}
	if _, err := profilesSvc.Save(context.Background(), "user-1", profiles.ProfileInput{
		FullName: "Jane Doe",
		Email:    "jane@example.com",
		CVText:   "ten years of Go",
	}); err != nil {
		t.Fatalf("create profile: %v", err)
	}

	return &handlerHarness{engine: engine, handler: h, jobs: jobsSvc, profiles: profilesSvc, jobID: job.ID}
}

func (h *handlerHarness) do(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	h.engine.ServeHTTP(rec, req)
	return rec
}

func (h *handlerHarness) decode(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func TestHandlerStateDefaults(t *testing.T) {
	h := newHandlerHarness(t, &fakeAPI{})

	rec := h.do(t, http.MethodGet, "/api/v1/jobs/"+h.jobID+"/wizard", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var state struct {
		JobID    string `json:"jobId"`
		Language string `json:"language"`
		Steps    struct {
			HasGeneratedCompetences bool `json:"hasGeneratedCompetences"`
			HasGeneratedCV          bool `json:"hasGeneratedCV"`
		} `json:"steps"`
		Document *json.RawMessage `json:"document"`
	}
	h.decode(t, rec, &state)

	if state.JobID != h.jobID {
		t.Fatalf("unexpected job id %q", state.JobID)
	}
	if state.Language != "en" {
		t.Fatalf("unexpected language %q", state.Language)
	}
	if state.Steps.HasGeneratedCompetences || state.Steps.HasGeneratedCV {
		t.Fatal("fresh flow must have no completed steps")
	}
	if state.Document != nil {
		t.Fatal("fresh flow must have no document")
	}
}

func TestHandlerUnknownJobIs404(t *testing.T) {
	h := newHandlerHarness(t, &fakeAPI{})

	rec := h.do(t, http.MethodGet, "/api/v1/jobs/missing/wizard", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandlerStepGateAndRedirect(t *testing.T) {
	h := newHandlerHarness(t, &fakeAPI{})

	var check struct {
		Step       string  `json:"step"`
		Allowed    bool    `json:"allowed"`
		RedirectTo *string `json:"redirectTo"`
	}

	rec := h.do(t, http.MethodGet, "/api/v1/jobs/"+h.jobID+"/wizard/steps/export", nil)
	h.decode(t, rec, &check)
	if check.Allowed {
		t.Fatal("export must be gated on a fresh flow")
	}
	if check.RedirectTo == nil || *check.RedirectTo != "competences.generate" {
		t.Fatalf("unexpected redirect: %+v", check.RedirectTo)
	}

	rec = h.do(t, http.MethodGet, "/api/v1/jobs/"+h.jobID+"/wizard/steps/parameters", nil)
	h.decode(t, rec, &check)
	if !check.Allowed || check.RedirectTo != nil {
		t.Fatalf("parameters must always be allowed: %+v", check)
	}

	// Malformed identifiers fail open.
	rec = h.do(t, http.MethodGet, "/api/v1/jobs/"+h.jobID+"/wizard/steps/banana", nil)
	h.decode(t, rec, &check)
	if !check.Allowed {
		t.Fatal("unknown steps must fail open")
	}
}

func TestHandlerCompleteStepAndNotes(t *testing.T) {
	h := newHandlerHarness(t, &fakeAPI{})

	rec := h.do(t, http.MethodPost, "/api/v1/jobs/"+h.jobID+"/wizard/steps/competences.generate/complete", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("complete: status %d: %s", rec.Code, rec.Body.String())
	}

	rec = h.do(t, http.MethodPut, "/api/v1/jobs/"+h.jobID+"/wizard/steps/parameters/notes", gin.H{"notes": "remote only"})
	if rec.Code != http.StatusOK {
		t.Fatalf("notes: status %d: %s", rec.Code, rec.Body.String())
	}

	var state struct {
		Steps struct {
			HasGeneratedCompetences bool `json:"hasGeneratedCompetences"`
		} `json:"steps"`
		Notes map[string]string `json:"notes"`
	}
	h.decode(t, rec, &state)
	if !state.Steps.HasGeneratedCompetences {
		t.Fatal("step completion must be reflected in state")
	}
	if state.Notes["parameters"] != "remote only" {
		t.Fatalf("unexpected notes: %+v", state.Notes)
	}

	rec = h.do(t, http.MethodPost, "/api/v1/jobs/"+h.jobID+"/wizard/steps/banana/complete", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown step completion must 400, got %d", rec.Code)
	}
}

func TestHandlerGenerateCompetencesFlow(t *testing.T) {
	api := &fakeAPI{
		generateCompetences: func(ctx context.Context, input generation.GenerateCompetencesInput) (generation.CompetencesResult, error) {
			if input.CVText != "ten years of Go" {
				t.Errorf("profile cv text not forwarded: %q", input.CVText)
			}
			if input.JobDescription != "build services" {
				t.Errorf("job description not forwarded: %q", input.JobDescription)
			}
			return generation.CompetencesResult{CoreCompetences: []string{"Go", "Postgres"}}, nil
		},
	}
	h := newHandlerHarness(t, api)

	rec := h.do(t, http.MethodPost, "/api/v1/jobs/"+h.jobID+"/wizard/competences", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Competences []struct {
			ID         string `json:"id"`
			Text       string `json:"text"`
			IsApproved bool   `json:"isApproved"`
		} `json:"competences"`
	}
	h.decode(t, rec, &resp)
	if len(resp.Competences) != 2 {
		t.Fatalf("unexpected competences: %+v", resp.Competences)
	}
	if resp.Competences[0].IsApproved {
		t.Fatal("competences must start unapproved")
	}

	rec = h.do(t, http.MethodPut, "/api/v1/jobs/"+h.jobID+"/wizard/competences/"+resp.Competences[0].ID, gin.H{"approved": true})
	if rec.Code != http.StatusOK {
		t.Fatalf("approve: status %d: %s", rec.Code, rec.Body.String())
	}
	h.decode(t, rec, &resp)
	if !resp.Competences[0].IsApproved {
		t.Fatal("approval must be reflected")
	}

	rec = h.do(t, http.MethodPut, "/api/v1/jobs/"+h.jobID+"/wizard/competences/nope", gin.H{"approved": true})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("unknown competence must 404, got %d", rec.Code)
	}
}

func TestHandlerGenerateCompetencesFailureMessage(t *testing.T) {
	api := &fakeAPI{
		generateCompetences: func(ctx context.Context, input generation.GenerateCompetencesInput) (generation.CompetencesResult, error) {
			return generation.CompetencesResult{}, &generation.ServerError{StatusCode: 500}
		},
	}
	h := newHandlerHarness(t, api)

	rec := h.do(t, http.MethodPost, "/api/v1/jobs/"+h.jobID+"/wizard/competences", nil)
	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502, got %d", rec.Code)
	}

	var resp struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	h.decode(t, rec, &resp)
	if resp.Error.Message != "Failed to generate competences" {
		t.Fatalf("upstream detail must not leak, got %q", resp.Error.Message)
	}
}

func TestHandlerGenerateCVCompletesViaPoller(t *testing.T) {
	api := &fakeAPI{
		generateDocument: func(ctx context.Context, input generation.GenerateDocumentInput) (generation.DocumentDTO, error) {
			return generation.DocumentDTO{ID: "doc-1", Status: generation.StatusPending}, nil
		},
		getDocumentStatus: func(ctx context.Context, documentID string) (generation.DocumentDTO, error) {
			return generation.DocumentDTO{ID: documentID, Status: generation.StatusCompleted, Content: "final cv"}, nil
		},
	}
	h := newHandlerHarness(t, api)

	rec := h.do(t, http.MethodPost, "/api/v1/jobs/"+h.jobID+"/wizard/cv", nil)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("expected 202, got %d: %s", rec.Code, rec.Body.String())
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		var state struct {
			Steps struct {
				HasGeneratedCV bool `json:"hasGeneratedCV"`
			} `json:"steps"`
		}
		h.decode(t, h.do(t, http.MethodGet, "/api/v1/jobs/"+h.jobID+"/wizard", nil), &state)
		if state.Steps.HasGeneratedCV {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("poller never marked generation complete")
		}
		time.Sleep(5 * time.Millisecond)
	}

	var status struct {
		Document struct {
			ID      string `json:"id"`
			Status  string `json:"status"`
			Content string `json:"content"`
		} `json:"document"`
		PollState string `json:"pollState"`
	}
	h.decode(t, h.do(t, http.MethodGet, "/api/v1/jobs/"+h.jobID+"/wizard/cv/status", nil), &status)
	if status.Document.Status != generation.StatusCompleted {
		t.Fatalf("unexpected document status %q", status.Document.Status)
	}
	if status.Document.Content != "final cv" {
		t.Fatalf("unexpected content %q", status.Document.Content)
	}
}

func TestHandlerUpdateCVRequiresDocument(t *testing.T) {
	h := newHandlerHarness(t, &fakeAPI{})

	rec := h.do(t, http.MethodPut, "/api/v1/jobs/"+h.jobID+"/wizard/cv", gin.H{"content": "edited"})
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 without document, got %d", rec.Code)
	}

	rec = h.do(t, http.MethodPut, "/api/v1/jobs/"+h.jobID+"/wizard/cv", gin.H{})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing content, got %d", rec.Code)
	}
}

func TestHandlerSetLanguage(t *testing.T) {
	h := newHandlerHarness(t, &fakeAPI{})

	rec := h.do(t, http.MethodPut, "/api/v1/jobs/"+h.jobID+"/wizard/language", gin.H{"language": "DE"})
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp struct {
		Language string `json:"language"`
		Applied  bool   `json:"applied"`
	}
	h.decode(t, rec, &resp)
	if resp.Language != "de" || !resp.Applied {
		t.Fatalf("unexpected response: %+v", resp)
	}

	job, err := h.jobs.Get(context.Background(), "user-1", h.jobID)
	if err != nil {
		t.Fatalf("get job: %v", err)
	}
	if job.Language != "de" {
		t.Fatalf("language not persisted on job, got %q", job.Language)
	}

	rec = h.do(t, http.MethodPut, "/api/v1/jobs/"+h.jobID+"/wizard/language", gin.H{"language": "xx"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unsupported locale must 400, got %d", rec.Code)
	}
}

func TestHandlerResetClearsFlow(t *testing.T) {
	api := &fakeAPI{
		generateCompetences: func(ctx context.Context, input generation.GenerateCompetencesInput) (generation.CompetencesResult, error) {
			return generation.CompetencesResult{CoreCompetences: []string{"Go"}}, nil
		},
	}
	h := newHandlerHarness(t, api)

	if rec := h.do(t, http.MethodPost, "/api/v1/jobs/"+h.jobID+"/wizard/competences", nil); rec.Code != http.StatusOK {
		t.Fatalf("generate: status %d", rec.Code)
	}

	rec := h.do(t, http.MethodPost, "/api/v1/jobs/"+h.jobID+"/wizard/reset", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("reset: status %d", rec.Code)
	}

	var state struct {
		Steps struct {
			HasGeneratedCompetences bool `json:"hasGeneratedCompetences"`
		} `json:"steps"`
		Competences []json.RawMessage `json:"competences"`
	}
	h.decode(t, rec, &state)
	if state.Steps.HasGeneratedCompetences {
		t.Fatal("reset must clear step progress")
	}
	if len(state.Competences) != 0 {
		t.Fatal("reset must clear competences")
	}
}
