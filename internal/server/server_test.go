package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/applytrack/resume-parser/constants"
	"github.com/applytrack/resume-parser/internal/common"
	"github.com/applytrack/resume-parser/internal/parsing"
)

type fakeService struct {
	triggerID  uuid.UUID
	triggerErr error
	view       parsing.StatusView
	statusErr  error

	gotOwner  uuid.UUID
	gotJob    uuid.UUID
	gotCaller uuid.UUID
}

func (f *fakeService) Trigger(_ context.Context, ownerID uuid.UUID) (uuid.UUID, error) {
	f.gotOwner = ownerID
	return f.triggerID, f.triggerErr
}

func (f *fakeService) Status(_ context.Context, jobID, callerID uuid.UUID) (parsing.StatusView, error) {
	f.gotJob = jobID
	f.gotCaller = callerID
	return f.view, f.statusErr
}

const testSecret = "test-secret"

func newTestServer(t *testing.T, svc *fakeService) (*httptest.Server, *TokenService) {
	t.Helper()
	tokens := NewTokenService(testSecret)
	srv := httptest.NewServer(NewRouter(NewParseHandler(svc, nil), tokens, nil))
	t.Cleanup(srv.Close)
	return srv, tokens
}

func doRequest(t *testing.T, method, url, token string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, nil)
	if err != nil {
		t.Fatal(err)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return resp, body
}

func TestTriggerAccepted(t *testing.T) {
	ownerID := uuid.New()
	svc := &fakeService{triggerID: uuid.New()}
	srv, tokens := newTestServer(t, svc)
	token, err := tokens.Sign(ownerID, time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/resume/parse", token)
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	if body["job_id"] != svc.triggerID.String() {
		t.Errorf("job_id = %v", body["job_id"])
	}
	if svc.gotOwner != ownerID {
		t.Errorf("service saw owner %s, want %s", svc.gotOwner, ownerID)
	}
}

func TestTriggerErrorMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"no resume", common.NewAppError(common.CodeNoResumeFound, "no resume on file", nil), http.StatusBadRequest},
		{"in progress", common.NewAppError(common.CodeAlreadyInProgress, "resume parsing already in progress", nil), http.StatusConflict},
		{"internal", common.NewAppError(common.CodeUnexpectedError, "failed to create parsing job", nil), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := &fakeService{triggerErr: tc.err}
			srv, tokens := newTestServer(t, svc)
			token, _ := tokens.Sign(uuid.New(), time.Minute)

			resp, body := doRequest(t, http.MethodPost, srv.URL+"/api/v1/resume/parse", token)
			if resp.StatusCode != tc.wantStatus {
				t.Fatalf("status = %d, want %d", resp.StatusCode, tc.wantStatus)
			}
			if tc.wantStatus == http.StatusInternalServerError && body["message"] != "internal server error" {
				t.Errorf("5xx message leaked internals: %v", body["message"])
			}
		})
	}
}

func TestStatusEndpoint(t *testing.T) {
	ownerID := uuid.New()
	jobID := uuid.New()
	msg := "failed to extract text from resume: bad zip"
	svc := &fakeService{view: parsing.StatusView{JobID: jobID, Status: constants.JobStatusFailed, ErrorMessage: &msg}}
	srv, tokens := newTestServer(t, svc)
	token, _ := tokens.Sign(ownerID, time.Minute)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/v1/resume/parse/"+jobID.String(), token)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["status"] != "failed" || body["error"] != msg {
		t.Errorf("body = %v", body)
	}
	if svc.gotJob != jobID || svc.gotCaller != ownerID {
		t.Errorf("service saw job=%s caller=%s", svc.gotJob, svc.gotCaller)
	}
}

func TestStatusNotFoundMapsTo404(t *testing.T) {
	svc := &fakeService{statusErr: common.NewAppError(common.CodeNotFound, "parsing job not found", nil)}
	srv, tokens := newTestServer(t, svc)
	token, _ := tokens.Sign(uuid.New(), time.Minute)

	resp, _ := doRequest(t, http.MethodGet, srv.URL+"/api/v1/resume/parse/"+uuid.NewString(), token)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestStatusMalformedJobIDLooksLikeMissing(t *testing.T) {
	srv, tokens := newTestServer(t, &fakeService{})
	token, _ := tokens.Sign(uuid.New(), time.Minute)

	resp, body := doRequest(t, http.MethodGet, srv.URL+"/api/v1/resume/parse/not-a-uuid", token)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
	if body["error"] != common.CodeNotFound {
		t.Errorf("error code = %v, want %s", body["error"], common.CodeNotFound)
	}
}

func TestAuthRequired(t *testing.T) {
	srv, _ := newTestServer(t, &fakeService{})

	resp, _ := doRequest(t, http.MethodPost, srv.URL+"/api/v1/resume/parse", "")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", resp.StatusCode)
	}

	other := NewTokenService("different-secret")
	badToken, _ := other.Sign(uuid.New(), time.Minute)
	resp, _ = doRequest(t, http.MethodPost, srv.URL+"/api/v1/resume/parse", badToken)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("wrong secret: status = %d, want 401", resp.StatusCode)
	}
}

func TestHealthzOpen(t *testing.T) {
	srv, _ := newTestServer(t, &fakeService{})
	resp, body := doRequest(t, http.MethodGet, srv.URL+"/healthz", "")
	if resp.StatusCode != http.StatusOK || body["status"] != "ok" {
		t.Fatalf("healthz: %d %v", resp.StatusCode, body)
	}
}
