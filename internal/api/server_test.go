package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lumensyntax-org/truthgit/internal/config"
	"github.com/lumensyntax-org/truthgit/internal/repo"
	"github.com/lumensyntax-org/truthgit/internal/validator"
)

func testServer(t *testing.T, validators ...validator.Validator) *Server {
	t.Helper()
	root := t.TempDir() + "/.truth"
	if err := repo.Init(root, false); err != nil {
		t.Fatalf("init: %v", err)
	}
	cfg := config.Default()
	cfg.RepoPath = root
	r, err := repo.Open(root, cfg, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { r.Close() })
	return New(r, validators, cfg, nil)
}

func passingValidators() []validator.Validator {
	return []validator.Validator{
		validator.NewStatic("ALPHA", 0.9, "sure"),
		validator.NewStatic("BETA", 0.85, "agreed"),
	}
}

func postJSON(t *testing.T, h http.Handler, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) (bool, map[string]any, string) {
	t.Helper()
	var env struct {
		Success bool            `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
		Meta    struct {
			Timestamp string `json:"timestamp"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (%s)", err, rec.Body.String())
	}
	if env.Meta.Timestamp == "" {
		t.Error("meta.timestamp missing")
	}
	var data map[string]any
	if len(env.Data) > 0 && env.Data[0] == '{' {
		if err := json.Unmarshal(env.Data, &data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env.Success, data, env.Error
}

func TestHealthEndpoint(t *testing.T) {
	s := testServer(t, passingValidators()...)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "healthy" || body["version"] != Version {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := testServer(t, passingValidators()...)
	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	success, data, errMsg := decodeEnvelope(t, rec)
	if !success || errMsg != "" {
		t.Fatalf("expected success, got error %q", errMsg)
	}
	if data["initialized"] != true {
		t.Errorf("expected initialized=true, got %v", data)
	}
}

func TestVerifyEndpoint_Passes(t *testing.T) {
	s := testServer(t, passingValidators()...)
	rec := postJSON(t, s.Handler(), "/api/verify", map[string]string{
		"claim":  "The Pacific is the largest ocean",
		"domain": "geography",
	})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	success, data, _ := decodeEnvelope(t, rec)
	if !success {
		t.Fatal("expected success envelope")
	}
	if data["passed"] != true {
		t.Errorf("expected passed=true, got %v", data["passed"])
	}
	if data["claimHash"] == "" {
		t.Error("claimHash missing")
	}
	validators, ok := data["validators"].([]any)
	if !ok || len(validators) != 2 {
		t.Errorf("expected 2 validator views, got %v", data["validators"])
	}
}

func TestVerifyEndpoint_MissingClaim(t *testing.T) {
	s := testServer(t, passingValidators()...)
	rec := postJSON(t, s.Handler(), "/api/verify", map[string]string{"domain": "x"})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	success, _, errMsg := decodeEnvelope(t, rec)
	if success || errMsg == "" {
		t.Error("expected error envelope")
	}
}

func TestVerifyEndpoint_InsufficientValidators(t *testing.T) {
	// one validator against the default quorum of two
	s := testServer(t, validator.NewStatic("ONLY", 0.9, ""))
	rec := postJSON(t, s.Handler(), "/api/verify", map[string]string{"claim": "anything"})

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestProveAndVerifyProofRoundTrip(t *testing.T) {
	s := testServer(t, passingValidators()...)
	h := s.Handler()

	rec := postJSON(t, h, "/api/prove", map[string]string{
		"claim":  "Sound needs a medium to travel",
		"format": "compact",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("prove: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	_, data, _ := decodeEnvelope(t, rec)
	token, ok := data["certificate"].(string)
	if !ok || token == "" {
		t.Fatalf("expected compact certificate, got %v", data["certificate"])
	}

	rec = postJSON(t, h, "/api/verify-proof", map[string]string{"certificate": token})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify-proof: expected 200, got %d", rec.Code)
	}
	_, data, _ = decodeEnvelope(t, rec)
	if data["valid"] != true {
		t.Errorf("expected valid certificate, got %v", data)
	}
	if data["reason"] != "VALID" {
		t.Errorf("expected reason VALID, got %v", data["reason"])
	}
}

func TestProveEndpoint_FailingClaim(t *testing.T) {
	s := testServer(t,
		validator.NewStatic("ALPHA", 0.1, "doubtful"),
		validator.NewStatic("BETA", 0.2, "unlikely"),
	)
	rec := postJSON(t, s.Handler(), "/api/prove", map[string]string{"claim": "The Earth is flat"})

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for failed claim, got %d: %s", rec.Code, rec.Body.String())
	}
}

func TestVerifyProofEndpoint_TamperedToken(t *testing.T) {
	s := testServer(t, passingValidators()...)
	rec := postJSON(t, s.Handler(), "/api/verify-proof", map[string]string{"certificate": "bm90LWEtY2VydA=="})

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with invalid verdict, got %d", rec.Code)
	}
	_, data, _ := decodeEnvelope(t, rec)
	if data["valid"] != false {
		t.Errorf("expected invalid, got %v", data)
	}
}

func TestSearchEndpoint(t *testing.T) {
	s := testServer(t, passingValidators()...)
	h := s.Handler()

	postJSON(t, h, "/api/verify", map[string]string{"claim": "Glass is an amorphous solid", "domain": "materials"})

	req := httptest.NewRequest(http.MethodGet, "/api/search?query=amorphous", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var env struct {
		Success bool             `json:"success"`
		Data    []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !env.Success || len(env.Data) != 1 {
		t.Fatalf("expected one hit, got %v", env.Data)
	}
	if env.Data[0]["status"] != "VERIFIED_PASSED" {
		t.Errorf("expected verified status, got %v", env.Data[0]["status"])
	}

	// missing query parameter
	req = httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400 without query, got %d", rec.Code)
	}
}

func TestClaimsEndpoint(t *testing.T) {
	s := testServer(t, passingValidators()...)
	h := s.Handler()

	postJSON(t, h, "/api/verify", map[string]string{"claim": "History entry one"})
	postJSON(t, h, "/api/verify", map[string]string{"claim": "History entry two"})

	req := httptest.NewRequest(http.MethodGet, "/api/claims", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var env struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(env.Data) != 2 {
		t.Errorf("expected 2 history entries, got %d", len(env.Data))
	}
}

func TestCORSPreflight(t *testing.T) {
	s := testServer(t, passingValidators()...)
	req := httptest.NewRequest(http.MethodOptions, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204 for preflight, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Error("CORS header missing")
	}
}
