package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/lumensyntax-org/truthgit/internal/object"
	"github.com/lumensyntax-org/truthgit/internal/proof"
	"github.com/lumensyntax-org/truthgit/internal/repo"
	"github.com/lumensyntax-org/truthgit/internal/store"
)

type verifyRequest struct {
	Claim  string `json:"claim"`
	Domain string `json:"domain"`
}

type proveRequest struct {
	Claim  string `json:"claim"`
	Domain string `json:"domain"`
	Format string `json:"format"`
}

type verifyProofRequest struct {
	Certificate json.RawMessage `json:"certificate"`
}

type validatorView struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
	Status     string  `json:"status"`
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{
		"name":    "TruthGit API",
		"version": Version,
		"status":  "healthy",
	})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	st, err := s.repo.Status()
	if err != nil {
		respond(w, http.StatusInternalServerError, nil, err.Error(), start)
		return
	}
	respond(w, http.StatusOK, map[string]any{
		"initialized": true,
		"objectCounts": map[string]int{
			"claims":        st.ObjectCounts[object.TypeClaim],
			"axioms":        st.ObjectCounts[object.TypeAxiom],
			"contexts":      st.ObjectCounts[object.TypeContext],
			"verifications": st.ObjectCounts[object.TypeVerification],
		},
		"staged":             len(st.Staged),
		"head":               st.Head,
		"consensusThreshold": s.cfg.Threshold,
	}, "", start)
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req verifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Claim == "" {
		respond(w, http.StatusBadRequest, nil, "claim is required", start)
		return
	}
	if len(s.validators) < s.cfg.Quorum {
		respond(w, http.StatusServiceUnavailable, nil,
			fmt.Sprintf("insufficient validators available: have %d, quorum %d", len(s.validators), s.cfg.Quorum), start)
		return
	}

	_, claimHash, err := s.repo.CreateClaim(req.Claim, req.Domain, 0.5)
	if err != nil {
		respond(w, statusFor(err), nil, err.Error(), start)
		return
	}
	verification, _, err := s.repo.RequestVerification(r.Context(), claimHash, s.validators, repo.VerifyOptions{})
	if err != nil {
		respond(w, statusFor(err), nil, err.Error(), start)
		return
	}

	respond(w, http.StatusOK, map[string]any{
		"passed":     verification.Passed,
		"consensus":  float64(verification.Consensus),
		"quorumMet":  verification.QuorumMet,
		"validators": resultViews(verification.Results),
		"claimHash":  claimHash,
		"timestamp":  verification.Timestamp,
	}, "", start)
}

func (s *Server) handleProve(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req proveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Claim == "" {
		respond(w, http.StatusBadRequest, nil, "claim is required", start)
		return
	}

	_, claimHash, err := s.repo.CreateClaim(req.Claim, req.Domain, 0.5)
	if err != nil {
		respond(w, statusFor(err), nil, err.Error(), start)
		return
	}
	verification, _, err := s.repo.RequestVerification(r.Context(), claimHash, s.validators, repo.VerifyOptions{})
	if err != nil {
		respond(w, statusFor(err), nil, err.Error(), start)
		return
	}
	if !verification.Passed {
		respond(w, http.StatusUnprocessableEntity, nil, "claim did not pass verification", start)
		return
	}

	cert, err := s.repo.IssueProof(claimHash)
	if err != nil {
		respond(w, statusFor(err), nil, err.Error(), start)
		return
	}

	if req.Format == "compact" {
		token, err := cert.Compact()
		if err != nil {
			respond(w, http.StatusInternalServerError, nil, err.Error(), start)
			return
		}
		respond(w, http.StatusOK, map[string]any{"certificate": token}, "", start)
		return
	}
	respond(w, http.StatusOK, map[string]any{"certificate": cert}, "", start)
}

func (s *Server) handleVerifyProof(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	var req verifyProofRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Certificate) == 0 {
		respond(w, http.StatusBadRequest, nil, "certificate is required", start)
		return
	}

	// The certificate field may be a JSON document or a quoted compact
	// token; both decode through the same path.
	token := req.Certificate
	var compact string
	if err := json.Unmarshal(req.Certificate, &compact); err == nil {
		token = []byte(compact)
	}

	result := s.repo.VerifyProof(token)
	data := map[string]any{
		"valid":  result.Valid,
		"reason": result.Reason,
	}
	if cert, err := proof.Parse(token); err == nil {
		data["claim"] = map[string]any{
			"content": cert.Claim.Content,
			"domain":  cert.Claim.Domain,
		}
		data["verification"] = map[string]any{
			"consensus": float64(cert.Verification.Consensus),
			"passed":    cert.Verification.Passed,
			"timestamp": cert.Verification.Timestamp,
		}
	}
	respond(w, http.StatusOK, data, "", start)
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	query := r.URL.Query().Get("query")
	if query == "" {
		respond(w, http.StatusBadRequest, nil, "query is required", start)
		return
	}
	limit := queryInt(r, "limit", 10)
	results, err := s.repo.Search(query, r.URL.Query().Get("domain"), limit)
	if err != nil {
		respond(w, http.StatusInternalServerError, nil, err.Error(), start)
		return
	}

	claims := make([]map[string]any, 0, len(results))
	for _, res := range results {
		claims = append(claims, map[string]any{
			"hash":      res.Hash,
			"content":   res.Claim.Content,
			"domain":    res.Claim.Domain,
			"consensus": res.Consensus,
			"status":    res.State,
		})
	}
	respond(w, http.StatusOK, claims, "", start)
}

func (s *Server) handleClaims(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	limit := queryInt(r, "limit", 10)
	history, err := s.repo.History(limit)
	if err != nil {
		respond(w, http.StatusInternalServerError, nil, err.Error(), start)
		return
	}

	entries := make([]map[string]any, 0, len(history))
	for _, e := range history {
		entries = append(entries, map[string]any{
			"hash":      e.Hash,
			"claimHash": e.Verification.ClaimHash,
			"consensus": float64(e.Verification.Consensus),
			"passed":    e.Verification.Passed,
			"timestamp": e.Verification.Timestamp,
		})
	}
	respond(w, http.StatusOK, entries, "", start)
}

func resultViews(results []object.ValidatorResult) []validatorView {
	out := make([]validatorView, 0, len(results))
	for _, res := range results {
		out = append(out, validatorView{
			Name:       res.Validator,
			Confidence: float64(res.Confidence),
			Rationale:  res.Rationale,
			Status:     string(res.Status),
		})
	}
	return out
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, repo.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, repo.ErrAmbiguousPrefix):
		return http.StatusBadRequest
	case errors.Is(err, store.ErrCorrupt):
		return http.StatusInternalServerError
	default:
		return http.StatusInternalServerError
	}
}

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
