package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/analysis"
	"github.com/sells-group/visibility-cli/internal/model"
	"github.com/sells-group/visibility-cli/internal/report"
	"github.com/sells-group/visibility-cli/internal/store"
)

// resultView is the JSON shape of a stored analysis. Report bodies are
// replaced by the list of downloadable formats.
type resultView struct {
	Token              string                  `json:"token"`
	Lead               model.Lead              `json:"lead"`
	Business           model.BusinessProfile   `json:"business"`
	Competitors        []model.BusinessProfile `json:"competitors"`
	CompetitorScores   []int                   `json:"competitor_scores"`
	Scores             model.ScoreResult       `json:"scores"`
	TopCompetitorName  string                  `json:"top_competitor_name,omitempty"`
	CompetitorsBeating int                     `json:"competitors_beating"`
	ReviewRatioText    string                  `json:"review_ratio_text"`
	Reports            []string                `json:"reports"`
	CreatedAt          time.Time               `json:"created_at"`
	ExpiresAt          *time.Time              `json:"expires_at,omitempty"`
}

func newResultView(a *model.Analysis) resultView {
	v := resultView{
		Token:              a.Token,
		Lead:               a.Lead,
		Business:           a.Business,
		Competitors:        a.Competitors,
		CompetitorScores:   a.CompetitorScores,
		Scores:             a.Scores,
		TopCompetitorName:  a.TopCompetitorName,
		CompetitorsBeating: a.CompetitorsBeating,
		ReviewRatioText:    a.ReviewRatioText,
		Reports:            []string{},
		CreatedAt:          a.CreatedAt,
	}
	if v.Competitors == nil {
		v.Competitors = []model.BusinessProfile{}
	}
	if v.CompetitorScores == nil {
		v.CompetitorScores = []int{}
	}
	for _, f := range report.Formats() {
		if a.HasReport(f) {
			v.Reports = append(v.Reports, f)
		}
	}
	if !a.ExpiresAt.IsZero() {
		exp := a.ExpiresAt
		v.ExpiresAt = &exp
	}
	return v
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	lead, err := decodeLead(w, r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if missing := lead.MissingFields(); len(missing) > 0 {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   analysis.UserMessage(analysis.ErrInvalidLead),
			"missing": missing,
		})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.opts.AnalyzeTimeout)
	defer cancel()

	a, err := s.svc.Analyze(ctx, lead)
	if err != nil {
		writeError(w, analyzeStatus(err), analysis.UserMessage(err))
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"token":  a.Token,
		"result": newResultView(a),
	})
}

func analyzeStatus(err error) int {
	switch {
	case errors.Is(err, analysis.ErrInvalidLead):
		return http.StatusBadRequest
	case errors.Is(err, analysis.ErrBusinessNotFound):
		return http.StatusNotFound
	case errors.Is(err, analysis.ErrUpstream):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) handleResult(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newResultView(a))
}

func (s *Server) handleResultPage(w http.ResponseWriter, r *http.Request) {
	a, ok := s.lookup(w, r)
	if !ok {
		return
	}

	page, found := a.Reports[report.FormatHTML]
	if !found || len(page.Data) == 0 {
		var err error
		page, err = report.Render(a, report.FormatHTML)
		if err != nil {
			zap.L().Error("server: render result page", zap.String("token", a.Token), zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
			return
		}
	}

	w.Header().Set("Content-Type", page.ContentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(page.Data)
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	format := r.URL.Query().Get("format")
	if format == "" {
		format = report.FormatHTML
	}
	if !report.Supported(format) {
		writeError(w, http.StatusBadRequest, "unsupported format "+strconv.Quote(format))
		return
	}

	a, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !a.HasReport(format) {
		writeError(w, http.StatusNotFound, "report not available")
		return
	}

	doc := a.Reports[format]
	w.Header().Set("Content-Type", doc.ContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": doc.Filename}))
	w.Header().Set("Content-Length", strconv.Itoa(len(doc.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc.Data)
}

func (s *Server) handleScore(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	req, err := model.DecodeScoreRequest(body)
	if err != nil {
		var schemaErr *model.SchemaError
		if errors.As(err, &schemaErr) {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
				"error":      "request does not match schema",
				"violations": schemaErr.Violations,
			})
			return
		}
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	writeJSON(w, http.StatusOK, newResultView(s.svc.ScoreProfile(req)))
}

// lookup fetches the analysis named by the token path parameter. It writes
// the error response itself and reports whether the caller may continue.
func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (*model.Analysis, bool) {
	token := chi.URLParam(r, "token")
	a, err := s.svc.Get(r.Context(), token)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "result not found or expired")
			return nil, false
		}
		zap.L().Error("server: load result", zap.String("token", token), zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Something went wrong. Please try again.")
		return nil, false
	}
	return a, true
}

// decodeLead reads a lead from a JSON or form-encoded body.
func decodeLead(w http.ResponseWriter, r *http.Request) (model.Lead, error) {
	var lead model.Lead
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if ct == "application/json" {
		if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
			return lead, err
		}
	} else {
		if err := r.ParseForm(); err != nil {
			return lead, err
		}
		lead = model.Lead{
			FirstName:    r.PostForm.Get("first_name"),
			Email:        r.PostForm.Get("email"),
			Phone:        r.PostForm.Get("phone"),
			BusinessName: r.PostForm.Get("business_name"),
			City:         r.PostForm.Get("city"),
		}
	}

	lead.FirstName = strings.TrimSpace(lead.FirstName)
	lead.Email = strings.TrimSpace(lead.Email)
	lead.Phone = strings.TrimSpace(lead.Phone)
	lead.BusinessName = strings.TrimSpace(lead.BusinessName)
	lead.City = strings.TrimSpace(lead.City)
	return lead, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Warn("server: encode response", zap.Error(err))
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
