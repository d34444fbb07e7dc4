package dashboard

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mwessel/indexdata/internal/model"
)

const (
	defaultHistoryLimit = 90
	maxHistoryLimit     = 10000
)

type companyResponse struct {
	Ticker        string `json:"ticker"`
	Index         string `json:"index"`
	Company       string `json:"company"`
	Sector        string `json:"sector"`
	IngestionDate string `json:"ingestion_date"`
}

type barResponse struct {
	Ticker      string   `json:"ticker"`
	Index       string   `json:"index"`
	Date        string   `json:"date"`
	Open        float64  `json:"open"`
	High        float64  `json:"high"`
	Low         float64  `json:"low"`
	Close       float64  `json:"close"`
	Volume      int64    `json:"volume"`
	Dividends   *float64 `json:"dividends,omitempty"`
	StockSplits *float64 `json:"stock_splits,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleCompanies(w http.ResponseWriter, r *http.Request) {
	filter := CompanyFilter{
		Index:  r.URL.Query().Get("index"),
		Sector: r.URL.Query().Get("sector"),
	}
	if raw := r.URL.Query().Get("ingestion_date"); raw != "" {
		d, err := time.Parse("2006-01-02", raw)
		if err != nil {
			s.respondError(w, http.StatusBadRequest, "ingestion_date must be YYYY-MM-DD")
			return
		}
		filter.IngestionDate = &d
	}

	companies, err := s.store.Companies(r.Context(), filter)
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list companies")
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	out := make([]companyResponse, 0, len(companies))
	for _, c := range companies {
		out = append(out, companyResponse{
			Ticker:        c.Ticker,
			Index:         c.Index,
			Company:       c.Name,
			Sector:        c.Sector,
			IngestionDate: c.IngestionDate.Format("2006-01-02"),
		})
	}
	s.respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleIndices(w http.ResponseWriter, r *http.Request) {
	summaries, err := s.store.Indices(r.Context())
	if err != nil {
		s.log.Error().Err(err).Msg("Failed to list indices")
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if summaries == nil {
		summaries = []IndexSummary{}
	}
	s.respondJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	ticker := chi.URLParam(r, "ticker")

	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > maxHistoryLimit {
			s.respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	bars, err := s.store.History(r.Context(), ticker, limit)
	if err != nil {
		s.log.Error().Err(err).Str("ticker", ticker).Msg("Failed to load history")
		s.respondError(w, http.StatusInternalServerError, "query failed")
		return
	}

	out := make([]barResponse, 0, len(bars))
	for _, b := range bars {
		out = append(out, toBarResponse(b))
	}
	s.respondJSON(w, http.StatusOK, out)
}

func toBarResponse(b model.PriceBar) barResponse {
	return barResponse{
		Ticker:      b.Ticker,
		Index:       b.Index,
		Date:        b.Date.Format("2006-01-02"),
		Open:        b.Open,
		High:        b.High,
		Low:         b.Low,
		Close:       b.Close,
		Volume:      b.Volume,
		Dividends:   b.Dividends,
		StockSplits: b.StockSplits,
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error().Err(err).Msg("Failed to encode response")
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, msg string) {
	s.respondJSON(w, status, map[string]string{"error": msg})
}
