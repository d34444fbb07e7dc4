package dashboard

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mwessel/indexdata/internal/model"
)

type fakeStore struct {
	companies  []model.Company
	lastFilter CompanyFilter
	summaries  []IndexSummary
	bars       []model.PriceBar
	lastTicker string
	lastLimit  int
	err        error
}

func (f *fakeStore) Companies(_ context.Context, filter CompanyFilter) ([]model.Company, error) {
	f.lastFilter = filter
	return f.companies, f.err
}

func (f *fakeStore) Indices(_ context.Context) ([]IndexSummary, error) {
	return f.summaries, f.err
}

func (f *fakeStore) History(_ context.Context, ticker string, limit int) ([]model.PriceBar, error) {
	f.lastTicker = ticker
	f.lastLimit = limit
	return f.bars, f.err
}

func newTestServer(store Store) *Server {
	return NewServer(0, store, zerolog.Nop())
}

func get(t *testing.T, s *Server, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHealth(t *testing.T) {
	rec := get(t, newTestServer(&fakeStore{}), "/health")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"ok"`)
}

func TestCompaniesPassesFilters(t *testing.T) {
	store := &fakeStore{companies: []model.Company{{
		Ticker: "AAPL", Index: "sp500", Name: "Apple Inc.", Sector: "Technology",
		IngestionDate: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
	}}}
	s := newTestServer(store)

	rec := get(t, s, "/api/companies?index=sp500&sector=Technology&ingestion_date=2024-03-15")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "sp500", store.lastFilter.Index)
	assert.Equal(t, "Technology", store.lastFilter.Sector)
	require.NotNil(t, store.lastFilter.IngestionDate)
	assert.Equal(t, "2024-03-15", store.lastFilter.IngestionDate.Format("2006-01-02"))

	var out []companyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "AAPL", out[0].Ticker)
	assert.Equal(t, "Apple Inc.", out[0].Company)
	assert.Equal(t, "2024-03-15", out[0].IngestionDate)
}

func TestCompaniesBadDate(t *testing.T) {
	rec := get(t, newTestServer(&fakeStore{}), "/api/companies?ingestion_date=15-03-2024")

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "YYYY-MM-DD")
}

func TestCompaniesStoreError(t *testing.T) {
	rec := get(t, newTestServer(&fakeStore{err: errors.New("boom")}), "/api/companies")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "boom")
}

func TestIndicesEmptyIsArray(t *testing.T) {
	rec := get(t, newTestServer(&fakeStore{}), "/api/indices")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]\n", rec.Body.String())
}

func TestHistoryDefaults(t *testing.T) {
	div := 0.24
	store := &fakeStore{bars: []model.PriceBar{{
		Ticker: "AAPL", Index: "sp500",
		Date: time.Date(2024, 3, 14, 0, 0, 0, 0, time.UTC),
		Open: 100, High: 110, Low: 95, Close: 105, Volume: 1000,
		Dividends: &div,
	}}}
	s := newTestServer(store)

	rec := get(t, s, "/api/ohlc/AAPL")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "AAPL", store.lastTicker)
	assert.Equal(t, defaultHistoryLimit, store.lastLimit)

	var out []barResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.Len(t, out, 1)
	assert.Equal(t, "2024-03-14", out[0].Date)
	require.NotNil(t, out[0].Dividends)
	assert.Equal(t, 0.24, *out[0].Dividends)
	assert.Nil(t, out[0].StockSplits)
}

func TestHistoryLimitValidation(t *testing.T) {
	tests := []struct {
		name  string
		query string
		code  int
	}{
		{"explicit limit", "?limit=30", http.StatusOK},
		{"zero", "?limit=0", http.StatusBadRequest},
		{"negative", "?limit=-5", http.StatusBadRequest},
		{"not a number", "?limit=abc", http.StatusBadRequest},
		{"too large", "?limit=99999", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{}
			rec := get(t, newTestServer(store), "/api/ohlc/AAPL"+tt.query)
			assert.Equal(t, tt.code, rec.Code)
			if tt.code == http.StatusOK {
				assert.Equal(t, 30, store.lastLimit)
			}
		})
	}
}
