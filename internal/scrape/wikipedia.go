package scrape

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/mwessel/indexdata/internal/model"
)

// Canonical field names the scraper can extract.
const (
	FieldTicker  = "ticker"
	FieldCompany = "company"
	FieldSector  = "sector"
)

// Errors returned by the scraper.
var (
	ErrNoTable         = errors.New("no wikitable at configured index")
	ErrColumnsNotFound = errors.New("too few matching columns")
)

// Target describes one index-membership page to scrape.
type Target struct {
	Index       string              // Index name stamped on every row
	URL         string              // Wikipedia page URL
	TableIndex  int                 // Which table.wikitable on the page
	ExpectedMin int                 // Plausible member count range (warning only)
	ExpectedMax int
	Columns     map[string][]string // Canonical field -> acceptable header spellings
}

// Scraper fetches and parses index-membership tables.
type Scraper struct {
	httpClient *http.Client
	userAgent  string
	maxRetries uint64
	retryDelay time.Duration
	log        zerolog.Logger
}

// Option configures a Scraper.
type Option func(*Scraper)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(s *Scraper) { s.httpClient = hc }
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(s *Scraper) { s.userAgent = ua }
}

// WithMaxRetries sets how many times a failed page fetch is retried.
func WithMaxRetries(n uint64) Option {
	return func(s *Scraper) { s.maxRetries = n }
}

// WithRetryDelay sets the delay between fetch attempts.
func WithRetryDelay(d time.Duration) Option {
	return func(s *Scraper) { s.retryDelay = d }
}

// New creates a Scraper.
func New(log zerolog.Logger, opts ...Option) *Scraper {
	s := &Scraper{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		userAgent:  "Mozilla/5.0 (compatible; indexdata/1.0)",
		maxRetries: 3,
		retryDelay: 5 * time.Second,
		log:        log.With().Str("component", "scrape").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FetchIndex downloads the target page and extracts its membership table.
func (s *Scraper) FetchIndex(ctx context.Context, t Target) ([]model.Company, error) {
	doc, err := s.fetchDocument(ctx, t.URL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", t.URL, err)
	}

	table := doc.Find("table.wikitable").Eq(t.TableIndex)
	if table.Length() == 0 {
		return nil, fmt.Errorf("%s table %d: %w", t.URL, t.TableIndex, ErrNoTable)
	}

	cols, matched := matchColumns(table, t.Columns)
	if matched < 2 {
		return nil, fmt.Errorf("%s: matched %d of %d fields: %w",
			t.Index, matched, len(t.Columns), ErrColumnsNotFound)
	}

	companies := extractRows(table, cols, t.Index)

	if t.ExpectedMax > 0 && (len(companies) < t.ExpectedMin || len(companies) > t.ExpectedMax) {
		s.log.Warn().
			Str("index", t.Index).
			Int("rows", len(companies)).
			Int("expected_min", t.ExpectedMin).
			Int("expected_max", t.ExpectedMax).
			Msg("Row count outside expected range")
	}

	s.log.Info().
		Str("index", t.Index).
		Int("rows", len(companies)).
		Msg("Extracted membership table")

	return companies, nil
}

// fetchDocument GETs the page with retries on transport errors and
// non-200 responses.
func (s *Scraper) fetchDocument(ctx context.Context, url string) (*goquery.Document, error) {
	fetch := func() (*goquery.Document, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return nil, backoff.Permanent(err)
		}
		req.Header.Set("User-Agent", s.userAgent)

		resp, err := s.httpClient.Do(req)
		if err != nil {
			return nil, err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("http status %d", resp.StatusCode)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("parse html: %w", err))
		}
		return doc, nil
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewConstantBackOff(s.retryDelay), s.maxRetries),
		ctx,
	)
	return backoff.RetryWithData(fetch, policy)
}

// matchColumns maps canonical fields to cell positions by comparing the
// header row against each field's synonym list, case-insensitively.
func matchColumns(table *goquery.Selection, criteria map[string][]string) (cols map[string]int, matched int) {
	var headers []string
	table.Find("tr").First().Find("th").Each(func(_ int, th *goquery.Selection) {
		headers = append(headers, normalize(th.Text()))
	})

	cols = make(map[string]int)
	for field, synonyms := range criteria {
		for i, h := range headers {
			if containsNormalized(synonyms, h) {
				cols[field] = i
				matched++
				break
			}
		}
	}
	return cols, matched
}

// extractRows walks the table body and builds one Company per row that
// carries all extracted fields.
func extractRows(table *goquery.Selection, cols map[string]int, index string) []model.Company {
	var companies []model.Company

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		if i == 0 {
			return // header row
		}
		cells := tr.Find("td")
		if cells.Length() == 0 {
			return
		}

		get := func(field string) string {
			pos, ok := cols[field]
			if !ok || pos >= cells.Length() {
				return ""
			}
			return strings.TrimSpace(cells.Eq(pos).Text())
		}

		companies = append(companies, model.Company{
			Ticker: get(FieldTicker),
			Name:   get(FieldCompany),
			Sector: get(FieldSector),
			Index:  index,
		})
	})
	return companies
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func containsNormalized(list []string, v string) bool {
	for _, s := range list {
		if normalize(s) == v {
			return true
		}
	}
	return false
}
