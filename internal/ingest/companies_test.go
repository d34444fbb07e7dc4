package ingest

import (
	"testing"

	"github.com/mwessel/indexdata/internal/model"
)

func company(ticker, index string) model.Company {
	return model.Company{
		Ticker: ticker,
		Index:  index,
		Name:   ticker + " Inc.",
		Sector: "Technology",
	}
}

func TestPlanCompaniesAllNew(t *testing.T) {
	incoming := []model.Company{company("AAPL", "sp500"), company("MSFT", "sp500")}

	plan := planCompanies(map[model.CompanyKey]struct{}{}, incoming)

	if len(plan.inserts) != 2 {
		t.Errorf("inserts = %d, want 2", len(plan.inserts))
	}
	if len(plan.updates) != 0 {
		t.Errorf("updates = %d, want 0", len(plan.updates))
	}
}

func TestPlanCompaniesResightedBecomesTouch(t *testing.T) {
	existing := map[model.CompanyKey]struct{}{
		{Ticker: "AAPL", Index: "sp500"}: {},
	}
	incoming := []model.Company{company("AAPL", "sp500"), company("MSFT", "sp500")}

	plan := planCompanies(existing, incoming)

	if len(plan.inserts) != 1 || plan.inserts[0].Ticker != "MSFT" {
		t.Errorf("inserts = %+v, want only MSFT", plan.inserts)
	}
	if len(plan.updates) != 1 || plan.updates[0].Ticker != "AAPL" {
		t.Errorf("updates = %+v, want only AAPL", plan.updates)
	}
}

func TestPlanCompaniesSameTickerDifferentIndex(t *testing.T) {
	existing := map[model.CompanyKey]struct{}{
		{Ticker: "AAPL", Index: "sp500"}: {},
	}
	incoming := []model.Company{company("AAPL", "nasdaq100")}

	plan := planCompanies(existing, incoming)

	if len(plan.inserts) != 1 {
		t.Fatalf("inserts = %d, want 1; membership is keyed per index", len(plan.inserts))
	}
	if plan.inserts[0].Index != "nasdaq100" {
		t.Errorf("inserted index = %q, want nasdaq100", plan.inserts[0].Index)
	}
}

func TestPlanCompaniesDedupsWithinFile(t *testing.T) {
	first := company("AAPL", "sp500")
	second := company("AAPL", "sp500")
	second.Sector = "Consumer Electronics"

	plan := planCompanies(map[model.CompanyKey]struct{}{}, []model.Company{first, second})

	if len(plan.inserts) != 1 {
		t.Fatalf("inserts = %d, want 1", len(plan.inserts))
	}
	if plan.inserts[0].Sector != "Technology" {
		t.Errorf("sector = %q, want first occurrence kept", plan.inserts[0].Sector)
	}
}

func TestPlanCompaniesEmptyInput(t *testing.T) {
	plan := planCompanies(map[model.CompanyKey]struct{}{}, nil)

	if len(plan.inserts) != 0 || len(plan.updates) != 0 {
		t.Errorf("empty input produced plan %+v", plan)
	}
}
