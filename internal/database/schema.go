package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

// DDL for the two tables. Constraints mirror the record invariants:
// natural keys, non-empty strings, non-negative prices/volume, and the
// OHLC range checks (high >= low, open/close within [low, high]).
const (
	companiesDDL = `
CREATE TABLE IF NOT EXISTS companies (
    ticker              VARCHAR(20)  NOT NULL,
    "index"             VARCHAR(50)  NOT NULL,
    company             VARCHAR(255) NOT NULL,
    sector              VARCHAR(255) NOT NULL,
    ingestion_timestamp TIMESTAMP    NOT NULL,
    ingestion_date      DATE         NOT NULL,
    PRIMARY KEY (ticker, "index"),
    CONSTRAINT check_ticker_not_empty  CHECK (char_length(ticker) > 0),
    CONSTRAINT check_index_not_empty   CHECK (char_length("index") > 0),
    CONSTRAINT check_company_not_empty CHECK (char_length(company) > 0),
    CONSTRAINT check_sector_not_empty  CHECK (char_length(sector) > 0)
)`

	ohlcDDL = `
CREATE TABLE IF NOT EXISTS ohlc_data (
    id                  BIGSERIAL PRIMARY KEY,
    "index"             VARCHAR(50)      NOT NULL,
    ticker              VARCHAR(20)      NOT NULL,
    date                DATE             NOT NULL,
    open                DOUBLE PRECISION NOT NULL,
    high                DOUBLE PRECISION NOT NULL,
    low                 DOUBLE PRECISION NOT NULL,
    close               DOUBLE PRECISION NOT NULL,
    volume              BIGINT           NOT NULL,
    dividends           DOUBLE PRECISION,
    stock_splits        DOUBLE PRECISION,
    ingestion_timestamp TIMESTAMP        NOT NULL,
    ingestion_date      DATE             NOT NULL,
    CONSTRAINT unique_ticker_date            UNIQUE (ticker, date),
    CONSTRAINT check_ohlc_index_not_empty    CHECK (char_length("index") > 0),
    CONSTRAINT check_ohlc_ticker_not_empty   CHECK (char_length(ticker) > 0),
    CONSTRAINT check_open_non_negative       CHECK (open >= 0),
    CONSTRAINT check_high_non_negative       CHECK (high >= 0),
    CONSTRAINT check_low_non_negative        CHECK (low >= 0),
    CONSTRAINT check_close_non_negative      CHECK (close >= 0),
    CONSTRAINT check_volume_non_negative     CHECK (volume >= 0),
    CONSTRAINT check_high_gte_low            CHECK (high >= low),
    CONSTRAINT check_open_between_low_high   CHECK (open BETWEEN low AND high),
    CONSTRAINT check_close_between_low_high  CHECK (close BETWEEN low AND high)
)`
)

// Migrate creates both tables if they do not already exist.
func Migrate(ctx context.Context, pool *pgxpool.Pool, log zerolog.Logger) error {
	for _, table := range []struct {
		name string
		ddl  string
	}{
		{"companies", companiesDDL},
		{"ohlc_data", ohlcDDL},
	} {
		exists, err := tableExists(ctx, pool, table.name)
		if err != nil {
			return fmt.Errorf("check table %s: %w", table.name, err)
		}
		if exists {
			log.Warn().Str("table", table.name).Msg("Table already exists")
			continue
		}
		if _, err := pool.Exec(ctx, table.ddl); err != nil {
			return fmt.Errorf("create table %s: %w", table.name, err)
		}
		log.Info().Str("table", table.name).Msg("Table created")
	}
	return nil
}

func tableExists(ctx context.Context, pool *pgxpool.Pool, name string) (bool, error) {
	var exists bool
	err := pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM information_schema.tables WHERE table_name = $1)`,
		name,
	).Scan(&exists)
	return exists, err
}
