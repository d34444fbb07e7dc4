package csvfs

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/mwessel/indexdata/internal/model"
)

// Errors returned by the CSV readers.
var (
	ErrEmptyFile      = errors.New("no data in file")
	ErrMissingColumns = errors.New("missing required columns")
)

var companyHeader = []string{"ticker", "company", "sector", "index"}

// CompanyFileName returns the staging file name for an index snapshot.
func CompanyFileName(dir, index string) string {
	return filepath.Join(dir, index+"_companies.csv")
}

// WriteCompanies writes a company snapshot to dir, creating it if needed.
func WriteCompanies(dir, index string, companies []model.Company) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create dir %s: %w", dir, err)
	}

	path := CompanyFileName(dir, index)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(companyHeader); err != nil {
		return "", fmt.Errorf("write header: %w", err)
	}
	for _, c := range companies {
		if err := w.Write([]string{c.Ticker, c.Name, c.Sector, c.Index}); err != nil {
			return "", fmt.Errorf("write row: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("flush %s: %w", path, err)
	}
	return path, nil
}

// ReadCompanies reads a company snapshot file. Rows with empty required
// fields are skipped and counted; a header missing required columns fails
// the whole file.
func ReadCompanies(path string) (companies []model.Company, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, 0, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err == io.EOF {
		return nil, 0, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	if err != nil {
		return nil, 0, fmt.Errorf("read header of %s: %w", path, err)
	}

	cols, err := columnIndex(header, companyHeader)
	if err != nil {
		return nil, 0, fmt.Errorf("%s: %w", path, err)
	}

	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, 0, fmt.Errorf("read row of %s: %w", path, err)
		}

		c := model.Company{
			Ticker: cell(row, cols["ticker"]),
			Name:   cell(row, cols["company"]),
			Sector: cell(row, cols["sector"]),
			Index:  cell(row, cols["index"]),
		}
		if c.Validate() != nil {
			skipped++
			continue
		}
		companies = append(companies, c)
	}

	if len(companies) == 0 && skipped == 0 {
		return nil, 0, fmt.Errorf("%s: %w", path, ErrEmptyFile)
	}
	return companies, skipped, nil
}

// columnIndex maps each required column name to its position in the
// header, case-insensitively.
func columnIndex(header, required []string) (map[string]int, error) {
	pos := make(map[string]int, len(header))
	for i, h := range header {
		pos[strings.ToLower(strings.TrimSpace(h))] = i
	}

	cols := make(map[string]int, len(required))
	var missing []string
	for _, name := range required {
		i, ok := pos[name]
		if !ok {
			missing = append(missing, name)
			continue
		}
		cols[name] = i
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}
	return cols, nil
}

func cell(row []string, i int) string {
	if i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}
