package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/richxcame/lead-forensics/internal/scoring"
	"github.com/richxcame/lead-forensics/pkg/logger"
	"go.uber.org/zap"
)

var (
	// ErrEmptyFile is returned when the input has no header row
	ErrEmptyFile = errors.New("ingest: input file is empty")
	// ErrMissingHeader is returned when none of the lead columns are present
	ErrMissingHeader = errors.New("ingest: no name, email or phone column found")
)

// headerAliases maps accepted column names onto lead fields
var headerAliases = map[string]string{
	"name":          "name",
	"full_name":     "name",
	"lead_name":     "name",
	"email":         "email",
	"email_address": "email",
	"lead_email":    "email",
	"phone":         "phone",
	"phone_number":  "phone",
	"lead_phone":    "phone",
	"address":       "address",
	"street":        "address",
	"city":          "city",
	"state":         "state",
	"zip":           "zip",
	"zipcode":       "zip",
	"zip_code":      "zip",
	"postal_code":   "zip",
}

// ReadLeadsFile opens a CSV file and reads its leads in file order
func ReadLeadsFile(path string) ([]scoring.Lead, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open leads file: %w", err)
	}
	defer f.Close()

	leads, err := ReadLeads(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	logger.Info("Loaded leads", zap.String("file", path), zap.Int("lead_count", len(leads)))
	return leads, nil
}

// ReadLeads parses a CSV table with a header row. Unknown columns are ignored
// and missing cells become empty fields. Row order is preserved.
func ReadLeads(r io.Reader) ([]scoring.Lead, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	columns := mapColumns(header)
	if !hasAny(columns, "name", "email", "phone") {
		return nil, ErrMissingHeader
	}

	leads := make([]scoring.Lead, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row %d: %w", len(leads)+2, err)
		}
		if isBlank(record) {
			continue
		}
		leads = append(leads, toLead(record, columns))
	}

	return leads, nil
}

func mapColumns(header []string) map[string]int {
	columns := make(map[string]int, len(header))
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		key = strings.ReplaceAll(key, " ", "_")
		field, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, taken := columns[field]; !taken {
			columns[field] = i
		}
	}
	return columns
}

func hasAny(columns map[string]int, fields ...string) bool {
	for _, f := range fields {
		if _, ok := columns[f]; ok {
			return true
		}
	}
	return false
}

func isBlank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func toLead(record []string, columns map[string]int) scoring.Lead {
	get := func(field string) string {
		i, ok := columns[field]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	return scoring.Lead{
		Name:    get("name"),
		Email:   get("email"),
		Phone:   get("phone"),
		Address: get("address"),
		City:    get("city"),
		State:   get("state"),
		Zip:     get("zip"),
	}
}
