// Package importer reads influencer spreadsheets and writes the agency's
// export workbooks and JSONL backups.
//
// Supported inputs are xlsx workbooks (first sheet), CSV and JSONL. Header
// names are matched loosely: case is folded under Turkish rules, spaces,
// underscores and hyphens are ignored, and both the English field names
// and the Turkish column titles used by the agency are accepted.
package importer

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/talentdesk/talentdesk/internal/schema"
)

// MaxSize is the largest accepted input file.
const MaxSize = 5 << 20

var (
	// ErrTooLarge is returned for inputs over MaxSize.
	ErrTooLarge = fmt.Errorf("file exceeds %d MB limit", MaxSize>>20)

	// ErrEmpty is returned when a file has no data rows.
	ErrEmpty = errors.New("file contains no data rows")

	// ErrUnknownFormat is returned for unsupported file types.
	ErrUnknownFormat = errors.New("unsupported file format (want .xlsx, .csv or .jsonl)")
)

// Format is an import/export file format.
type Format string

const (
	FormatXLSX  Format = "xlsx"
	FormatCSV   Format = "csv"
	FormatJSONL Format = "jsonl"
)

// DetectFormat picks a format from a file name's extension.
func DetectFormat(name string) (Format, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".jsonl", ".ndjson":
		return FormatJSONL, nil
	}
	return "", fmt.Errorf("%w: %s", ErrUnknownFormat, name)
}

// ReadInfluencersFile opens path and reads it with the format implied by
// its extension.
func ReadInfluencersFile(path string) ([]schema.Influencer, error) {
	format, err := DetectFormat(path)
	if err != nil {
		return nil, err
	}

	// #nosec G304 - controlled path from CLI
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	if info, err := f.Stat(); err == nil && info.Size() > MaxSize {
		return nil, ErrTooLarge
	}
	return ReadInfluencers(f, format)
}

// ReadInfluencers parses influencer rows from r.
//
// Every row is defaulted and validated. The first bad row aborts the read
// with a *schema.RowError carrying its 1-based data row number (the header
// is not counted). Blank rows are skipped. The collaboration count column
// is ignored because counts are derived.
func ReadInfluencers(r io.Reader, format Format) ([]schema.Influencer, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}

	var out []schema.Influencer
	switch format {
	case FormatXLSX:
		table, err := readXLSX(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
		out, err = tableToInfluencers(table)
		if err != nil {
			return nil, err
		}
	case FormatCSV:
		table, err := readCSV(data)
		if err != nil {
			return nil, err
		}
		out, err = tableToInfluencers(table)
		if err != nil {
			return nil, err
		}
	case FormatJSONL:
		out, err = readInfluencersJSONL(bytes.NewReader(data))
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}

	if len(out) == 0 {
		return nil, ErrEmpty
	}
	return out, nil
}

// finishRow applies defaults and validation to a parsed row.
func finishRow(n int, inf schema.Influencer) (schema.Influencer, error) {
	inf.ID = ""
	inf.CollaborationCount = 0
	inf.CreatedAt = nil
	inf.SetDefaults()
	if err := inf.Validate(); err != nil {
		return schema.Influencer{}, &schema.RowError{Row: n, Err: err}
	}
	return inf, nil
}
