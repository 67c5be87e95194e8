package importer

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/talentdesk/talentdesk/internal/schema"
)

// readInfluencersJSONL decodes one influencer per line. Row numbers in
// errors count decoded records from 1.
func readInfluencersJSONL(r io.Reader) ([]schema.Influencer, error) {
	var out []schema.Influencer
	decoder := json.NewDecoder(r)
	n := 0

	for {
		var inf schema.Influencer
		if err := decoder.Decode(&inf); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, &schema.RowError{Row: n + 1, Err: fmt.Errorf("invalid JSON: %w", err)}
		}
		n++

		inf, err := finishRow(n, inf)
		if err != nil {
			return nil, err
		}
		out = append(out, inf)
	}
	return out, nil
}

// ReadJSONL decodes a JSONL backup of either collection without altering
// the records.
func ReadJSONL[T schema.Record](r io.Reader) ([]T, error) {
	var out []T
	decoder := json.NewDecoder(r)
	for n := 1; ; n++ {
		var rec T
		if err := decoder.Decode(&rec); err != nil {
			if errors.Is(err, io.EOF) {
				return out, nil
			}
			return nil, fmt.Errorf("invalid JSON at record %d: %w", n, err)
		}
		out = append(out, rec)
	}
}

// WriteJSONL writes one record per line.
func WriteJSONL[T schema.Record](w io.Writer, records []T) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)
	for i := range records {
		if err := enc.Encode(records[i]); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i+1, err)
		}
	}
	return bw.Flush()
}

// WriteFileAtomic writes path via a temp file in the same directory and a
// rename, so readers never see a partial file.
func WriteFileAtomic(path string, write func(io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	tmpPath := path + ".tmp"
	// #nosec G304 - controlled path from CLI
	f, err := os.OpenFile(tmpPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}

	if err := write(f); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
