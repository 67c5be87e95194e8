package importer

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/talentdesk/talentdesk/internal/schema"
)

func readXLSX(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrEmpty
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

// readCSV parses comma or semicolon separated data. Spreadsheet programs in
// Turkish locales export with semicolons.
func readCSV(data []byte) ([][]string, error) {
	cr := csv.NewReader(bytes.NewReader(data))
	header, _, _ := bytes.Cut(data, []byte("\n"))
	if bytes.Count(header, []byte(";")) > bytes.Count(header, []byte(",")) {
		cr.Comma = ';'
	}
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	rows, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse CSV: %w", err)
	}
	return rows, nil
}

// tableToInfluencers maps a header row plus data rows to influencers.
func tableToInfluencers(table [][]string) ([]schema.Influencer, error) {
	if len(table) < 2 {
		return nil, ErrEmpty
	}

	columns := make([]field, len(table[0]))
	for i, h := range table[0] {
		columns[i] = lookupField(h)
	}

	var out []schema.Influencer
	for i, row := range table[1:] {
		n := i + 1
		if blankRow(row) {
			continue
		}
		inf, err := mapRow(columns, row)
		if err != nil {
			return nil, &schema.RowError{Row: n, Err: err}
		}
		inf, err = finishRow(n, inf)
		if err != nil {
			return nil, err
		}
		out = append(out, inf)
	}
	return out, nil
}

func mapRow(columns []field, row []string) (schema.Influencer, error) {
	var inf schema.Influencer
	for i, f := range columns {
		if i >= len(row) {
			break
		}
		v := strings.TrimSpace(row[i])
		if v == "" {
			continue
		}

		switch f {
		case fieldName:
			inf.Name = v
		case fieldBrand:
			inf.Brand = v
		case fieldFee:
			fee, err := parseAmount(v)
			if err != nil {
				return inf, fmt.Errorf("fee %q is not a number", v)
			}
			inf.Fee = fee
		case fieldStatus:
			s, err := schema.ParseStatus(v)
			if err != nil {
				return inf, err
			}
			inf.Status = s
		case fieldCategory:
			c, err := schema.ParseCategory(v)
			if err != nil {
				return inf, err
			}
			inf.Category = c
		case fieldImage:
			inf.Image = v
		case fieldPhone:
			inf.Phone = v
		case fieldEmail:
			inf.Email = v
		case fieldInstagram:
			inf.Instagram = v
		case fieldTikTok:
			inf.TikTok = v
		}
	}
	return inf, nil
}

var thousandsOnly = regexp.MustCompile(`^\d{1,3}(\.\d{3})+$`)

// parseAmount accepts plain numbers as well as Turkish formatting such as
// "5.000,50 ₺".
func parseAmount(s string) (float64, error) {
	s = strings.TrimSpace(strings.NewReplacer("₺", "", "TL", "", " ", "", "\u00a0", "").Replace(s))
	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case comma < 0 && thousandsOnly.MatchString(s):
		s = strings.ReplaceAll(s, ".", "")
	case comma > dot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot > comma && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
