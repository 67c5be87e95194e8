package importer

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/talentdesk/talentdesk/internal/schema"
)

// statusLabels are the Turkish status names used in exported workbooks.
var statusLabels = map[schema.Status]string{
	schema.StatusPending:   "Beklemede",
	schema.StatusApproved:  "Onaylandı",
	schema.StatusCompleted: "Tamamlandı",
}

// categoryLabels are the Turkish category names used in the template.
var categoryLabels = map[schema.Category]string{
	schema.CategoryFashion: "Moda",
	schema.CategorySports:  "Spor",
}

var collaborationColumns = []any{
	"Marka", "Influencer", "Tarih", "Ücret (₺)", "İşbirliği Sayısı", "Atanan Kişi", "Durum",
}

// WriteCollaborations writes the job list as an xlsx workbook with the
// agency's Turkish column titles.
func WriteCollaborations(w io.Writer, records []schema.Collaboration) error {
	rows := make([][]any, 0, len(records))
	for _, c := range records {
		date := c.Date
		if d := c.Day(); !d.IsZero() {
			date = d.Format("02.01.2006")
		}
		influencer := c.InfluencerName
		if influencer == "" {
			influencer = "-"
		}
		rows = append(rows, []any{
			c.Brand, influencer, date, c.Fee, c.CollaborationCount, c.AssignedTo, statusLabel(c.Status),
		})
	}
	return writeWorkbook(w, "İşbirlikleri", collaborationColumns, rows, 20)
}

var influencerColumns = []any{"name", "brand", "fee", "status", "category", "image", "phone", "email", "instagram", "tiktok"}

// WriteInfluencers writes influencers with the import column names, so
// the workbook can be edited and imported again. The trailing count column
// is informational and ignored on import.
func WriteInfluencers(w io.Writer, records []schema.Influencer) error {
	header := append(append([]any{}, influencerColumns...), "collaboration_count")
	rows := make([][]any, 0, len(records))
	for _, inf := range records {
		rows = append(rows, []any{
			inf.Name, inf.Brand, inf.Fee, string(inf.Status), string(inf.Category),
			inf.Image, inf.Phone, inf.Email, inf.Instagram, inf.TikTok, inf.CollaborationCount,
		})
	}
	return writeWorkbook(w, "Influencers", header, rows, 16)
}

// WriteTemplate writes an example import workbook with two sample rows.
func WriteTemplate(w io.Writer) error {
	header := influencerColumns
	rows := [][]any{
		{"Örnek İsim", "Örnek Marka", 5000, statusLabel(schema.StatusPending), categoryLabels[schema.CategoryFashion],
			"https://example.com/image.jpg", "+90 555 123 4567", "ornek@email.com", "ornekkullanici", "ornekkullanici"},
		{"İkinci Örnek", "Başka Marka", 3500, statusLabel(schema.StatusApproved), categoryLabels[schema.CategorySports],
			"https://example.com/image2.jpg", "+90 555 987 6543", "ikinci@email.com", "ikincikullanici", "ikincikullanici"},
	}
	return writeWorkbook(w, "Influencers", header, rows, 16)
}

func statusLabel(s schema.Status) string {
	if l, ok := statusLabels[s]; ok {
		return l
	}
	return string(s)
}

func writeWorkbook(w io.Writer, sheet string, header []any, rows [][]any, width float64) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(len(header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheet, "A1", last, bold); err != nil {
		return fmt.Errorf("failed to style header: %w", err)
	}
	lastCol, _, err := excelize.SplitCellName(last)
	if err != nil {
		return err
	}
	if err := f.SetColWidth(sheet, "A", lastCol, width); err != nil {
		return fmt.Errorf("failed to size columns: %w", err)
	}

	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+1, err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
