package businessflow

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/go-pdf/fpdf"
	"github.com/xuri/excelize/v2"
)

const (
	RespondentsCSVFilename  = "dados_respondentes.csv"
	RespondentsPDFFilename  = "dados_respondentes.pdf"
	RespondentsXLSXFilename = "dados_respondentes.xlsx"

	respondentsSheet = "Respondentes"
	notAvailable     = "N/A"
	utf8BOM          = "\uFEFF"
)

var respondentHeader = []string{"Nome", "Idade", "Telefone"}

// Respondent is one exported row
type Respondent struct {
	Name  *string
	Age   *int
	Phone *string
}

// RespondentsFromResponses extracts the respondent fields of each response in order
func RespondentsFromResponses(responses []dto.SurveyResponse) []Respondent {
	out := make([]Respondent, 0, len(responses))
	for _, r := range responses {
		out = append(out, Respondent{Name: r.UserName, Age: r.UserAge, Phone: r.UserPhone})
	}
	return out
}

// RespondentsCSV renders respondents with a UTF-8 BOM. Name and phone are always
// quoted with inner quotes doubled; age is bare or N/A. Lines are joined by \n.
func RespondentsCSV(rows []Respondent) []byte {
	lines := make([]string, 0, len(rows)+1)

	header := make([]string, 0, len(respondentHeader))
	for _, h := range respondentHeader {
		header = append(header, quoteCSV(h))
	}
	lines = append(lines, strings.Join(header, ","))

	for _, r := range rows {
		lines = append(lines, strings.Join([]string{
			quoteCSV(deref(r.Name)),
			ageOrNA(r.Age),
			quoteCSV(deref(r.Phone)),
		}, ","))
	}

	return []byte(utf8BOM + strings.Join(lines, "\n"))
}

func quoteCSV(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// RespondentsPDF renders a titled grid table of respondents
func RespondentsPDF(companyName string, generatedAt time.Time, rows []Respondent) ([]byte, error) {
	if strings.TrimSpace(companyName) == "" {
		companyName = "Empresa"
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetMargins(14, 14, 14)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 20)
	pdf.SetTextColor(44, 62, 80)
	pdf.CellFormat(0, 10, tr(fmt.Sprintf("Relatório - %s", companyName)), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(128, 128, 128)
	stamp := fmt.Sprintf("Gerado em: %s às %s", generatedAt.Format("02/01/2006"), generatedAt.Format("15:04"))
	pdf.CellFormat(0, 8, tr(stamp), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	widths := []float64{90, 30, 62}
	pdf.SetFont("Helvetica", "B", 11)
	pdf.SetFillColor(59, 130, 246)
	pdf.SetTextColor(255, 255, 255)
	for i, h := range respondentHeader {
		pdf.CellFormat(widths[i], 8, tr(h), "1", 0, "L", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetTextColor(0, 0, 0)
	for _, r := range rows {
		cells := []string{orNA(r.Name), ageOrNA(r.Age), orNA(r.Phone)}
		for i, c := range cells {
			pdf.CellFormat(widths[i], 7, tr(c), "1", 0, "L", false, 0, "")
		}
		pdf.Ln(-1)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render pdf: %w", err)
	}
	return buf.Bytes(), nil
}

// RespondentsXLSX renders respondents into a single sheet workbook
func RespondentsXLSX(rows []Respondent) ([]byte, error) {
	xl := excelize.NewFile()
	defer func() { _ = xl.Close() }()

	if err := xl.SetSheetName(xl.GetSheetName(0), respondentsSheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}
	header := respondentHeader
	if err := xl.SetSheetRow(respondentsSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("failed to write header: %w", err)
	}

	for i, r := range rows {
		record := []any{orNA(r.Name), notAvailable, orNA(r.Phone)}
		if r.Age != nil && *r.Age != 0 {
			record[1] = *r.Age
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := xl.SetSheetRow(respondentsSheet, cell, &record); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	buf, err := xl.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func orNA(s *string) string {
	if s == nil || *s == "" {
		return notAvailable
	}
	return *s
}

// ageOrNA renders a missing or zero age as N/A
func ageOrNA(age *int) string {
	if age == nil || *age == 0 {
		return notAvailable
	}
	return strconv.Itoa(*age)
}
