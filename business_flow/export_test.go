package businessflow

import (
	"bytes"
	"testing"
	"time"

	"github.com/amirphl/pesquisa-campo/app/dto"
	"github.com/amirphl/pesquisa-campo/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func exportRows() []Respondent {
	return RespondentsFromResponses([]dto.SurveyResponse{
		{UserName: utils.ToPtr(`Ana "Aninha" Silva`), UserAge: utils.ToPtr(34), UserPhone: utils.ToPtr("(11) 91234-5678")},
		{},
	})
}

func TestRespondentsCSV(t *testing.T) {
	out := RespondentsCSV(exportRows())

	require.True(t, bytes.HasPrefix(out, []byte("\xEF\xBB\xBF")), "csv starts with a UTF-8 BOM")
	want := "\uFEFF" +
		`"Nome","Idade","Telefone"` + "\n" +
		`"Ana ""Aninha"" Silva",34,"(11) 91234-5678"` + "\n" +
		`"",N/A,""`
	assert.Equal(t, want, string(out))
}

func TestRespondentsCSV_ZeroAge(t *testing.T) {
	rows := RespondentsFromResponses([]dto.SurveyResponse{{UserName: utils.ToPtr("Bia"), UserAge: utils.ToPtr(0)}})
	want := "\uFEFF" +
		`"Nome","Idade","Telefone"` + "\n" +
		`"Bia",N/A,""`
	assert.Equal(t, want, string(RespondentsCSV(rows)))
}

func TestRespondentsCSV_Empty(t *testing.T) {
	assert.Equal(t, "\uFEFF"+`"Nome","Idade","Telefone"`, string(RespondentsCSV(nil)))
}

func TestRespondentsXLSX(t *testing.T) {
	out, err := RespondentsXLSX(exportRows())
	require.NoError(t, err)

	xl, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer xl.Close()

	rows, err := xl.GetRows(respondentsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"Nome", "Idade", "Telefone"}, rows[0])
	assert.Equal(t, []string{`Ana "Aninha" Silva`, "34", "(11) 91234-5678"}, rows[1])
	assert.Equal(t, []string{"N/A", "N/A", "N/A"}, rows[2])
}

func TestRespondentsPDF(t *testing.T) {
	out, err := RespondentsPDF("Mercado São João", time.Date(2024, 5, 1, 14, 30, 0, 0, time.UTC), exportRows())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF-")))

	blank, err := RespondentsPDF("  ", time.Now(), nil)
	require.NoError(t, err)
	assert.NotEmpty(t, blank)
}
