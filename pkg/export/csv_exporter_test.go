package export

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func weeklyTable() Table {
	return Table{
		Title:   "Timetable class-1 v1",
		Headers: []string{"Period", "Monday", "Tuesday"},
		Rows: [][]string{
			{"1 (07:30-08:15)", "Math (Teacher One)", "Science (Teacher Two)"},
			{"2 (08:15-09:00)", "", "Math (Teacher One)"},
		},
	}
}

func TestCSVExporterRender(t *testing.T) {
	payload, err := NewCSVExporter().Render(weeklyTable())
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Period,Monday,Tuesday", lines[0])
	assert.Contains(t, lines[1], "Math (Teacher One)")
}

func TestCSVExporterRenderPadsShortRows(t *testing.T) {
	table := weeklyTable()
	table.Rows = append(table.Rows, []string{"3"})

	payload, err := NewCSVExporter().Render(table)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(payload)), "\n")
	assert.Equal(t, "3,,", lines[len(lines)-1])
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Table{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	payload, err := NewPDFExporter().Render(weeklyTable())
	require.NoError(t, err)
	// a rendered document starts with the PDF magic bytes
	assert.True(t, strings.HasPrefix(string(payload), "%PDF"))
}

func TestPDFExporterRequiresHeaders(t *testing.T) {
	_, err := NewPDFExporter().Render(Table{})
	assert.Error(t, err)
}
