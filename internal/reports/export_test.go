package reports

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/SAP-F-2025/exam-service/internal/models"
)

func TestWriteCSV(t *testing.T) {
	rows := PerformanceRows(scenario())
	rows = append(rows, PerformanceRows([]models.SubmissionRecord{rec(9, "zoe", 4, false, nil)})...)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, rows))

	lines, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	require.Len(t, lines, 1+6)
	assert.Equal(t, []string{"Student", "Question ID", "Score", "Graded", "Submitted At"}, lines[0])
	assert.Equal(t, []string{"alice", "1", "10", "true", "2024-03-01T09:01:00Z"}, lines[1])
	assert.Equal(t, []string{"zoe", "4", "0", "false", "2024-03-01T09:09:00Z"}, lines[6])
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, nil))
	assert.Equal(t, "Student,Question ID,Score,Graded,Submitted At\n", buf.String())
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, PerformanceRows(scenario())))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(performanceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 1+5)
	assert.Equal(t, PerformanceHeader, rows[0])
	assert.Equal(t, "bob", rows[4][0])
	assert.Equal(t, "50", rows[4][2])
}
