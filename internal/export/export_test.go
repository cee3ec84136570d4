package export

import (
	"path/filepath"
	"testing"

	"tirecarstore/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestToExcel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "bookings.xlsx")
	bookings := []models.Booking{
		{ID: "B002", Date: "2024-01-01", Time: "08:00", ServiceType: models.ServiceOilChange, Description: "d1", Status: models.StatusUpcoming},
		{ID: "B001", Date: "2024-01-02", Time: "09:00", ServiceType: models.ServiceTireChange, Description: "d2", Status: models.StatusCompleted, PerformedAction: "Replaced 4 tires"},
	}

	require.NoError(t, ToExcel(bookings, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{sheetName}, f.GetSheetList())

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"B002", "2024-01-01", "08:00", "Oil change", "d1", "upcoming"}, rows[1][:6])
	assert.Equal(t, "Replaced 4 tires", rows[2][6])
}

func TestToExcelEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	require.NoError(t, ToExcel(nil, path))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(sheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
