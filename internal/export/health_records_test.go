package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGenerateHealthRecordsExport(t *testing.T) {
	bmi := 32.0
	temp := 38.6
	patient := &domain.User{
		Name:          "Ada Obi",
		Email:         "ada@example.com",
		BMI:           &bmi,
		SmokingHabits: "Current smoker",
	}
	base := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	readings := []*domain.Reading{
		{BloodPressure: "120/80", HeartRate: 72, TakenAt: base},
		{BloodPressure: "150/95", HeartRate: 45, Temperature: &temp, TakenAt: base.Add(time.Hour)},
	}

	data, err := GenerateHealthRecordsExport(patient, readings)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{recordsSheet, profileSheet}, f.GetSheetList())

	rows, err := f.GetRows(recordsSheet)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, HealthRecordsHeader, rows[0])
	assert.Equal(t, []string{"2026-03-01T08:00:00Z", "120/80", "Normal", "72", "Normal", "", "N/A"}, rows[1])
	assert.Equal(t, []string{"2026-03-01T09:00:00Z", "150/95", "High", "45", "Low", "38.6", "High"}, rows[2])

	profile, err := f.GetRows(profileSheet)
	require.NoError(t, err)
	values := map[string]string{}
	for _, r := range profile {
		if len(r) >= 2 {
			values[r[0]] = r[1]
		}
	}
	assert.Equal(t, "Ada Obi", values["Name"])
	assert.Equal(t, "Moderate", values["Overall Risk"])
	assert.Equal(t, "6", values["Risk Score"])
	assert.Contains(t, values, "Smoking - High Risk")
	assert.Contains(t, values, "BMI - High Risk")
}

func TestGenerateHealthRecordsExport_Empty(t *testing.T) {
	data, err := GenerateHealthRecordsExport(&domain.User{Name: "Nobody"}, nil)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(recordsSheet)
	require.NoError(t, err)
	assert.Len(t, rows, 1)
}
