package export

import (
	"fmt"
	"strconv"
	"time"

	"github.com/Emmanjr/health-monitoring/internal/advisor"
	"github.com/Emmanjr/health-monitoring/internal/domain"

	"github.com/xuri/excelize/v2"
)

const (
	recordsSheet = "Health Records"
	profileSheet = "Profile"
)

// HealthRecordsHeader is the column order of the records sheet.
var HealthRecordsHeader = []string{
	"Taken At",
	"Blood Pressure",
	"BP Status",
	"Heart Rate",
	"HR Status",
	"Temperature",
	"Temperature Status",
}

var recordsColumnWidths = []float64{22, 16, 12, 12, 12, 14, 20}

// GenerateHealthRecordsExport builds a workbook with the patient's readings
// (oldest first, as given) and a profile sheet with the lifestyle risk tier.
func GenerateHealthRecordsExport(patient *domain.User, readings []*domain.Reading) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(recordsSheet)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if _, err := f.NewSheet(profileSheet); err != nil {
		return nil, fmt.Errorf("failed to create sheet: %w", err)
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("failed to delete default sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{
			Type:    "pattern",
			Color:   []string{"#E6F3FF"},
			Pattern: 1,
		},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	if err := writeRow(f, recordsSheet, 1, toAny(HealthRecordsHeader)); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(recordsSheet, "A1", lastCell(len(HealthRecordsHeader), 1), headerStyle); err != nil {
		return nil, fmt.Errorf("failed to set header style: %w", err)
	}
	for i, w := range recordsColumnWidths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, fmt.Errorf("failed to convert column number: %w", err)
		}
		if err := f.SetColWidth(recordsSheet, col, col, w); err != nil {
			return nil, fmt.Errorf("failed to set column width: %w", err)
		}
	}

	for i, rd := range readings {
		temp, tempStatus := "", advisor.ClassifyTemperature(rd.Temperature)
		if rd.Temperature != nil {
			temp = strconv.FormatFloat(*rd.Temperature, 'f', 1, 64)
		}
		row := []any{
			rd.TakenAt.UTC().Format(time.RFC3339),
			rd.BloodPressure,
			string(advisor.ClassifyBloodPressure(rd.BloodPressure)),
			rd.HeartRate,
			string(advisor.ClassifyHeartRate(float64(rd.HeartRate))),
			temp,
			string(tempStatus),
		}
		if err := writeRow(f, recordsSheet, i+2, row); err != nil {
			return nil, err
		}
	}

	if err := writeProfile(f, patient, headerStyle); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("failed to write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func writeProfile(f *excelize.File, patient *domain.User, headerStyle int) error {
	profile := patient.Lifestyle()
	tier, score := advisor.ComputeOverallRiskTier(profile)

	bmi := ""
	if profile.BMI != nil {
		bmi = strconv.FormatFloat(*profile.BMI, 'f', 1, 64)
	}
	age := ""
	if patient.Age != nil {
		age = strconv.Itoa(*patient.Age)
	}

	rows := [][]any{
		{"Field", "Value"},
		{"Name", patient.Name},
		{"Email", patient.Email},
		{"Age", age},
		{"Gender", patient.Gender},
		{"BMI", bmi},
		{"Smoking", profile.SmokingHabits},
		{"Alcohol", profile.AlcoholUse},
		{"Stress", profile.StressLevels},
		{"Diet", profile.Diet},
		{"Physical Activity", profile.PhysicalActivity},
		{"Overall Risk", string(tier)},
		{"Risk Score", score},
	}
	for _, rf := range advisor.RiskFactors(profile) {
		rows = append(rows, []any{rf.Title, rf.Description})
	}

	for i, row := range rows {
		if err := writeRow(f, profileSheet, i+1, row); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(profileSheet, "A1", "B1", headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}
	if err := f.SetColWidth(profileSheet, "A", "A", 28); err != nil {
		return fmt.Errorf("failed to set column width: %w", err)
	}
	return f.SetColWidth(profileSheet, "B", "B", 60)
}

func writeRow(f *excelize.File, sheet string, row int, values []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("failed to convert coordinates: %w", err)
	}
	if err := f.SetSheetRow(sheet, cell, &values); err != nil {
		return fmt.Errorf("failed to write row %d: %w", row, err)
	}
	return nil
}

func lastCell(cols, row int) string {
	cell, _ := excelize.CoordinatesToCellName(cols, row)
	return cell
}

func toAny(ss []string) []any {
	out := make([]any, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
