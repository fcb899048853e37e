package stats

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/backendstudioapp/dashboardtypeform/internal/models"
)

// BuildStatsXLSX renders a stats snapshot as a workbook with summary,
// daily series and country sheets.
func BuildStatsXLSX(st models.DashboardStats) ([]byte, error) {
	f := excelize.NewFile()
	summarySheet := "resumen"
	dailySheet := "diario"
	countrySheet := "paises"
	f.SetSheetName("Sheet1", summarySheet)
	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, err
	}
	if _, err := f.NewSheet(countrySheet); err != nil {
		return nil, err
	}

	_ = f.SetCellValue(summarySheet, "A1", "Dashboard de Leads")
	_ = f.SetCellValue(summarySheet, "A3", "Total leads")
	_ = f.SetCellValue(summarySheet, "B3", st.TotalLeads)
	_ = f.SetCellValue(summarySheet, "A4", "Leads hoy")
	_ = f.SetCellValue(summarySheet, "B4", st.LeadsToday)
	_ = f.SetCellValue(summarySheet, "A5", "Calificados")
	_ = f.SetCellValue(summarySheet, "B5", st.Qualified)
	_ = f.SetCellValue(summarySheet, "A6", "No calificados")
	_ = f.SetCellValue(summarySheet, "B6", st.NotQualified)
	_ = f.SetCellValue(summarySheet, "A7", "Contactados")
	_ = f.SetCellValue(summarySheet, "B7", st.Contacted)
	_ = f.SetCellValue(summarySheet, "A8", "Tasa de contacto (%)")
	_ = f.SetCellValue(summarySheet, "B8", st.ContactRate)
	_ = f.SetCellValue(summarySheet, "A9", "Cash collected")
	_ = f.SetCellValue(summarySheet, "B9", st.CashCollected)

	row := 11
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), "Estado")
	_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), "Leads")
	for _, sc := range st.ByStatus {
		row++
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("A%d", row), sc.Name)
		_ = f.SetCellValue(summarySheet, fmt.Sprintf("B%d", row), sc.Value)
	}

	_ = f.SetCellValue(dailySheet, "A1", "Fecha")
	_ = f.SetCellValue(dailySheet, "B1", "Calificados")
	_ = f.SetCellValue(dailySheet, "C1", "No calificados")
	for i, p := range st.DailySeries {
		r := i + 2
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("A%d", r), p.Date)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("B%d", r), p.Qualified)
		_ = f.SetCellValue(dailySheet, fmt.Sprintf("C%d", r), p.NotQualified)
	}

	_ = f.SetCellValue(countrySheet, "A1", "País")
	_ = f.SetCellValue(countrySheet, "B1", "Total")
	_ = f.SetCellValue(countrySheet, "C1", "Calificados")
	_ = f.SetCellValue(countrySheet, "D1", "No calificados")
	_ = f.SetCellValue(countrySheet, "E1", "Tasa de éxito (%)")
	for i, c := range st.ByCountry {
		r := i + 2
		_ = f.SetCellValue(countrySheet, fmt.Sprintf("A%d", r), c.Country)
		_ = f.SetCellValue(countrySheet, fmt.Sprintf("B%d", r), c.Total)
		_ = f.SetCellValue(countrySheet, fmt.Sprintf("C%d", r), c.Qualified)
		_ = f.SetCellValue(countrySheet, fmt.Sprintf("D%d", r), c.NotQualified)
		_ = f.SetCellValue(countrySheet, fmt.Sprintf("E%d", r), c.SuccessRate)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
