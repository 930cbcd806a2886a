package pdf

import (
	"bytes"
	"fmt"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/vcscsvcscs/nutrifast/pkg/model"
	"go.uber.org/zap"
)

// PDFGenerator renders weekly nutrition and fasting reports
type PDFGenerator struct {
	logger *zap.Logger
}

// NewPDFGenerator creates a new PDFGenerator
func NewPDFGenerator(logger *zap.Logger) *PDFGenerator {
	return &PDFGenerator{
		logger: logger,
	}
}

// DayRow is one line of the nutrition table
type DayRow struct {
	Date       string
	Nutrition  model.Nutrition
	EntryCount int
}

// FastingSummary holds the fasting figures shown in a report
type FastingSummary struct {
	TotalSessions   int
	TotalHours      float64
	AvgHours        float64
	LongestHours    float64
	CurrentStreak   int
	CompletedInWeek []model.FastingSession
}

// ReportData contains all data needed for report generation
type ReportData struct {
	StartDate     string
	EndDate       string
	Days          []DayRow
	Totals        model.Nutrition
	Averages      model.Nutrition
	CalorieTarget *float64
	Fasting       FastingSummary
	GeneratedAt   time.Time
}

// Generate creates a PDF report from the provided data
func (g *PDFGenerator) Generate(data *ReportData) ([]byte, error) {
	g.logger.Info("generating weekly report",
		zap.String("start_date", data.StartDate),
		zap.String("end_date", data.EndDate),
	)

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	pdf.AddPage()

	generated := data.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	g.addTitle(pdf, data.StartDate, data.EndDate, generated)
	g.addNutritionTable(pdf, data)
	g.addTargetComparison(pdf, data)
	g.addFastingSummary(pdf, data.Fasting)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		g.logger.Error("failed to generate PDF", zap.Error(err))
		return nil, fmt.Errorf("failed to generate PDF: %w", err)
	}

	g.logger.Info("weekly report generated",
		zap.Int("size_bytes", buf.Len()),
	)
	return buf.Bytes(), nil
}

func (g *PDFGenerator) addTitle(pdf *gofpdf.Fpdf, start, end string, generated time.Time) {
	pdf.SetFont("Arial", "B", 20)
	pdf.CellFormat(0, 10, "Weekly Nutrition Report", "", 1, "C", false, 0, "")
	pdf.Ln(5)

	pdf.SetFont("Arial", "", 12)
	pdf.CellFormat(0, 8, fmt.Sprintf("Period: %s to %s", start, end), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 8, fmt.Sprintf("Generated: %s", generated.Format("2006-01-02 15:04")), "", 1, "L", false, 0, "")
	pdf.Ln(8)
}

func (g *PDFGenerator) addSectionHeader(pdf *gofpdf.Fpdf, title string) {
	pdf.SetFont("Arial", "B", 14)
	pdf.SetFillColor(230, 230, 230)
	pdf.CellFormat(0, 10, title, "", 1, "L", true, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Arial", "", 10)
}

var tableColumns = []struct {
	title string
	width float64
}{
	{"Date", 28}, {"Entries", 18}, {"kcal", 22}, {"Protein", 22},
	{"Fat", 20}, {"Carbs", 20}, {"Fiber", 20}, {"Sugars", 20},
}

func (g *PDFGenerator) addNutritionTable(pdf *gofpdf.Fpdf, data *ReportData) {
	g.addSectionHeader(pdf, "Daily Nutrition")

	pdf.SetFont("Arial", "B", 9)
	for _, col := range tableColumns {
		pdf.CellFormat(col.width, 7, col.title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, day := range data.Days {
		g.addRow(pdf, day.Date, fmt.Sprintf("%d", day.EntryCount), day.Nutrition)
	}

	pdf.SetFont("Arial", "B", 9)
	g.addRow(pdf, "Total", "", data.Totals)
	g.addRow(pdf, "Average", "", data.Averages)
	pdf.Ln(6)
}

func (g *PDFGenerator) addRow(pdf *gofpdf.Fpdf, label, entries string, n model.Nutrition) {
	cells := []string{
		label,
		entries,
		fmt.Sprintf("%.0f", n.Calories),
		fmt.Sprintf("%.1f g", n.Protein),
		fmt.Sprintf("%.1f g", n.Fat),
		fmt.Sprintf("%.1f g", n.Carbs),
		fmt.Sprintf("%.1f g", n.Fiber),
		fmt.Sprintf("%.1f g", n.Sugars),
	}
	for i, col := range tableColumns {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(col.width, 6, cells[i], "1", 0, align, false, 0, "")
	}
	pdf.Ln(-1)
}

func (g *PDFGenerator) addTargetComparison(pdf *gofpdf.Fpdf, data *ReportData) {
	if data.CalorieTarget == nil {
		return
	}
	g.addSectionHeader(pdf, "Calorie Target")

	target := *data.CalorieTarget
	pdf.CellFormat(0, 6, fmt.Sprintf("Daily target: %.0f kcal", target), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Average intake: %.0f kcal (%+.0f kcal)", data.Averages.Calories, data.Averages.Calories-target), "", 1, "L", false, 0, "")

	within := 0
	for _, day := range data.Days {
		if day.EntryCount > 0 && day.Nutrition.Calories <= target {
			within++
		}
	}
	pdf.CellFormat(0, 6, fmt.Sprintf("Logged days at or under target: %d", within), "", 1, "L", false, 0, "")
	pdf.Ln(6)
}

func (g *PDFGenerator) addFastingSummary(pdf *gofpdf.Fpdf, f FastingSummary) {
	g.addSectionHeader(pdf, "Fasting")

	if f.TotalSessions == 0 {
		pdf.CellFormat(0, 8, "No completed fasting sessions recorded.", "", 1, "L", false, 0, "")
		pdf.Ln(5)
		return
	}

	pdf.CellFormat(0, 6, fmt.Sprintf("Completed sessions: %d (%.1f h total)", f.TotalSessions, f.TotalHours), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Average duration: %.1f h, longest: %.1f h", f.AvgHours, f.LongestHours), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, fmt.Sprintf("Current streak: %d days", f.CurrentStreak), "", 1, "L", false, 0, "")
	pdf.Ln(3)

	if len(f.CompletedInWeek) == 0 {
		return
	}

	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 6, "This week:", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 10)
	for _, s := range f.CompletedInWeek {
		hours := 0.0
		if s.DurationHours != nil {
			hours = *s.DurationHours
		}
		pdf.CellFormat(0, 5, fmt.Sprintf("  %s  %s  %.1f h",
			s.StartedAt.Format("2006-01-02 15:04"), s.FastingType, hours), "", 1, "L", false, 0, "")
	}
	pdf.Ln(5)
}
