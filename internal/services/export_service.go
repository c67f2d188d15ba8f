package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/jung-kurt/gofpdf"
	"github.com/xuri/excelize/v2"

	"github.com/sjperalta/lendera-api/internal/amortization"
	"github.com/sjperalta/lendera-api/internal/reconciliation"
)

const dateLayout = "2006-01-02"

var scheduleHeader = []string{"Sequence", "Due Date", "Installment", "Interest", "Principal", "Balance"}

type ExportService struct{}

func NewExportService() *ExportService {
	return &ExportService{}
}

func scheduleFilename(loanID uint, ext string) string {
	if loanID == 0 {
		return "schedule_preview." + ext
	}
	return fmt.Sprintf("loan_%d_schedule.%s", loanID, ext)
}

func scheduleRow(inst amortization.Installment) []string {
	return []string{
		strconv.Itoa(inst.Sequence),
		inst.DueDate.Format(dateLayout),
		inst.Amount.StringFixed(2),
		inst.Interest.StringFixed(2),
		inst.Principal.StringFixed(2),
		inst.BalanceAfter.StringFixed(2),
	}
}

// ScheduleCSV renders a schedule as CSV. loanID 0 marks a preview.
func (s *ExportService) ScheduleCSV(loanID uint, schedule *amortization.Schedule) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	writer := csv.NewWriter(buf)

	if err := writer.Write(scheduleHeader); err != nil {
		return nil, "", err
	}
	for _, inst := range schedule.Installments {
		if err := writer.Write(scheduleRow(inst)); err != nil {
			return nil, "", err
		}
	}
	_ = writer.Write([]string{"Total", "", schedule.TotalPayable().StringFixed(2), schedule.TotalInterest().StringFixed(2), schedule.Principal().StringFixed(2), ""})

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), scheduleFilename(loanID, "csv"), nil
}

// ScheduleXLSX renders a schedule as a spreadsheet with a terms summary
func (s *ExportService) ScheduleXLSX(loanID uint, schedule *amortization.Schedule) ([]byte, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Schedule"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, "", err
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	moneyStyle, _ := f.NewStyle(&excelize.Style{NumFmt: 4})

	terms := schedule.Terms
	_ = f.SetCellValue(sheet, "A1", "Principal")
	_ = f.SetCellValue(sheet, "B1", terms.Principal.InexactFloat64())
	_ = f.SetCellValue(sheet, "A2", "Annual Rate")
	_ = f.SetCellValue(sheet, "B2", terms.AnnualRate.String())
	_ = f.SetCellValue(sheet, "A3", "Tenure (months)")
	_ = f.SetCellValue(sheet, "B3", terms.TenureMonths)
	_ = f.SetCellValue(sheet, "A4", "Start Date")
	_ = f.SetCellValue(sheet, "B4", terms.StartDate.Format(dateLayout))
	_ = f.SetCellStyle(sheet, "A1", "A4", headerStyle)
	_ = f.SetCellStyle(sheet, "B1", "B1", moneyStyle)

	const firstRow = 6
	for col, title := range scheduleHeader {
		cell, _ := excelize.CoordinatesToCellName(col+1, firstRow)
		_ = f.SetCellValue(sheet, cell, title)
	}
	start, _ := excelize.CoordinatesToCellName(1, firstRow)
	end, _ := excelize.CoordinatesToCellName(len(scheduleHeader), firstRow)
	_ = f.SetCellStyle(sheet, start, end, headerStyle)

	for i, inst := range schedule.Installments {
		row := firstRow + 1 + i
		values := []any{
			inst.Sequence,
			inst.DueDate.Format(dateLayout),
			inst.Amount.InexactFloat64(),
			inst.Interest.InexactFloat64(),
			inst.Principal.InexactFloat64(),
			inst.BalanceAfter.InexactFloat64(),
		}
		cell, _ := excelize.CoordinatesToCellName(1, row)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return nil, "", err
		}
	}
	if len(schedule.Installments) > 0 {
		from, _ := excelize.CoordinatesToCellName(3, firstRow+1)
		to, _ := excelize.CoordinatesToCellName(6, firstRow+len(schedule.Installments))
		_ = f.SetCellStyle(sheet, from, to, moneyStyle)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, "", err
	}
	return buf.Bytes(), scheduleFilename(loanID, "xlsx"), nil
}

// StatementPDF renders a loan statement
func (s *ExportService) StatementPDF(statement *Statement) ([]byte, string, error) {
	loan := statement.Loan
	result := statement.Reconciliation

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, fmt.Sprintf("Loan Statement #%d", loan.ID))
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 10)
	summary := [][2]string{
		{"As of:", statement.AsOf.Format(dateLayout)},
		{"Status:", loan.Status},
		{"Principal:", loan.Principal.StringFixed(2) + " " + loan.Currency},
		{"Annual rate:", loan.AnnualRate.String()},
		{"Tenure:", fmt.Sprintf("%d months", loan.TenureMonths)},
		{"Installment:", statement.InstallmentAmount.StringFixed(2)},
		{"Total paid:", result.TotalPaid.StringFixed(2)},
		{"Outstanding principal:", result.OutstandingBalance.StringFixed(2)},
		{"In arrears:", statement.AmountInArrears.StringFixed(2)},
		{"Maturity:", statement.MaturityDate.Format(dateLayout)},
	}
	for _, line := range summary {
		pdf.Cell(50, 6, line[0])
		pdf.Cell(60, 6, line[1])
		pdf.Ln(6)
	}
	pdf.Ln(6)

	widths := []float64{12, 26, 28, 28, 28, 28, 24}
	header := []string{"#", "Due", "Installment", "Applied", "Remaining", "Balance", "Status"}
	pdf.SetFont("Arial", "B", 9)
	for i, title := range header {
		pdf.CellFormat(widths[i], 7, title, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, state := range result.Installments {
		cells := []string{
			strconv.Itoa(state.Sequence),
			state.DueDate.Format(dateLayout),
			state.Amount.StringFixed(2),
			state.Applied.StringFixed(2),
			state.Remaining.StringFixed(2),
			state.BalanceAfter.StringFixed(2),
			statusLabel(state.Status),
		}
		for i, text := range cells {
			align := "R"
			if i == 1 || i == 6 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, text, "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	buf := new(bytes.Buffer)
	if err := pdf.Output(buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("loan_%d_statement_%s.pdf", loan.ID, statement.AsOf.Format(dateLayout)), nil
}

func statusLabel(status reconciliation.InstallmentStatus) string {
	switch status {
	case reconciliation.StatusSatisfied:
		return "Paid"
	case reconciliation.StatusPartial:
		return "Partial"
	default:
		return "Unpaid"
	}
}
