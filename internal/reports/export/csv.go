// Package export serialises report results for download.
package export

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/ledgerpos/ledgerpos/internal/reports"
)

// WriteSummaryCSV serialises the reconciliation summary to CSV.
func WriteSummaryCSV(w io.Writer, summary reports.Summary, window string) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return err
	}
	records := [][]string{
		{"Window", window},
		{"Gross Revenue", formatFloat(summary.Gross)},
		{"Return Impact", formatFloat(summary.ReturnImpact)},
		{"Net Revenue", formatFloat(summary.Net)},
		{"Sales", strconv.Itoa(summary.SaleCount)},
		{"Returns", strconv.Itoa(summary.ReturnCount)},
		{"Independent Invoices", formatFloat(summary.IndependentInvoiceTotal)},
		{"Growth %", formatFloat(summary.Growth)},
	}
	for _, record := range records {
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteRankedCSV emits a ranked aggregation with the given section header.
func WriteRankedCSV(w io.Writer, title string, entries []reports.RankedEntry) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{title, "Units", "Gross", "Returned", "Net", "Has Returns"}); err != nil {
		return err
	}
	for _, entry := range entries {
		if err := writer.Write([]string{
			entry.Label,
			formatFloat(entry.Units),
			formatFloat(entry.Gross),
			formatFloat(entry.Returned),
			formatFloat(entry.Net),
			strconv.FormatBool(entry.HasReturns),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

// WriteTrendCSV emits the monthly net revenue movement as CSV.
func WriteTrendCSV(w io.Writer, points []reports.MonthPoint) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Month", "Gross", "Returned", "Net", "Sales"}); err != nil {
		return err
	}
	for _, point := range points {
		if err := writer.Write([]string{
			point.Month,
			formatFloat(point.Gross),
			formatFloat(point.Returned),
			formatFloat(point.Net),
			strconv.Itoa(point.Sales),
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
