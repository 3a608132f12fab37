package output

func writeDailySummariesExcel(path string, summaries []DailySummary) error {
	rows := make([][]string, 0, len(summaries))
	for _, summary := range summaries {
		rows = append(rows, summaryRow(summary))
	}
	return writeExcelSheet(path, summaryHeaders, rows)
}
