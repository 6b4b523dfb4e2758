package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mrlokans/fable-exporter/internal/entities"
)

// numericColumns right-aligns the given zero-based columns.
func renderTable(headers []string, rows [][]string, numericColumns ...int) string {
	columns := len(headers)
	if columns == 0 {
		return ""
	}

	tw := table.NewWriter()
	tw.SetStyle(table.StyleRounded)

	header := make(table.Row, columns)
	for i, h := range headers {
		header[i] = h
	}
	tw.AppendHeader(header)

	for _, row := range rows {
		r := make(table.Row, columns)
		for i := 0; i < columns; i++ {
			if i < len(row) {
				r[i] = row[i]
			} else {
				r[i] = ""
			}
		}
		tw.AppendRow(r)
	}

	right := make(map[int]bool, len(numericColumns))
	for _, c := range numericColumns {
		right[c] = true
	}
	configs := make([]table.ColumnConfig, 0, columns)
	for i := 0; i < columns; i++ {
		align := text.AlignLeft
		if right[i] {
			align = text.AlignRight
		}
		configs = append(configs, table.ColumnConfig{
			Number:      i + 1,
			Align:       align,
			AlignHeader: text.AlignLeft,
		})
	}
	tw.SetColumnConfigs(configs)

	return tw.Render() + "\n"
}

// renderSummary prints one row per list followed by totals and the review outcome.
func renderSummary(summary entities.RunSummary) string {
	rows := make([][]string, 0, len(summary.Lists))
	for _, list := range summary.Lists {
		rows = append(rows, []string{
			list.ListName,
			string(list.Status),
			strconv.Itoa(list.Fetched),
			strconv.Itoa(list.Skipped),
			strconv.Itoa(list.Failed),
			strconv.Itoa(list.Pages),
			truncate(list.Error, 60),
		})
	}

	var builder strings.Builder
	builder.WriteString(renderTable(
		[]string{"List", "Status", "Fetched", "Skipped", "Failed", "Pages", "Error"},
		rows, 2, 3, 4, 5,
	))

	fetched, skipped, failed := summary.Totals()
	fmt.Fprintf(&builder, "Total: %d fetched, %d skipped, %d failed across %d lists\n",
		fetched, skipped, failed, len(summary.Lists))
	fmt.Fprintf(&builder, "Reviews: %d merged", summary.Reviews)
	if summary.ReviewsSkipped > 0 {
		fmt.Fprintf(&builder, ", %d skipped", summary.ReviewsSkipped)
	}
	builder.WriteString("\n")
	if summary.ReviewsError != "" {
		fmt.Fprintf(&builder, "Reviews incomplete: %s\n", summary.ReviewsError)
	}
	if !summary.FinishedAt.IsZero() && !summary.StartedAt.IsZero() {
		fmt.Fprintf(&builder, "Finished in %v\n", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	}
	return builder.String()
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
