package main

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/mattn/go-isatty"

	"spritegen/internal/batch"
	"spritegen/internal/services"
)

func renderReport(report *batch.Report, colorize bool) string {
	columns := []column{
		{header: "#", align: text.AlignRight},
		{header: "Group"},
		{header: "Kind"},
		{header: "Status"},
		{header: "Icons", align: text.AlignRight},
		{header: "Cached"},
		{header: "Error", maxWidth: 60},
	}

	rows := make([][]string, 0, len(report.Groups))
	for _, g := range report.Groups {
		icons := "-"
		cached := "-"
		if g.Status == batch.StatusGenerated {
			icons = strconv.Itoa(g.Icons)
			cached = yesNo(g.Cached)
		}
		rows = append(rows, []string{
			strconv.Itoa(g.Index),
			g.Name,
			g.Kind,
			statusLabel(g.Status, colorize),
			icons,
			cached,
			errorMessage(g.Err),
		})
	}

	var b strings.Builder
	b.WriteString(renderTable(columns, rows))
	b.WriteString("\n")
	fmt.Fprintf(&b, "Generated %d, failed %d, skipped %d\n",
		report.Count(batch.StatusGenerated), report.Count(batch.StatusFailed), report.Count(batch.StatusSkipped))
	if len(report.Sizes) > 0 {
		sizes := make([]string, len(report.Sizes))
		for i, s := range report.Sizes {
			sizes[i] = strconv.Itoa(s)
		}
		fmt.Fprintf(&b, "Sizes: %s\n", strings.Join(sizes, " "))
	}
	for _, g := range report.Groups {
		if g.Err != nil {
			fmt.Fprintf(&b, "Hint (%s): %s\n", g.Name, services.Hint(g.Err))
		}
	}
	if report.SizesErr != nil {
		fmt.Fprintf(&b, "Sizes stylesheet failed: %v\n", report.SizesErr)
	}
	fmt.Fprintf(&b, "Run: %s", report.RunID)
	return b.String()
}

func statusLabel(status batch.Status, colorize bool) string {
	label := string(status)
	if !colorize {
		return label
	}
	switch status {
	case batch.StatusGenerated:
		return text.FgGreen.Sprint(label)
	case batch.StatusFailed:
		return text.FgRed.Sprint(label)
	default:
		return text.FgHiBlack.Sprint(label)
	}
}

func errorMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
