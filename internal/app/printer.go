package app

import (
	"io"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
)

// colorPrinter colors table cells by meaning.
type colorPrinter struct {
	Success func(format string, a ...any) string
	Error   func(format string, a ...any) string
	Folder  func(format string, a ...any) string
}

func newColorPrinter() *colorPrinter {
	return &colorPrinter{
		Success: color.New(color.FgGreen).SprintfFunc(),
		Error:   color.New(color.FgRed).SprintfFunc(),
		Folder:  color.New(color.FgBlue, color.Bold).SprintfFunc(),
	}
}

func newTable(out io.Writer, headers []string) *tablewriter.Table {
	table := tablewriter.NewTable(out)
	table.Header(headers)

	return table
}
