// Package report renders pipeline results for the terminal.
package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fatih/color"
	"github.com/olekukonko/tablewriter"
	"github.com/olekukonko/tablewriter/tw"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/lueurxax/task-stats/internal/core/domain"
)

const (
	headerWeek         = "Week"
	headerSubscription = "Subscription"
	headerOwner        = "Owner"
	headerStatus       = "Status"
	headerPatches      = "Patches"
	headerLastUpdated  = "Last updated"
	noValue            = "-"
	timeLayout         = "2006-01-02 15:04"
)

// WriteWeekly renders the five week buckets of r as a bordered table.
func WriteWeekly(w io.Writer, r domain.WeeklyReport) error {
	rows := make([][]string, 0, len(r.Buckets))
	for _, b := range r.Buckets {
		rows = append(rows, []string{strconv.Itoa(b.Week), strconv.Itoa(b.Count)})
	}

	return render(w, []string{headerWeek, headerSubscription}, rows, tw.AlignCenter)
}

// WriteChangeCount renders the Gerrit change count as a bordered table.
func WriteChangeCount(w io.Writer, c domain.ChangeCount) error {
	latest := noValue
	if !c.Latest.IsZero() {
		latest = c.Latest.UTC().Format(timeLayout)
	}

	status := cases.Lower(language.English).String(c.Status)
	rows := [][]string{{c.Owner, status, strconv.Itoa(c.Count), latest}}

	return render(w, []string{headerOwner, headerStatus, headerPatches, headerLastUpdated}, rows, tw.AlignLeft)
}

// PrintError writes a fatal error in a form meant for people.
func PrintError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	if !useColor {
		_, _ = fmt.Fprintf(w, "error: %v\n", err)

		return
	}

	c := color.New(color.FgRed, color.Bold)
	c.EnableColor()
	_, _ = c.Fprint(w, "error:")
	_, _ = fmt.Fprintf(w, " %v\n", err)
}

func render(w io.Writer, header []string, rows [][]string, align tw.Align) error {
	table := tablewriter.NewTable(w,
		tablewriter.WithConfig(tablewriter.Config{
			Header: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoFormat: tw.Off},
				Alignment:  tw.CellAlignment{Global: tw.AlignCenter},
			},
			Row: tw.CellConfig{
				Formatting: tw.CellFormatting{AutoWrap: tw.WrapNone},
				Alignment:  tw.CellAlignment{Global: align},
			},
		}),
		tablewriter.WithRendition(tw.Rendition{
			Symbols: tw.NewSymbols(tw.StyleASCII),
		}),
	)

	table.Header(header)

	if err := table.Bulk(rows); err != nil {
		return fmt.Errorf("table rows: %w", err)
	}

	if err := table.Render(); err != nil {
		return fmt.Errorf("render table: %w", err)
	}

	return nil
}
