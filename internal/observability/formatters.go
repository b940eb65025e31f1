// Package observability provides formatted output utilities for the CLI.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/audit-sheets/internal/pipeline"
	"github.com/jonathan/audit-sheets/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for run results
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// truncateLeft keeps the last n runes of s, which for paths is the file name
func truncateLeft(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return "..." + string(r[len(r)-(n-3):])
}

// PrintRunSummary outputs per-hostname counts for a finished run.
func (p *Printer) PrintRunSummary(summary *pipeline.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Run:       %s\n", summary.RunID))
	sb.WriteString(fmt.Sprintf("Entries:   %d\n", len(summary.Outcomes)))
	sb.WriteString(fmt.Sprintf("Appended:  %d\n", summary.Succeeded()))
	sb.WriteString(fmt.Sprintf("Failed:    %d\n", summary.Failed()))

	type hostStats struct {
		rows, added int
		created     bool
	}
	stats := map[string]*hostStats{}
	for _, o := range summary.Outcomes {
		if o.Status != pipeline.StatusSucceeded {
			continue
		}
		st, ok := stats[o.Hostname]
		if !ok {
			st = &hostStats{}
			stats[o.Hostname] = st
		}
		st.rows++
		st.added += len(o.Result.Added)
		st.created = st.created || o.Result.Created
	}

	hosts := summary.SucceededHostnames()
	if len(hosts) > 0 {
		sb.WriteString("\nTables:\n")
		count := min(len(hosts), maxItemsToShow)
		for i := 0; i < count; i++ {
			st := stats[hosts[i]]
			sb.WriteString(fmt.Sprintf("  • %s: %d rows, +%d columns", hosts[i], st.rows, st.added))
			if st.created {
				sb.WriteString(" (new)")
			}
			sb.WriteString("\n")
		}
		if len(hosts) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(hosts)-maxItemsToShow))
		}
	}

	p.printBox("SYNC SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintFailures outputs every failed entry with its error kind and step.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintFailures(summary *pipeline.Summary) {
	if summary == nil || summary.Failed() == 0 {
		fmt.Fprintf(p.out, "┌%s┐\n", strings.Repeat("─", boxWidth-2))
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, "✅ ALL ENTRIES SYNCHRONIZED")
		fmt.Fprintf(p.out, "└%s┘\n", strings.Repeat("─", boxWidth-2))
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d failures:\n\n", summary.Failed()))

	first := true
	for _, o := range summary.Outcomes {
		if o.Status != pipeline.StatusFailed {
			continue
		}
		if !first {
			sb.WriteString("\n")
		}
		first = false
		host := o.Hostname
		if host == "" {
			host = "-"
		}
		sb.WriteString(fmt.Sprintf("⚠ #%d %s [%s/%s]\n", o.Index, host, o.Kind, o.Step))
		sb.WriteString(fmt.Sprintf("  %s\n", truncateLeft(o.Entry.Name(), boxWidth-6)))
		if o.Err != nil {
			sb.WriteString(fmt.Sprintf("  %s\n", o.Err))
		}
	}

	p.printBox("FAILED ENTRIES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintHeader outputs a table's header, one column per line.
func (p *Printer) PrintHeader(hostname string, header []string) {
	var sb strings.Builder
	if len(header) == 0 {
		sb.WriteString("(empty header)")
	}
	for i, name := range header {
		sb.WriteString(fmt.Sprintf("%3d  %s", i+1, name))
		if i < len(header)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox(fmt.Sprintf("HEADER %s (%d columns)", hostname, len(header)), sb.String())
}

// PrintRow outputs a flattened row, one field per line in row order.
func (p *Printer) PrintRow(title string, row *types.Row) {
	if row == nil || row.Len() == 0 {
		return
	}

	var sb strings.Builder
	fields := row.Fields()
	for i, name := range fields {
		v, _ := row.Get(name)
		sb.WriteString(fmt.Sprintf("%s = %v", name, v))
		if i < len(fields)-1 {
			sb.WriteString("\n")
		}
	}
	p.printBox(title, sb.String())
}
