package formatter

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/go-termfmt"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter with optional color support
func NewTerminal(color bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = true
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) Format(records []api.DomainRecord) ([]byte, error) {
	var b strings.Builder

	f.writeHeader(&b)
	f.writeSummary(&b, Summarize(records))

	if len(records) == 0 {
		b.WriteString("No records yet. Upload a domain list to populate them.\n")
		return []byte(b.String()), nil
	}

	f.writeRecords(&b, sortedRecords(records))
	return []byte(b.String()), nil
}

// writeHeader writes the boxed title
func (f *terminalFormatter) writeHeader(b *strings.Builder) {
	header := "Domains Lab Records"
	headerLen := len(header)

	b.WriteString("╔" + strings.Repeat("═", headerLen+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", headerLen+2) + "╝\n\n")
}

// writeSummary writes the totals as a tree
func (f *terminalFormatter) writeSummary(b *strings.Builder, s Summary) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	b.WriteString(symbol + " Summary\n")

	sources := "N/A"
	if len(s.SourceFiles) > 0 {
		sources = strings.Join(s.SourceFiles, ", ")
	}

	items := []termfmt.TreeItem{
		{Label: "Domains", Value: humanize.Comma(int64(s.Domains))},
		{Label: "TXT Records", Value: humanize.Comma(int64(s.TxtRecords))},
		{Label: "Source Files", Value: sources, Last: true},
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n\n")
}

// writeRecords writes one branch per domain with its TXT values as leaves
func (f *terminalFormatter) writeRecords(b *strings.Builder, records []api.DomainRecord) {
	symbol := termfmt.GetEmoji("insights", f.opts)
	b.WriteString(symbol + " Records\n")

	items := make([]termfmt.TreeItem, 0, len(records))
	for i, r := range records {
		children := make([]termfmt.TreeItem, 0, len(r.TxtRecords))
		for j, txt := range r.TxtRecords {
			children = append(children, termfmt.TreeItem{
				Label: txt,
				Last:  j == len(r.TxtRecords)-1,
			})
		}

		items = append(items, termfmt.TreeItem{
			Label:    r.Domain,
			Value:    recordCount(len(r.TxtRecords)),
			Children: children,
			Last:     i == len(records)-1,
		})
	}

	tree := termfmt.TreeViewWithOptions(items, f.opts)
	b.WriteString(tree + "\n")
}

func recordCount(n int) string {
	if n == 1 {
		return "(1 TXT record)"
	}
	return fmt.Sprintf("(%s TXT records)", humanize.Comma(int64(n)))
}
