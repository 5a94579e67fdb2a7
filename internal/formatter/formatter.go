package formatter

import (
	"fmt"
	"sort"

	"github.com/yildizm/domainslab/internal/api"
)

// Formatter defines the interface for output formatting
type Formatter interface {
	Format(records []api.DomainRecord) ([]byte, error)
}

// New returns the formatter for a format name
func New(format string, color bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color), nil
	case "json":
		return NewJSON(), nil
	case "csv":
		return NewCSV(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (must be one of: text, json, csv)", format)
	}
}

// Summary aggregates a record listing
type Summary struct {
	Domains     int      `json:"domains"`
	TxtRecords  int      `json:"txt_records"`
	SourceFiles []string `json:"source_files,omitempty"`
}

// Summarize counts domains, TXT records and distinct source files
func Summarize(records []api.DomainRecord) Summary {
	s := Summary{Domains: len(records)}
	seen := make(map[string]bool)
	for _, r := range records {
		s.TxtRecords += len(r.TxtRecords)
		if r.FileName != "" && !seen[r.FileName] {
			seen[r.FileName] = true
			s.SourceFiles = append(s.SourceFiles, r.FileName)
		}
	}
	sort.Strings(s.SourceFiles)
	return s
}

// sortedRecords orders by domain without touching the caller's slice
func sortedRecords(records []api.DomainRecord) []api.DomainRecord {
	out := make([]api.DomainRecord, len(records))
	copy(out, records)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Domain < out[j].Domain
	})
	return out
}
