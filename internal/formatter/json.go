package formatter

import (
	"encoding/json"

	"github.com/yildizm/domainslab/internal/api"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// JSONOutput is the document written by the JSON formatter
type JSONOutput struct {
	Summary Summary        `json:"summary"`
	Records []RecordOutput `json:"records"`
}

// RecordOutput is one domain in the JSON document
type RecordOutput struct {
	Domain     string   `json:"domain"`
	TxtRecords []string `json:"txt_records"`
	FileName   string   `json:"file_name,omitempty"`
}

func (f *jsonFormatter) Format(records []api.DomainRecord) ([]byte, error) {
	output := &JSONOutput{
		Summary: Summarize(records),
		Records: make([]RecordOutput, 0, len(records)),
	}

	for _, r := range sortedRecords(records) {
		txt := r.TxtRecords
		if txt == nil {
			txt = []string{}
		}
		output.Records = append(output.Records, RecordOutput{
			Domain:     r.Domain,
			TxtRecords: txt,
			FileName:   r.FileName,
		})
	}

	return json.MarshalIndent(output, "", "  ")
}
