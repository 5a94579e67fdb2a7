package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"

	"github.com/yildizm/domainslab/internal/api"
)

// csvFormatter writes one row per TXT record
type csvFormatter struct{}

// NewCSV creates a new CSV formatter
func NewCSV() Formatter {
	return &csvFormatter{}
}

func (f *csvFormatter) Format(records []api.DomainRecord) ([]byte, error) {
	var b bytes.Buffer
	writer := csv.NewWriter(&b)

	if err := writer.Write([]string{"Domain", "TXT Record", "File Name"}); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, r := range sortedRecords(records) {
		// a domain without TXT values still gets a row
		values := r.TxtRecords
		if len(values) == 0 {
			values = []string{""}
		}
		for _, txt := range values {
			if err := writer.Write([]string{r.Domain, txt, r.FileName}); err != nil {
				return nil, fmt.Errorf("failed to write CSV record: %w", err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("failed to flush CSV writer: %w", err)
	}

	return b.Bytes(), nil
}
