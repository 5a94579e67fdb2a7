package formatter

import (
	"strings"
	"testing"

	"github.com/yildizm/domainslab/internal/api"
)

func sampleRecords() []api.DomainRecord {
	return []api.DomainRecord{
		{Domain: "zeta.org", TxtRecords: []string{"v=spf1 -all"}, FileName: "domains.txt"},
		{Domain: "example.com", TxtRecords: []string{"v=spf1 include:_spf.google.com ~all", "google-site-verification=abc"}, FileName: "domains.txt"},
		{Domain: "empty.net", FileName: "more.csv"},
	}
}

func TestTerminalFormat_SortsDomains(t *testing.T) {
	out, err := NewTerminal(false).Format(sampleRecords())
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	output := string(out)

	emptyPos := strings.Index(output, "empty.net")
	examplePos := strings.Index(output, "example.com")
	zetaPos := strings.Index(output, "zeta.org")

	if emptyPos < 0 || examplePos < 0 || zetaPos < 0 {
		t.Fatalf("expected every domain in output:\n%s", output)
	}
	if emptyPos > examplePos || examplePos > zetaPos {
		t.Errorf("domains should be listed alphabetically:\n%s", output)
	}
}

func TestTerminalFormat_Summary(t *testing.T) {
	out, err := NewTerminal(false).Format(sampleRecords())
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	output := string(out)

	for _, want := range []string{
		"Domains Lab Records",
		"Domains",
		"TXT Records",
		"domains.txt, more.csv",
		"google-site-verification=abc",
		"(2 TXT records)",
		"(1 TXT record)",
	} {
		if !strings.Contains(output, want) {
			t.Errorf("expected %q in output:\n%s", want, output)
		}
	}
}

func TestTerminalFormat_Empty(t *testing.T) {
	out, err := NewTerminal(false).Format(nil)
	if err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if !strings.Contains(string(out), "No records yet") {
		t.Errorf("expected empty-state message, got:\n%s", out)
	}
}

func TestTerminalFormat_DoesNotReorderInput(t *testing.T) {
	records := sampleRecords()
	if _, err := NewTerminal(false).Format(records); err != nil {
		t.Fatalf("Format returned error: %v", err)
	}
	if records[0].Domain != "zeta.org" {
		t.Errorf("caller's slice was reordered: first is %s", records[0].Domain)
	}
}
