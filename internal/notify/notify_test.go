package notify

import (
	"bytes"
	"strings"
	"testing"

	"github.com/yildizm/domainslab/internal/emoji"
)

func TestTerminal_NoColor(t *testing.T) {
	emoji.SetEmojiDisabled(true)
	defer emoji.SetEmojiDisabled(false)

	var buf bytes.Buffer
	n := NewTerminalWriter(&buf, true)

	n.Success("File processed successfully !")
	n.Error("No results found")

	want := "[OK] File processed successfully !\n[ERR] No results found\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestRecorder(t *testing.T) {
	var r Recorder
	r.Success("saved")
	r.Error("failed")
	r.Error("failed again")

	successes, errs := r.Snapshot()
	if strings.Join(successes, ",") != "saved" {
		t.Errorf("successes = %v", successes)
	}
	if len(errs) != 2 {
		t.Errorf("errors = %v", errs)
	}
}
