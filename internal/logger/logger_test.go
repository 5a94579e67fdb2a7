package logger

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type staticVerbose bool

func (s staticVerbose) IsVerbose() bool { return bool(s) }

func TestLogger_VerboseGate(t *testing.T) {
	tests := []struct {
		name      string
		verbose   bool
		wantDebug bool
	}{
		{name: "quiet drops debug and info", verbose: false, wantDebug: false},
		{name: "verbose keeps debug and info", verbose: true, wantDebug: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := New("upload", staticVerbose(tt.verbose))
			log.SetOutput(&buf)

			log.Debug("chunk %d", 1)
			log.Info("started")
			log.Warn("slow")
			log.Error("failed")

			out := buf.String()
			if got := strings.Contains(out, "DEBUG [upload] chunk 1"); got != tt.wantDebug {
				t.Errorf("debug line present = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if got := strings.Contains(out, "INFO [upload] started"); got != tt.wantDebug {
				t.Errorf("info line present = %v, want %v\n%s", got, tt.wantDebug, out)
			}
			if !strings.Contains(out, "WARN [upload] slow") {
				t.Errorf("warn line missing\n%s", out)
			}
			if !strings.Contains(out, "ERROR [upload] failed") {
				t.Errorf("error line missing\n%s", out)
			}
		})
	}
}

func TestLogger_FieldsAndComponents(t *testing.T) {
	var buf bytes.Buffer
	root := NewWithCallback("main", func() bool { return true })
	root.SetOutput(&buf)

	search := root.WithComponent("search")
	search.InfoWithFields("search finished", []Field{F("keyword", "v=spf1"), Error(errors.New("boom"))})

	out := buf.String()
	if !strings.Contains(out, "INFO [search] search finished [keyword=v=spf1 error=boom]") {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestLogger_PercentWithoutArgs(t *testing.T) {
	var buf bytes.Buffer
	log := New("upload", nil)
	log.SetOutput(&buf)

	log.Warn("progress 100%")

	if !strings.Contains(buf.String(), "progress 100%") {
		t.Errorf("message mangled: %s", buf.String())
	}
}

func TestNewFileWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "domainslab.log")

	w, err := NewFileWriter(FileConfig{Path: path})
	if err != nil {
		t.Fatalf("NewFileWriter() error = %v", err)
	}

	log := New("tui", nil)
	log.SetOutput(w)
	log.Error("written to file")

	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !strings.Contains(string(data), "ERROR [tui] written to file") {
		t.Errorf("log file content = %q", data)
	}
}

func TestNewFileWriter_MissingPath(t *testing.T) {
	if _, err := NewFileWriter(FileConfig{}); err == nil {
		t.Error("expected error for empty path")
	}
}
