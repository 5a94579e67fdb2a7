package cli

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/domainslab/internal/formatter"
)

// fakeBackend imitates the Domains Lab server
type fakeBackend struct {
	mu       sync.Mutex
	uploads  []string
	keywords []string
	lists    int
	records  []api.DomainRecord
}

func newFakeBackend(t *testing.T) *fakeBackend {
	t.Helper()

	b := &fakeBackend{
		records: []api.DomainRecord{
			{Domain: "example.org", TxtRecords: []string{"v=spf1 -all"}, FileName: "domains.txt_1"},
			{Domain: "example.com", TxtRecords: []string{"v=spf1 include:_spf.example.com ~all", "google-site-verification=abc"}, FileName: "domains.txt_1"},
		},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/upload", b.handleUpload)
	mux.HandleFunc("/search", b.handleSearch)
	mux.HandleFunc("/download", b.handleDownload)
	mux.HandleFunc("/list", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.lists++
		b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.records)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("DOMAINSLAB_API_BASE_URL", server.URL)

	return b
}

func (b *fakeBackend) handleUpload(w http.ResponseWriter, r *http.Request) {
	file, header, err := r.FormFile("domainsFile")
	if err != nil {
		http.Error(w, "missing domainsFile", http.StatusBadRequest)
		return
	}
	_, _ = io.Copy(io.Discard, file)
	_ = file.Close()

	b.mu.Lock()
	b.uploads = append(b.uploads, header.Filename)
	b.mu.Unlock()

	flusher, _ := w.(http.Flusher)
	for _, chunk := range []string{"25\n", "75\n", "100\n"} {
		_, _ = io.WriteString(w, chunk)
		if flusher != nil {
			flusher.Flush()
		}
	}
}

func (b *fakeBackend) handleSearch(w http.ResponseWriter, r *http.Request) {
	keyword := r.URL.Query().Get("keyword")

	b.mu.Lock()
	b.keywords = append(b.keywords, keyword)
	b.mu.Unlock()

	if keyword == "nothing" {
		http.Error(w, "No records found for keyword", http.StatusNotFound)
		return
	}
	_ = json.NewEncoder(w).Encode(api.SearchResponse{FilePath: "./results/spf1.csv"})
}

func (b *fakeBackend) handleDownload(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("file") != "./results/spf1.csv" {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"error":"invalid file path"}`)
		return
	}
	_, _ = io.WriteString(w, "example.com,domains.txt_1\n")
}

func (b *fakeBackend) uploadNames() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.uploads...)
}

func (b *fakeBackend) listCalls() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.lists
}

func (b *fakeBackend) searchedKeywords() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.keywords...)
}

// syncBuffer is written by the command goroutine and read by the test
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func newTestRoot(args ...string) (*cobra.Command, *syncBuffer, *syncBuffer) {
	cmd := NewRootCommand("test", "abc123", "today")
	stdout, stderr := &syncBuffer{}, &syncBuffer{}
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetArgs(append([]string{"--env-file=", "--no-color", "--no-emoji"}, args...))
	return cmd, stdout, stderr
}

func execute(args ...string) (string, string, error) {
	cmd, stdout, stderr := newTestRoot(args...)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLookup_UploadSearchDownload(t *testing.T) {
	backend := newFakeBackend(t)
	input := writeFile(t, t.TempDir(), "domains.txt", "example.com\nexample.org\n")
	outDir := t.TempDir()

	stdout, stderr, err := execute("lookup", input, "-k", "v=spf1", "--download", "--out-dir", outDir)

	require.NoError(t, err)
	assert.Equal(t, []string{"domains.txt"}, backend.uploadNames())
	assert.Equal(t, []string{"v=spf1"}, backend.searchedKeywords())
	assert.Contains(t, stdout, "Uploading domains.txt")
	assert.Contains(t, stdout, `Results for "v=spf1": ./results/spf1.csv`)
	assert.Contains(t, stderr, "100%")

	content, err := os.ReadFile(filepath.Join(outDir, "spf1.csv"))
	require.NoError(t, err)
	assert.Equal(t, "example.com,domains.txt_1\n", string(content))
}

func TestLookup_UploadOnly(t *testing.T) {
	backend := newFakeBackend(t)
	input := writeFile(t, t.TempDir(), "domains.csv", "domain\nexample.com\n")

	_, _, err := execute("lookup", input)

	require.NoError(t, err)
	assert.Equal(t, []string{"domains.csv"}, backend.uploadNames())
	assert.Empty(t, backend.searchedKeywords())
}

func TestLookup_Failures(t *testing.T) {
	dir := t.TempDir()
	txt := writeFile(t, dir, "domains.txt", "example.com\n")
	pdf := writeFile(t, dir, "domains.pdf", "%PDF")

	tests := []struct {
		name         string
		args         []string
		wantReported bool
		wantMsg      string
	}{
		{
			name:         "wrong extension",
			args:         []string{"lookup", pdf},
			wantReported: true,
			wantMsg:      "Invalid file type: .pdf",
		},
		{
			name:         "no results",
			args:         []string{"lookup", txt, "-k", "nothing"},
			wantReported: true,
			wantMsg:      "No records found for keyword",
		},
		{
			name:    "download without keyword",
			args:    []string{"lookup", txt, "--download"},
			wantMsg: "--download needs a --keyword",
		},
		{
			name:    "missing file",
			args:    []string{"lookup", filepath.Join(dir, "missing.txt")},
			wantMsg: "missing.txt",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			newFakeBackend(t)

			_, stderr, err := execute(tt.args...)

			require.Error(t, err)
			assert.Equal(t, tt.wantReported, IsReported(err))
			if tt.wantReported {
				assert.Contains(t, stderr, tt.wantMsg)
			} else {
				assert.Contains(t, err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestDownloadCommand(t *testing.T) {
	newFakeBackend(t)
	outDir := t.TempDir()

	_, stderr, err := execute("download", "./results/spf1.csv", "--out-dir", outDir)
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(outDir, "spf1.csv"))
	assert.Contains(t, stderr, "spf1.csv")

	_, stderr, err = execute("download", "../etc/passwd", "--out-dir", outDir)
	require.Error(t, err)
	assert.True(t, IsReported(err))
	assert.Contains(t, stderr, "invalid file path")
}

func TestListCommand_Formats(t *testing.T) {
	newFakeBackend(t)

	t.Run("json", func(t *testing.T) {
		stdout, _, err := execute("list", "-o", "json")
		require.NoError(t, err)

		var out formatter.JSONOutput
		require.NoError(t, json.Unmarshal([]byte(stdout), &out))
		assert.Equal(t, 2, out.Summary.Domains)
		assert.Equal(t, 3, out.Summary.TxtRecords)
		require.Len(t, out.Records, 2)
		assert.Equal(t, "example.com", out.Records[0].Domain, "records are sorted by domain")
	})

	t.Run("csv", func(t *testing.T) {
		stdout, _, err := execute("list", "-o", "csv")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Domain,TXT Record,File Name\n")
		assert.Contains(t, stdout, "example.org,v=spf1 -all,domains.txt_1\n")
	})

	t.Run("text", func(t *testing.T) {
		stdout, _, err := execute("list")
		require.NoError(t, err)
		assert.Contains(t, stdout, "Domains Lab Records")
		assert.Contains(t, stdout, "example.com")
		assert.Contains(t, stdout, "(2 TXT records)")
	})

	t.Run("output file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "records.json")
		stdout, _, err := execute("list", "-o", "json", "--output-file", path)
		require.NoError(t, err)
		assert.Empty(t, stdout)
		assert.FileExists(t, path)
	})

	t.Run("unknown format", func(t *testing.T) {
		_, _, err := execute("list", "-o", "xml")
		require.Error(t, err)
	})
}

func TestListCommand_BackendDown(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()
	t.Setenv("DOMAINSLAB_API_BASE_URL", url)

	_, _, err := execute("list")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to list records")
	assert.False(t, IsReported(err))
}

func TestConfigCommands(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "domainslab.yaml")

	stdout, _, err := execute("config", "init", "--minimal", "--path", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration file created at: "+path)
	assert.FileExists(t, path)

	_, _, err = execute("config", "init", "--path", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")

	stdout, _, err = execute("--config", path, "config", "validate")
	require.NoError(t, err)
	assert.Contains(t, stdout, "Configuration is valid")
	assert.Contains(t, stdout, "Download Directory: .")

	stdout, _, err = execute("--config", path, "config", "show", "--format", "json")
	require.NoError(t, err)
	var shown map[string]any
	require.NoError(t, json.Unmarshal([]byte(stdout), &shown))
	assert.Contains(t, shown, "api")

	bad := writeFile(t, t.TempDir(), "bad.yaml", "output:\n  default_format: xml\n")
	stdout, _, err = execute("--config", bad, "config", "validate")
	require.Error(t, err)
	assert.True(t, IsReported(err))
	assert.Contains(t, stdout, "Configuration validation failed")
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := execute("version")

	require.NoError(t, err)
	assert.Contains(t, stdout, "domainslab test (abc123) built on today")
}

func TestEnvFile(t *testing.T) {
	backend := newFakeBackend(t)
	url := os.Getenv("DOMAINSLAB_API_BASE_URL")
	t.Setenv("DOMAINSLAB_API_BASE_URL", "")
	envPath := writeFile(t, t.TempDir(), ".env", fmt.Sprintf("DOMAINS_LAB_API=%s\n", url))
	t.Cleanup(func() { _ = os.Unsetenv("DOMAINS_LAB_API") })

	_, _, err := execute("--env-file", envPath, "list", "-o", "json")
	require.NoError(t, err)
	assert.Equal(t, 1, backend.listCalls())

	_, _, err = execute("--env-file", filepath.Join(t.TempDir(), "missing.env"), "list")
	require.Error(t, err, "an explicit env file must exist")
}

func TestIsReported(t *testing.T) {
	base := errors.New("boom")

	assert.False(t, IsReported(base))
	assert.True(t, IsReported(&reportedError{err: base}))
	assert.True(t, IsReported(fmt.Errorf("wrapped: %w", &reportedError{err: base})))
	assert.ErrorIs(t, &reportedError{err: base}, base)
}

func TestWatch_MissingKeywordForDownload(t *testing.T) {
	newFakeBackend(t)

	_, _, err := execute("watch", t.TempDir(), "--download")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "--download needs a keyword")
}

func TestPrepareWatchDir(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "inbox")

	got, err := prepareWatchDir(dir)
	require.NoError(t, err)
	assert.Equal(t, dir, got)
	assert.DirExists(t, dir)

	file := writeFile(t, t.TempDir(), "domains.txt", "")
	_, err = prepareWatchDir(file)
	assert.Error(t, err)

	_, err = prepareWatchDir("  ")
	assert.Error(t, err)
}

func TestDropFolder_SkipReason(t *testing.T) {
	d := &dropFolder{
		allowed: []string{".txt", ".csv"},
		written: map[string]bool{"/inbox/spf1.csv": true},
	}

	tests := map[string]string{
		"/inbox/domains.txt":  "",
		"/inbox/DOMAINS.CSV":  "",
		"/inbox/.domains.txt": "hidden file",
		"/inbox/spf1.csv":     "downloaded result",
		"/inbox/notes.md":     "unsupported extension",
		"/inbox/noext":        "unsupported extension",
	}

	for path, want := range tests {
		assert.Equal(t, want, d.skipReason(path), path)
	}
}
