package ui

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/domainslab/internal/flow"
)

type stubUploader struct{ chunks []string }

func (s *stubUploader) Upload(_ context.Context, _, _ string, content io.Reader, onChunk func(string)) error {
	if _, err := io.Copy(io.Discard, content); err != nil {
		return err
	}
	for _, c := range s.chunks {
		onChunk(c)
	}
	return nil
}

type stubSearcher struct {
	mu      sync.Mutex
	calls   int
	locator string
	err     error
}

func (s *stubSearcher) Search(context.Context, string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.locator, nil
}

type stubDownloader struct{ data []byte }

func (s *stubDownloader) Download(context.Context, string) ([]byte, error) {
	return s.data, nil
}

type harness struct {
	model    *Model
	searcher *stubSearcher
	outDir   string
	toasts   []tea.Msg
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	h := &harness{
		searcher: &stubSearcher{locator: "results/spf1.csv"},
		outDir:   t.TempDir(),
	}
	notifier := NewToastNotifier(func(msg tea.Msg) { h.toasts = append(h.toasts, msg) })

	uploads := flow.NewUploadController(&stubUploader{chunks: []string{"10\n", "55\n", "100\n"}}, nil, nil, notifier)
	searches := flow.NewSearchController(h.searcher, uploads, nil, notifier)
	downloads := flow.NewDownloadTrigger(&stubDownloader{data: []byte("example.com\n")}, h.outDir, nil, notifier)

	h.model = NewModel(context.Background(), Options{
		Uploads:   uploads,
		Searches:  searches,
		Downloads: downloads,
		APIBase:   "http://localhost:8080",
	})
	return h
}

// send applies msg and runs any command it returns, feeding the result back
// the way the bubbletea event loop would; ticks are not followed
func (h *harness) send(msg tea.Msg) {
	_, cmd := h.model.Update(msg)
	h.run(cmd)
}

func (h *harness) run(cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	switch next := cmd().(type) {
	case nil, tickMsg, toastExpiredMsg:
	default:
		h.send(next)
	}
}

func (h *harness) typeText(s string) {
	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)})
}

func (h *harness) key(t tea.KeyType) {
	h.send(tea.KeyMsg{Type: t})
}

func writeDomains(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "domains.txt")
	require.NoError(t, os.WriteFile(path, []byte("example.com\nexample.org\n"), 0o600))
	return path
}

func TestModel_SearchIgnoredBeforeUpload(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyTab)
	require.Equal(t, SectionSearch, h.model.Active())

	h.typeText("v=spf1")
	h.key(tea.KeyEnter)

	assert.Zero(t, h.searcher.calls)
	assert.Empty(t, h.model.keywordInput.Value(), "a disabled input takes no text")
	assert.Contains(t, h.model.View(), flow.NotProcessedMessage)
}

func TestModel_RendersUploadProgress(t *testing.T) {
	h := newHarness(t)

	h.send(uploadStateMsg{
		File:      &flow.FileInfo{Name: "domains.txt", Size: 2048, MIMEType: "text/plain"},
		Uploading: true,
		Progress:  flow.Progress{Percent: 55},
	})

	view := h.model.View()
	assert.Contains(t, view, "55%")
	assert.Contains(t, view, "domains.txt")
	assert.Contains(t, view, "2.0 kB")
	assert.NotContains(t, view, flow.ProcessedMessage)

	h.send(uploadStateMsg{Uploading: true, Progress: flow.Progress{Indeterminate: true}})
	assert.Contains(t, h.model.View(), "Uploading...")
}

func TestModel_UploadSearchDownload(t *testing.T) {
	h := newHarness(t)

	h.typeText(writeDomains(t))
	h.key(tea.KeyEnter)

	assert.True(t, h.model.upload.Processed)
	assert.Empty(t, h.model.pathInput.Value(), "path is cleared for the next upload")
	view := h.model.View()
	assert.Contains(t, view, flow.ProcessedMessage)
	assert.Contains(t, view, "100%")
	assert.Contains(t, view, "Upload another file")
	assert.False(t, h.model.downloadVisible())

	h.key(tea.KeyTab)
	h.typeText("v=spf1")
	h.key(tea.KeyEnter)

	assert.Equal(t, 1, h.searcher.calls)
	require.True(t, h.model.downloadVisible())
	assert.Contains(t, h.model.View(), "results/spf1.csv")

	h.key(tea.KeyTab)
	require.Equal(t, SectionDownload, h.model.Active())
	h.key(tea.KeyEnter)

	saved := filepath.Join(h.outDir, "spf1.csv")
	assert.Equal(t, saved, h.model.savedPath)
	content, err := os.ReadFile(saved)
	require.NoError(t, err)
	assert.Equal(t, "example.com\n", string(content))

	var texts []string
	for _, msg := range h.toasts {
		texts = append(texts, msg.(toastMsg).text)
	}
	require.Len(t, texts, 2)
	assert.Equal(t, flow.ProcessedMessage, texts[0])
	assert.Contains(t, texts[1], "spf1.csv")
}

func TestModel_KeywordInputReenabledAfterFailedSearch(t *testing.T) {
	h := newHarness(t)
	h.searcher.err = &api.Error{Type: api.ErrTypeNotFound, Op: "search", Message: "No results found"}

	h.typeText(writeDomains(t))
	h.key(tea.KeyEnter)
	require.True(t, h.model.upload.Processed)

	h.key(tea.KeyTab)
	require.Equal(t, SectionSearch, h.model.Active())
	require.True(t, h.model.keywordInput.Focused())

	h.send(searchStateMsg{Keyword: "spf", Loading: true})
	assert.False(t, h.model.keywordInput.Focused(), "no typing while a search runs")
	h.typeText("x")
	assert.Empty(t, h.model.keywordInput.Value())

	h.send(searchStateMsg{Keyword: "spf", Error: "No results found"})
	assert.True(t, h.model.keywordInput.Focused())

	h.typeText("v=spf1")
	h.key(tea.KeyEnter)

	assert.Equal(t, 1, h.searcher.calls)
	assert.False(t, h.model.searchDisabled())
	assert.True(t, h.model.keywordInput.Focused())
	assert.Equal(t, "v=spf1", h.model.keywordInput.Value(), "a failed search keeps the keyword")
	assert.Contains(t, h.model.View(), "No results found")
	assert.False(t, h.model.downloadVisible())

	h.typeText("x")
	assert.Equal(t, "v=spf1x", h.model.keywordInput.Value())
}

func TestModel_DownloadHiddenWhileSearching(t *testing.T) {
	h := newHarness(t)
	result := &flow.SearchResult{Keyword: "spf", Locator: "./results/results_1.csv"}

	h.send(searchStateMsg{Keyword: "spf", Result: result})
	assert.True(t, h.model.downloadVisible())

	h.send(searchStateMsg{Keyword: "dkim", Loading: true})
	assert.False(t, h.model.downloadVisible())
	assert.NotContains(t, h.model.View(), "results_1.csv")
}

func TestModel_RejectsBadDrop(t *testing.T) {
	h := newHarness(t)

	dir := t.TempDir()
	pdf := filepath.Join(dir, "domains.pdf")
	require.NoError(t, os.WriteFile(pdf, []byte("%PDF"), 0o600))

	h.typeText(pdf)
	h.key(tea.KeyEnter)

	assert.False(t, h.model.upload.Processed)
	assert.Contains(t, h.model.View(), "Invalid file type: .pdf")
	require.Len(t, h.toasts, 1)
	assert.Equal(t, toastError, h.toasts[0].(toastMsg).kind)
}

func TestModel_Navigation(t *testing.T) {
	h := newHarness(t)

	h.key(tea.KeyShiftTab)
	assert.Equal(t, SectionHowItWorks, h.model.Active())

	// digits navigate only where there is no text field
	h.typeText("2")
	assert.Equal(t, SectionSearch, h.model.Active())

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("3"), Alt: true})
	assert.Equal(t, SectionDownload, h.model.Active())

	h.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("1"), Alt: true})
	assert.Equal(t, SectionUpload, h.model.Active())

	h.typeText("4")
	assert.Equal(t, SectionUpload, h.model.Active())
	assert.Equal(t, "4", h.model.pathInput.Value())
}

func TestModel_Toasts(t *testing.T) {
	h := newHarness(t)

	_, cmd := h.model.Update(toastMsg{kind: toastError, text: "No results found"})
	require.NotNil(t, cmd, "every toast schedules its own expiry")
	assert.Contains(t, h.model.View(), "No results found")

	for i := 0; i < maxToasts+2; i++ {
		h.model.Update(toastMsg{kind: toastSuccess, text: "ok"})
	}
	assert.Len(t, h.model.toasts, maxToasts)

	for _, tt := range append([]toast(nil), h.model.toasts...) {
		h.model.Update(toastExpiredMsg{id: tt.id})
	}
	assert.Empty(t, h.model.toasts)
	assert.NotContains(t, h.model.View(), "No results found")
}

func TestModel_Quit(t *testing.T) {
	h := newHarness(t)

	_, cmd := h.model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
	assert.True(t, strings.Contains(h.model.View(), "Bye"))
}

func TestDroppedPaths(t *testing.T) {
	existing := filepath.Join(t.TempDir(), "my domains.txt")
	require.NoError(t, os.WriteFile(existing, []byte("a.com\n"), 0o600))

	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{name: "empty", raw: "   ", want: nil},
		{name: "plain", raw: "/tmp/domains.txt", want: []string{"/tmp/domains.txt"}},
		{name: "single quoted", raw: "'/tmp/my list.csv' ", want: []string{"/tmp/my list.csv"}},
		{name: "escaped space", raw: `/tmp/my\ list.csv`, want: []string{"/tmp/my list.csv"}},
		{name: "file url", raw: "file:///tmp/domains.txt", want: []string{"/tmp/domains.txt"}},
		{name: "two files", raw: "'/tmp/a.txt' '/tmp/b.txt'", want: []string{"/tmp/a.txt", "/tmp/b.txt"}},
		{name: "existing file with space", raw: existing, want: []string{existing}},
		{name: "double quoted", raw: `"/tmp/my list.csv"`, want: []string{"/tmp/my list.csv"}},
		{name: "unbalanced quote", raw: "'/tmp/a.txt", want: []string{"'/tmp/a.txt"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DroppedPaths(tt.raw))
		})
	}
}
