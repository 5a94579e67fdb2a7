package ui

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/cursor"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/mattn/go-shellwords"
	"github.com/yildizm/domainslab/internal/emoji"
	"github.com/yildizm/domainslab/internal/flow"
	"github.com/yildizm/domainslab/internal/logger"
	"github.com/yildizm/domainslab/internal/ui/components"
)

// Section is one navigable part of the shell
type Section int

const (
	SectionUpload Section = iota
	SectionSearch
	SectionDownload
	SectionHowItWorks
)

const sectionCount = 4

var sectionNames = [sectionCount]string{"Upload", "Search", "Download", "How it works"}

func (s Section) String() string {
	if s < 0 || int(s) >= sectionCount {
		return "Unknown"
	}
	return sectionNames[s]
}

// Options wires the shell to its controllers
type Options struct {
	Uploads   *flow.UploadController
	Searches  *flow.SearchController
	Downloads *flow.DownloadTrigger
	APIBase   string
	Log       *logger.Logger
}

type toast struct {
	id   int
	kind toastKind
	text string
}

// maxToasts caps how many toasts are stacked at once
const maxToasts = 3

// Model is the interactive shell
type Model struct {
	ctx    context.Context
	opts   Options
	styles *Styles
	log    *logger.Logger

	width    int
	height   int
	active   Section
	quitting bool

	pathInput    textinput.Model
	keywordInput textinput.Model
	progress     *components.ProgressBar
	spinner      *components.Spinner

	upload      flow.UploadState
	search      flow.SearchState
	downloading bool
	savedPath   string

	toasts      []toast
	nextToastID int
}

// NewModel creates the shell model. ctx bounds every flow it starts.
func NewModel(ctx context.Context, opts Options) *Model {
	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}

	styles := GetStyles()

	progress := components.NewProgressBar(40)
	progress.Fill = styles.Theme.Progress
	progress.Track = styles.Theme.Muted

	spinner := components.NewSpinner()
	spinner.Color = styles.Theme.Primary

	m := &Model{
		ctx:          ctx,
		opts:         opts,
		styles:       styles,
		log:          log.WithComponent("ui"),
		pathInput:    newInput(styles, "File › ", "paste or drop a .txt/.csv path"),
		keywordInput: newInput(styles, "Keyword › ", "e.g. v=spf1"),
		progress:     progress,
		spinner:      spinner,
	}
	if opts.Uploads != nil {
		m.upload = opts.Uploads.State()
	}
	if opts.Searches != nil {
		m.search = opts.Searches.State()
	}
	m.setActive(SectionUpload)
	m.syncInputs()
	return m
}

func newInput(styles *Styles, prompt, placeholder string) textinput.Model {
	in := textinput.New()
	in.Prompt = prompt
	in.Placeholder = placeholder
	in.Width = 48
	in.CharLimit = 1024
	in.PromptStyle = styles.SectionTitle
	in.PlaceholderStyle = styles.Muted
	// redraws come from the shell ticker, the cursor does not blink
	in.Cursor.SetMode(cursor.CursorStatic)
	return in
}

// Init starts the animation ticker
func (m *Model) Init() tea.Cmd {
	return tick()
}

// Active returns the highlighted section
func (m *Model) Active() Section {
	return m.active
}

// Update handles messages and navigation
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.progress.Width = max(10, min(m.contentWidth()-16, 50))
		m.pathInput.Width = max(10, m.contentWidth()-12)
		m.keywordInput.Width = max(10, m.contentWidth()-15)
		return m, nil
	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	case tickMsg:
		m.spinner.Tick()
		return m, tick()
	case uploadStateMsg:
		m.applyUpload(flow.UploadState(msg))
	case searchStateMsg:
		m.applySearch(flow.SearchState(msg))
	case uploadDoneMsg:
		m.applyUpload(m.opts.Uploads.State())
		if msg.err == nil {
			m.pathInput.Reset()
		}
	case searchDoneMsg:
		m.applySearch(m.opts.Searches.State())
		if msg.err == nil {
			m.keywordInput.Reset()
			m.savedPath = ""
		}
	case downloadDoneMsg:
		m.downloading = false
		if msg.err == nil {
			m.savedPath = msg.path
		}
	case toastMsg:
		return m, m.pushToast(msg)
	case toastExpiredMsg:
		m.dropToast(msg.id)
	}

	return m, nil
}

// handleKeyPress routes keys to navigation, actions or the focused input
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key := msg.String(); key {
	case "ctrl+c":
		return m.handleQuit()
	case "tab":
		m.setActive((m.active + 1) % sectionCount)
		return m, nil
	case "shift+tab":
		m.setActive((m.active + sectionCount - 1) % sectionCount)
		return m, nil
	case "alt+1", "alt+2", "alt+3", "alt+4":
		m.setActive(Section(key[len(key)-1] - '1'))
		return m, nil
	case "enter":
		return m, m.submit()
	case "esc":
		m.cancel()
		return m, nil
	}

	if input := m.focusedInput(); input != nil {
		var cmd tea.Cmd
		*input, cmd = input.Update(msg)
		return m, cmd
	}

	// sections without a text field take single-key shortcuts
	switch key := msg.String(); key {
	case "1", "2", "3", "4":
		m.setActive(Section(key[0] - '1'))
	case "q":
		return m.handleQuit()
	case "d":
		return m, m.startDownload()
	}
	return m, nil
}

func (m *Model) handleQuit() (tea.Model, tea.Cmd) {
	m.log.Debug("shell closing")
	m.quitting = true
	if m.opts.Uploads != nil {
		m.opts.Uploads.Cancel()
	}
	if m.opts.Searches != nil {
		m.opts.Searches.Cancel()
	}
	return m, tea.Quit
}

func (m *Model) setActive(s Section) {
	m.active = s
	m.syncInputs()
}

func (m *Model) focusedInput() *textinput.Model {
	switch m.active {
	case SectionUpload:
		return &m.pathInput
	case SectionSearch:
		return &m.keywordInput
	default:
		return nil
	}
}

// submit runs the action of the active section
func (m *Model) submit() tea.Cmd {
	m.log.Debug("submit in %s section", m.active)
	switch m.active {
	case SectionUpload:
		return m.startUpload(m.pathInput.Value())
	case SectionSearch:
		return m.startSearch(m.keywordInput.Value())
	case SectionDownload:
		return m.startDownload()
	default:
		return nil
	}
}

// cancel aborts the active section's flow, or clears its input when idle
func (m *Model) cancel() {
	switch m.active {
	case SectionUpload:
		if m.upload.Uploading {
			m.opts.Uploads.Cancel()
			return
		}
		m.pathInput.Reset()
	case SectionSearch:
		if m.search.Loading {
			m.opts.Searches.Cancel()
			return
		}
		m.keywordInput.Reset()
	}
}

func (m *Model) startUpload(raw string) tea.Cmd {
	uploads := m.opts.Uploads
	ctx := m.ctx
	paths := DroppedPaths(raw)

	return func() tea.Msg {
		switch len(paths) {
		case 0:
			return uploadDoneMsg{err: uploads.Select(ctx)}
		case 1:
			file, err := flow.OpenFile(paths[0])
			if err != nil {
				return toastMsg{kind: toastError, text: err.Error()}
			}
			return uploadDoneMsg{err: uploads.Select(ctx, file)}
		default:
			// rejected on count before any file is read
			files := make([]flow.SelectedFile, 0, len(paths))
			for _, p := range paths {
				files = append(files, flow.SelectedFile{Name: filepath.Base(p)})
			}
			return uploadDoneMsg{err: uploads.Select(ctx, files...)}
		}
	}
}

// searchDisabled mirrors the gate: no typing or submitting while a search
// runs or before the uploaded file is processed
func (m *Model) searchDisabled() bool {
	return m.search.Loading || !m.upload.Processed
}

func (m *Model) startSearch(keyword string) tea.Cmd {
	if m.searchDisabled() {
		return nil
	}

	searches := m.opts.Searches
	ctx := m.ctx
	return func() tea.Msg {
		return searchDoneMsg{err: searches.Search(ctx, keyword)}
	}
}

// downloadVisible reports whether the download section is shown
func (m *Model) downloadVisible() bool {
	return m.search.Result != nil && !m.search.Loading
}

func (m *Model) startDownload() tea.Cmd {
	if !m.downloadVisible() || m.downloading {
		return nil
	}

	m.downloading = true
	downloads := m.opts.Downloads
	ctx := m.ctx
	locator := m.search.Result.Locator
	return func() tea.Msg {
		path, err := downloads.Download(ctx, locator)
		return downloadDoneMsg{path: path, err: err}
	}
}

func (m *Model) applyUpload(s flow.UploadState) {
	m.upload = s
	if s.Progress.Indeterminate {
		m.progress.SetIndeterminate()
	} else {
		m.progress.SetPercent(s.Progress.Percent)
	}
	m.syncInputs()
}

func (m *Model) applySearch(s flow.SearchState) {
	m.search = s
	m.syncInputs()
}

// syncInputs focuses the active section's field. A blurred field ignores
// keys, so the keyword field stays blurred while search is disabled.
func (m *Model) syncInputs() {
	setFocus(&m.pathInput, m.active == SectionUpload)
	setFocus(&m.keywordInput, m.active == SectionSearch && !m.searchDisabled())
}

func setFocus(in *textinput.Model, focused bool) {
	if focused {
		in.Focus()
	} else {
		in.Blur()
	}
}

func (m *Model) pushToast(msg toastMsg) tea.Cmd {
	m.nextToastID++
	id := m.nextToastID
	m.toasts = append(m.toasts, toast{id: id, kind: msg.kind, text: msg.text})
	if len(m.toasts) > maxToasts {
		m.toasts = m.toasts[len(m.toasts)-maxToasts:]
	}
	return expireToast(id)
}

func (m *Model) dropToast(id int) {
	for i, t := range m.toasts {
		if t.id == id {
			m.toasts = append(m.toasts[:i], m.toasts[i+1:]...)
			return
		}
	}
}

// View renders the shell
func (m *Model) View() string {
	if m.quitting {
		return m.styles.Success.Render(emoji.GetEmoji("wave")+" Bye!") + "\n"
	}

	parts := []string{
		m.renderNav(),
		m.renderHeader(),
		m.renderUpload(),
		m.renderSearch(),
	}
	if m.downloadVisible() {
		parts = append(parts, m.renderDownload())
	}
	parts = append(parts, m.renderHowItWorks(), m.renderFooter())
	if toasts := m.renderToasts(); toasts != "" {
		parts = append(parts, toasts)
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m *Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(30, min(m.width-2, 96))
}

func (m *Model) renderNav() string {
	items := make([]string, 0, sectionCount)
	for i, name := range sectionNames {
		label := fmt.Sprintf("%d %s", i+1, name)
		if Section(i) == m.active {
			items = append(items, m.styles.NavActive.Render(label))
		} else {
			items = append(items, m.styles.NavItem.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, items...)
}

func (m *Model) renderHeader() string {
	title := m.styles.Title.Render(emoji.GetEmoji("globe") + " Domains Lab")
	subtitle := m.styles.Subtitle.Render("Upload a domain list, search its TXT records, download the matches")
	return "\n" + title + "\n" + subtitle + "\n"
}

func (m *Model) section(s Section, title string, lines ...string) string {
	style := m.styles.Section
	if s == m.active {
		style = m.styles.SectionActive
	}
	body := append([]string{m.styles.SectionTitle.Render(title)}, lines...)
	return style.Width(m.contentWidth()).Render(strings.Join(body, "\n"))
}

func (m *Model) renderUpload() string {
	lines := []string{m.pathInput.View()}

	if f := m.upload.File; f != nil {
		lines = append(lines, fmt.Sprintf("%s %s (%s, %s)",
			emoji.GetEmoji("file"), f.Name, humanize.Bytes(uint64(f.Size)), f.MIMEType))
	} else {
		lines = append(lines, m.styles.Muted.Render("Drop a .txt or .csv file on the terminal, or type its path, then press Enter"))
	}

	switch {
	case m.upload.Uploading:
		lines = append(lines, m.progress.Render())
	case m.upload.Processed:
		lines = append(lines,
			m.progress.Render(),
			m.styles.Success.Render(emoji.GetEmoji("success")+" "+flow.ProcessedMessage),
			m.styles.Muted.Render("Upload another file: enter a new path"))
	}

	if m.upload.Error != "" {
		lines = append(lines, m.styles.Error.Render(emoji.GetEmoji("error")+" "+m.upload.Error))
	}

	return m.section(SectionUpload, emoji.GetEmoji("upload")+" Upload", lines...)
}

func (m *Model) renderSearch() string {
	lines := []string{m.renderKeywordInput()}

	switch {
	case m.search.Loading:
		m.spinner.SetLabel(fmt.Sprintf("Searching for %q...", m.search.Keyword))
		lines = append(lines, m.spinner.Render())
	case !m.upload.Processed:
		lines = append(lines, m.styles.Muted.Render(flow.NotProcessedMessage))
	}

	if m.search.InputError != "" {
		lines = append(lines, m.styles.Error.Render(m.search.InputError))
	}
	if m.search.Error != "" {
		lines = append(lines, m.styles.Error.Render(emoji.GetEmoji("error")+" "+m.search.Error))
	}

	return m.section(SectionSearch, emoji.GetEmoji("search")+" Search", lines...)
}

func (m *Model) renderKeywordInput() string {
	if !m.searchDisabled() {
		return m.keywordInput.View()
	}
	text := m.keywordInput.Value()
	if text == "" {
		text = m.keywordInput.Placeholder
	}
	return m.styles.Muted.Faint(true).Render(m.keywordInput.Prompt + text)
}

func (m *Model) renderDownload() string {
	result := m.search.Result
	lines := []string{
		fmt.Sprintf("Results for %q are ready: %s", result.Keyword, result.Locator),
	}

	switch {
	case m.downloading:
		m.spinner.SetLabel("Downloading...")
		lines = append(lines, m.spinner.Render())
	case m.savedPath != "":
		lines = append(lines, m.styles.Success.Render("Saved to "+m.savedPath))
	default:
		lines = append(lines, m.styles.Muted.Render("Press Enter (or d) to download "+flow.SuggestedFileName(result.Locator)))
	}

	return m.section(SectionDownload, emoji.GetEmoji("download")+" Download", lines...)
}

// howItWorks is the three-step guide shown under the flows
var howItWorks = []struct {
	icon, title, body string
}{
	{"upload", "Upload", "Drop a .txt or .csv list of domains. The server looks up their TXT records."},
	{"search", "Search", "Look for a keyword such as v=spf1 across the processed records."},
	{"download", "Download", "Save the matching domains as a CSV file."},
}

func (m *Model) renderHowItWorks() string {
	columns := 3
	if m.contentWidth() < 90 {
		columns = 1
	}

	row := components.NewCardRow(columns)
	for i, step := range howItWorks {
		card := components.NewCard(step.title, step.body).
			SetIcon(emoji.GetEmoji(step.icon)).
			SetStep(i + 1)
		card.Accent = m.styles.Theme.Primary
		card.Border = m.styles.Theme.Border
		row.AddCard(card)
	}
	if columns == 1 {
		row.SetCardWidth(m.contentWidth())
	} else {
		row.SetCardWidth(m.contentWidth() / columns)
	}

	return m.section(SectionHowItWorks, emoji.GetEmoji("help")+" How it works", row.Render())
}

func (m *Model) renderFooter() string {
	help := "tab/shift+tab switch section • enter submit • esc cancel • ctrl+c quit"
	if m.opts.APIBase != "" {
		help += " • API " + m.opts.APIBase
	}
	return m.styles.Footer.Render(help)
}

func (m *Model) renderToasts() string {
	if len(m.toasts) == 0 {
		return ""
	}

	rendered := make([]string, 0, len(m.toasts))
	for _, t := range m.toasts {
		if t.kind == toastError {
			rendered = append(rendered, m.styles.ToastError.Render(emoji.GetEmoji("error")+" "+t.text))
		} else {
			rendered = append(rendered, m.styles.ToastSuccess.Render(emoji.GetEmoji("success")+" "+t.text))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rendered...)
}

// DroppedPaths splits what a terminal pastes when files are dropped on it:
// one or more paths, optionally quoted, with backslash-escaped spaces or a
// file:// prefix. Input naming one existing file is returned as is.
func DroppedPaths(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if _, err := os.Stat(raw); err == nil {
		return []string{raw}
	}

	words, err := shellwords.Parse(raw)
	if err != nil {
		// unbalanced quotes; opening the file reports the problem
		words = []string{raw}
	}

	var paths []string
	for _, w := range words {
		if w = strings.TrimPrefix(w, "file://"); w != "" {
			paths = append(paths, w)
		}
	}
	return paths
}
