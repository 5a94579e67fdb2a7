package ui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/domainslab/internal/flow"
	"github.com/yildizm/domainslab/internal/logger"
	"github.com/yildizm/domainslab/internal/notify"
)

// toastNotifier turns notifications into toast messages
type toastNotifier struct {
	send func(tea.Msg)
}

// NewToastNotifier returns a notifier that hands toasts to send, usually
// (*tea.Program).Send
func NewToastNotifier(send func(tea.Msg)) notify.Notifier {
	return &toastNotifier{send: send}
}

func (n *toastNotifier) Success(msg string) {
	n.send(toastMsg{kind: toastSuccess, text: msg})
}

func (n *toastNotifier) Error(msg string) {
	n.send(toastMsg{kind: toastError, text: msg})
}

// RunOptions configures the interactive shell
type RunOptions struct {
	Client            *api.Client
	AllowedExtensions []string
	OutputDir         string
	Theme             string
	NoColor           bool
	Log               *logger.Logger
}

// Run starts the shell and blocks until the user quits or ctx ends
func Run(ctx context.Context, opts RunOptions) error {
	if opts.Client == nil {
		return fmt.Errorf("an API client is required")
	}
	if !SetThemeByName(opts.Theme) {
		return fmt.Errorf("unknown theme: %s (available: %s)", opts.Theme, strings.Join(GetAvailableThemes(), ", "))
	}
	if opts.NoColor || IsColorDisabled() {
		DisableColor()
	}

	log := opts.Log
	if log == nil {
		log = logger.Discard()
	}

	// the program does not exist yet when the controllers are built
	var program *tea.Program
	send := func(msg tea.Msg) {
		if program != nil {
			program.Send(msg)
		}
	}
	notifier := NewToastNotifier(send)

	uploads := flow.NewUploadController(opts.Client, opts.AllowedExtensions, log, notifier)
	searches := flow.NewSearchController(opts.Client, uploads, log, notifier)
	downloads := flow.NewDownloadTrigger(opts.Client, opts.OutputDir, log, notifier)

	model := NewModel(ctx, Options{
		Uploads:   uploads,
		Searches:  searches,
		Downloads: downloads,
		APIBase:   opts.Client.BaseURL(),
		Log:       log,
	})

	program = tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))

	defer uploads.Subscribe(func(s flow.UploadState) { send(uploadStateMsg(s)) })()
	defer searches.Subscribe(func(s flow.SearchState) { send(searchStateMsg(s)) })()

	log.Info("shell started against %s", opts.Client.BaseURL())
	if _, err := program.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("interactive shell failed: %w", err)
	}
	return nil
}
