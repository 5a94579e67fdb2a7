package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/yildizm/domainslab/internal/api"
	"github.com/yildizm/domainslab/internal/config"
	"github.com/yildizm/domainslab/internal/logger"
	"github.com/yildizm/domainslab/internal/notify"
)

// session bundles what every networked command needs
type session struct {
	cfg      *config.Config
	log      *logger.Logger
	client   *api.Client
	notifier *trackingNotifier
}

func newSession(cmd *cobra.Command, component string) (*session, error) {
	cfg := GetGlobalConfig()

	log := logger.NewWithCallback(component, isVerbose)
	log.SetOutput(cmd.ErrOrStderr())

	client, err := api.New(cfg.APIClientConfig())
	if err != nil {
		return nil, fmt.Errorf("invalid API configuration: %w", err)
	}
	log.Debug("using API at %s", client.BaseURL())

	return &session{
		cfg:      cfg,
		log:      log,
		client:   client,
		notifier: &trackingNotifier{Notifier: notify.NewTerminalWriter(cmd.ErrOrStderr(), !isColorEnabled())},
	}, nil
}

// fail marks err as already shown when a notifier printed an error
func (s *session) fail(err error) error {
	if err == nil {
		return nil
	}
	if s.notifier.errorCount() > 0 {
		return &reportedError{err: err}
	}
	return err
}

// signalContext is canceled on Ctrl+C or SIGTERM
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

// trackingNotifier counts errors passed to the wrapped notifier
type trackingNotifier struct {
	notify.Notifier

	mu     sync.Mutex
	errors int
}

func (t *trackingNotifier) Error(message string) {
	t.mu.Lock()
	t.errors++
	t.mu.Unlock()
	t.Notifier.Error(message)
}

func (t *trackingNotifier) errorCount() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.errors
}
