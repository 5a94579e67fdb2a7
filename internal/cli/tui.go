package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yildizm/domainslab/internal/logger"
	"github.com/yildizm/domainslab/internal/ui"
)

func newTUICommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Open the interactive shell (default)",
		Long: `Open the interactive shell: upload a file, follow its progress, search
the processed records and download the results from one screen.

While the shell is open, logs go to logging.file instead of the terminal.`,
		Args: cobra.NoArgs,
		RunE: runTUI,
	}
}

func runTUI(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "tui")
	if err != nil {
		return err
	}

	// the shell owns the terminal; diagnostics go to the rotating log file
	if s.cfg.Logging.File != "" {
		w, err := logger.NewFileWriter(s.cfg.LogFileConfig())
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer func() {
			if err := w.Close(); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "Warning: failed to close log file: %v\n", err)
			}
		}()
		s.log.SetOutput(w)
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	return ui.Run(ctx, ui.RunOptions{
		Client:            s.client,
		AllowedExtensions: s.cfg.Upload.AllowedExtensions,
		OutputDir:         s.cfg.Download.OutputDir,
		Theme:             s.cfg.Output.Theme,
		NoColor:           !isColorEnabled(),
		Log:               s.log,
	})
}
