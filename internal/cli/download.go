package cli

import (
	"github.com/spf13/cobra"
	"github.com/yildizm/domainslab/internal/flow"
)

var downloadOutDir string

func newDownloadCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "download LOCATOR",
		Short: "Download a results file by its locator",
		Long: `Fetch a results file the server produced for an earlier search.

The locator is the path returned by a search, for example ./results/results_1.csv.
The file is saved under its own name in the output directory; an existing file
is never overwritten.

Examples:
  domainslab download ./results/results_1.csv
  domainslab download results/spf1.csv --out-dir ~/Downloads`,
		Args: cobra.ExactArgs(1),
		RunE: runDownload,
	}

	cmd.Flags().StringVar(&downloadOutDir, "out-dir", "", "directory for the downloaded file (default: download.output_dir)")

	return cmd
}

func runDownload(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "download")
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	outDir := downloadOutDir
	if outDir == "" {
		outDir = s.cfg.Download.OutputDir
	}

	trigger := flow.NewDownloadTrigger(s.client, outDir, s.log, s.notifier)
	_, err = trigger.Download(ctx, args[0])
	return s.fail(err)
}
