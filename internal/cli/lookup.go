package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/yildizm/domainslab/internal/emoji"
	"github.com/yildizm/domainslab/internal/flow"
)

var (
	lookupKeyword  string
	lookupDownload bool
	lookupOutDir   string
)

func newLookupCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup FILE",
		Short: "Upload a domain list, then optionally search and download",
		Long: `Upload a .txt or .csv domain list and follow the server's progress.

With --keyword the processed records are searched once the upload completes;
add --download to save the matching results file.

Examples:
  domainslab lookup domains.txt
  domainslab lookup domains.csv -k v=spf1
  domainslab lookup domains.csv -k google-site-verification --download --out-dir results/`,
		Args: cobra.ExactArgs(1),
		RunE: runLookup,
	}

	cmd.Flags().StringVarP(&lookupKeyword, "keyword", "k", "", "keyword to search for after the upload")
	cmd.Flags().BoolVarP(&lookupDownload, "download", "d", false, "download the search result")
	cmd.Flags().StringVar(&lookupOutDir, "out-dir", "", "directory for downloaded results (default: download.output_dir)")

	return cmd
}

func runLookup(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "lookup")
	if err != nil {
		return err
	}
	if lookupDownload && lookupKeyword == "" {
		return fmt.Errorf("--download needs a --keyword to search for")
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	file, err := flow.OpenFile(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	uploads := flow.NewUploadController(s.client, s.cfg.Upload.AllowedExtensions, s.log, s.notifier)

	fmt.Fprintf(out, "%s Uploading %s\n", emoji.GetEmoji("upload"), file.Name)
	progress := newLineProgress(cmd.ErrOrStderr())
	unsubscribe := uploads.Subscribe(progress.update)
	err = uploads.Select(ctx, file)
	unsubscribe()
	progress.finish()
	if err != nil {
		return s.fail(err)
	}

	if lookupKeyword == "" {
		return nil
	}

	searches := flow.NewSearchController(s.client, uploads, s.log, s.notifier)
	if err := searches.Search(ctx, lookupKeyword); err != nil {
		return s.fail(err)
	}
	result, _ := searches.Result()
	fmt.Fprintf(out, "%s Results for %q: %s\n", emoji.GetEmoji("search"), result.Keyword, result.Locator)

	if !lookupDownload {
		return nil
	}

	outDir := lookupOutDir
	if outDir == "" {
		outDir = s.cfg.Download.OutputDir
	}
	trigger := flow.NewDownloadTrigger(s.client, outDir, s.log, s.notifier)
	if _, err := trigger.Download(ctx, result.Locator); err != nil {
		return s.fail(err)
	}
	return nil
}
