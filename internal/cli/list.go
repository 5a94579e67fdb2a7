package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/yildizm/domainslab/internal/formatter"
)

var listOutputFile string

func newListCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List processed domains and their TXT records",
		Long: `Print every domain the server has processed together with its TXT records.

The --output flag selects text (tree view), json or csv.

Examples:
  domainslab list
  domainslab list -o json
  domainslab list -o csv --output-file records.csv`,
		Args: cobra.NoArgs,
		RunE: runList,
	}

	cmd.Flags().StringVar(&listOutputFile, "output-file", "", "save output to file instead of stdout")

	return cmd
}

func runList(cmd *cobra.Command, args []string) error {
	s, err := newSession(cmd, "list")
	if err != nil {
		return err
	}

	f, err := formatter.New(getOutputFormat(), isColorEnabled())
	if err != nil {
		return err
	}

	ctx, stop := signalContext(cmd)
	defer stop()

	records, err := s.client.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list records: %w", err)
	}
	s.log.Debug("received %d records", len(records))

	data, err := f.Format(records)
	if err != nil {
		return fmt.Errorf("failed to format records: %w", err)
	}

	if listOutputFile != "" {
		if err := os.WriteFile(listOutputFile, data, 0o600); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		s.notifier.Success(fmt.Sprintf("Wrote %d records to %s", len(records), listOutputFile))
		return nil
	}

	_, err = cmd.OutOrStdout().Write(data)
	return err
}
