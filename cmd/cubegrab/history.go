package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/cubegrab/internal/config"
	"github.com/nao1215/cubegrab/internal/model"
	"github.com/nao1215/cubegrab/internal/report"
	"github.com/nao1215/cubegrab/internal/store"
)

// defaultHistoryLimit is the number of reports shown without --limit.
const defaultHistoryLimit = 20

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [url]",
		Short: "List stored acquisition reports",
		Long: `History lists the acquisition reports saved by previous grab runs, newest
first. With a URL only the reports of that URL are listed.

Examples:
  cubegrab history
  cubegrab history --limit 5 https://tiles.example.com/pano0/3/0_0.jpg
  cubegrab history --json --store bbolt`,
		Args: cobra.MaximumNArgs(1),
		RunE: runHistoryCmd,
	}

	cmd.Flags().IntP("limit", "n", defaultHistoryLimit, "Maximum number of reports (0 lists all)")
	cmd.Flags().String("store", config.DefaultStoreBackend, "Store backend: sqlite or bbolt")
	cmd.Flags().String("db-dir", config.XDGDataDir(), "Store directory")
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	cmd.Flags().BoolP("markdown", "m", false, "Output the full Markdown report of every entry")

	return cmd
}

func runHistoryCmd(cmd *cobra.Command, args []string) error {
	flags := cmd.Flags()
	limit, err := flags.GetInt("limit")
	if err != nil {
		return err
	}
	if limit < 0 {
		return config.ErrInvalidLimit
	}
	backend, err := flags.GetString("store")
	if err != nil {
		return err
	}
	dir, err := flags.GetString("db-dir")
	if err != nil {
		return err
	}
	asJSON, err := flags.GetBool("json")
	if err != nil {
		return err
	}
	asMarkdown, err := flags.GetBool("markdown")
	if err != nil {
		return err
	}
	if asJSON && asMarkdown {
		return config.ErrConflictingReportFormats
	}

	st, err := store.Open(backend, dir)
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer st.Close()

	url := ""
	if len(args) == 1 {
		url = args[0]
	}
	reports, err := st.Reports(contextOf(cmd), url, limit)
	if err != nil {
		return fmt.Errorf("failed to read reports: %w", err)
	}

	out := cmd.OutOrStdout()
	switch {
	case asJSON:
		_, err = report.NewJSONWriter(out, report.WithPrettyPrint()).WriteAll(reports)
		return err
	case asMarkdown:
		return writeAll(report.NewMarkdownWriter(out), reports)
	case len(reports) == 0:
		fmt.Fprintln(out, "No reports stored yet.")
		return nil
	default:
		fmt.Fprintln(out, report.HistoryTable(reports))
		return nil
	}
}

func writeAll(w report.Writer, reports []*model.AcquisitionReport) error {
	for _, r := range reports {
		if _, err := w.Write(r); err != nil {
			return err
		}
	}
	return nil
}
