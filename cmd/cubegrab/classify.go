package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/cubegrab/internal/classify"
)

// classification is the JSON form of a classify result.
type classification struct {
	URL        string `json:"url"`
	Confidence string `json:"confidence"`
	Strategy   string `json:"strategy"`
	Naming     string `json:"naming,omitempty"`
	Rule       string `json:"rule,omitempty"`
}

func newClassification(url string) classification {
	m := classify.Classify(url)
	c := classification{
		URL:        url,
		Confidence: m.Confidence.String(),
		Strategy:   m.Strategy.String(),
		Rule:       m.Rule,
	}
	if m.Strategy == classify.StrategySixFace {
		c.Naming = m.Naming.String()
	}
	return c
}

// NewClassifyCmd creates the classify command.
func NewClassifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <url>...",
		Short: "Show how cubegrab would handle URLs",
		Long: `Classify matches URLs against the known tile URL shapes and prints the
confidence, the acquisition strategy and, for six-face panoramas, how the
faces are named. No network request is made.

Examples:
  cubegrab classify https://tiles.example.com/pano0/3/0_0.jpg
  cubegrab classify --json https://cdn.example.com/pano_f.jpg`,
		Args: cobra.MinimumNArgs(1),
		RunE: runClassifyCmd,
	}
	cmd.Flags().BoolP("json", "j", false, "Output JSON")
	return cmd
}

func runClassifyCmd(cmd *cobra.Command, args []string) error {
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	results := make([]classification, len(args))
	for i, url := range args {
		results[i] = newClassification(url)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	}

	rows := make([][]string, len(results))
	for i, c := range results {
		naming := c.Naming
		if naming == "" {
			naming = "-"
		}
		rows[i] = []string{c.Confidence, c.Strategy, naming, c.URL}
	}
	fmt.Fprintln(out, renderTable([]string{"Confidence", "Strategy", "Naming", "URL"}, rows))
	return nil
}
