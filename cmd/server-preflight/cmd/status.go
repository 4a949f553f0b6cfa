package cmd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Aman-CERP/serverpreflight/internal/preflight"
)

type statusInfo struct {
	DataDir     string     `json:"data_dir"`
	Passed      bool       `json:"passed"`
	LastPassed  *time.Time `json:"last_passed,omitempty"`
	AgeSeconds  float64    `json:"age_seconds,omitempty"`
	NeedsCheck  bool       `json:"needs_check"`
	MetricsFile string     `json:"metrics_file,omitempty"`
}

func newStatusCmd(g *globals) *cobra.Command {
	var jsonOutput bool
	var clearMarker bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show when preflight last passed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			g.jsonErrors = jsonOutput
			dir := g.settings.MarkerDir()
			if clearMarker {
				if err := preflight.ClearMarker(dir); err != nil {
					return err
				}
			}

			info := statusInfo{
				DataDir:     dir,
				NeedsCheck:  preflight.NeedsCheck(dir),
				MetricsFile: g.settings.MetricsFile,
			}
			if t, ok := preflight.LastPassed(dir); ok {
				info.Passed = true
				info.LastPassed = &t
				info.AgeSeconds = preflight.MarkerAge(dir).Round(time.Second).Seconds()
			}

			out := cmd.OutOrStdout()
			if jsonOutput {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(info)
			}

			if !info.Passed {
				_, err := fmt.Fprintf(out, "Preflight has not passed yet (data dir: %s)\n", dir)
				return err
			}
			_, err := fmt.Fprintf(out, "Preflight last passed %s (%s ago)\n",
				info.LastPassed.Local().Format(time.RFC1123),
				preflight.MarkerAge(dir).Round(time.Second))
			return err
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	cmd.Flags().BoolVar(&clearMarker, "clear", false, "Remove the marker so the next run starts fresh")

	return cmd
}
