package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Aman-CERP/serverpreflight/configs"
	"github.com/Aman-CERP/serverpreflight/internal/config"
	perrors "github.com/Aman-CERP/serverpreflight/internal/errors"
)

func newConfigCmd(g *globals) *cobra.Command {
	var example bool
	var layers bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the resolved configuration",
		Long: `Print the configuration the validators see, after operator overrides
have been merged with the shipped defaults. Passwords are masked.

Use --layers to see which layer every key comes from, or --example
for a commented configuration file to start from.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			if example {
				_, err := fmt.Fprint(out, configs.UserConfigTemplate)
				return err
			}

			l, err := config.LoadLayers(g.configPath, g.defaultsPath)
			if err != nil {
				return err
			}
			if layers {
				return printLayers(cmd, l)
			}

			snap, err := config.NewSnapshot(l, l.UserPath)
			if err != nil {
				return err
			}
			data, err := yaml.Marshal(snap.Redacted())
			if err != nil {
				return perrors.InternalError("failed to encode configuration", err)
			}
			_, err = fmt.Fprintf(out, "# resolved from %s and the shipped defaults\n%s", l.UserPath, data)
			return err
		},
	}

	cmd.Flags().BoolVar(&example, "example", false, "Print an example operator configuration file")
	cmd.Flags().BoolVar(&layers, "layers", false, "Print every key with its layer")

	return cmd
}

func printLayers(cmd *cobra.Command, l *config.Layers) error {
	out := cmd.OutOrStdout()
	for _, layer := range []config.Layer{config.LayerUser, config.LayerDefault} {
		if _, err := fmt.Fprintf(out, "%s:\n", layer); err != nil {
			return err
		}
		for _, key := range l.Keys(layer) {
			v, _ := l.Get(key, layer)
			if key == config.KeyErchefAuthPassword {
				v = "********"
			}
			if _, err := fmt.Fprintf(out, "  %s = %v\n", key, v); err != nil {
				return err
			}
		}
	}
	return nil
}
