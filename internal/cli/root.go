// Package cli implements the swrcache command: inspect key ids, read and
// write a configured provider, and watch environment-driven revalidation.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/config"
	swrlogrus "github.com/unkn0wn-root/swrcache/log/logrus"
)

// app is what every subcommand needs after flags are parsed.
type app struct {
	configPath string
	cfg        *config.Config
	log        *logrus.Logger
}

func (a *app) load(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	l, err := newLogger(cfg.Log, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	a.cfg, a.log = cfg, l
	return nil
}

func (a *app) logger() swrcache.Logger { return swrlogrus.New(a.log) }

// NewRootCmd creates the root command for swrcache.
func NewRootCmd(version string) *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "swrcache",
		Short:         "Inspect and drive swrcache providers",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (yaml, toml or json); SWRCACHE_* env vars override")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "swrcache %s\n", version)
		},
	})
	root.AddCommand(newKeyCmd(a), newGetCmd(a), newSetCmd(a), newWatchCmd(a))
	return root
}

// parseKey turns CLI arguments into a key descriptor. One argument is the
// key itself, several form a tuple key. With asJSON each argument is decoded
// as JSON first (numbers, arrays, objects) and kept as a string otherwise.
func parseKey(args []string, asJSON bool) any {
	parts := make([]any, len(args))
	for i, s := range args {
		parts[i] = s
		if !asJSON {
			continue
		}
		var v any
		if err := json.Unmarshal([]byte(s), &v); err == nil {
			parts[i] = v
		}
	}
	if len(parts) == 1 {
		return parts[0]
	}
	return parts
}

// parseValue decodes a JSON value, falling back to the raw string.
func parseValue(s string) any {
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return s
	}
	return v
}
