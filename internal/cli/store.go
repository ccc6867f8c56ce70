package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/config"
)

// open builds the configured provider and binds to its shared state.
func (a *app) open(headless bool) (*config.Built, swrcache.Handle, error) {
	cfg := *a.cfg
	cfg.Env.Headless = cfg.Env.Headless || headless
	built, err := cfg.Build(a.logger(), nil)
	if err != nil {
		return nil, swrcache.Handle{}, err
	}
	h, err := swrcache.Initialize(built.Provider, built.Options)
	if err != nil {
		_ = built.Close()
		return nil, swrcache.Handle{}, err
	}
	return built, h, nil
}

func closeAll(built *config.Built, h swrcache.Handle) error {
	if h.Teardown != nil {
		h.Teardown()
	}
	return built.Close()
}

func newGetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "get <part>...",
		Short: "Print the cached value of a key",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			built, h, err := a.open(true)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeAll(built, h); err == nil {
					err = cerr
				}
			}()

			id, _ := h.Mutator.Serialize(parseKey(args, asJSON))
			if id == "" {
				return fmt.Errorf("key %q serializes to no id", args)
			}
			v, ok := h.Provider.Get(id)
			if !ok {
				return fmt.Errorf("%s: not cached", id)
			}
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "decode each key part as JSON")
	return cmd
}

func newSetCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "set <part>... <value>",
		Short: "Mutate a key: write the value and notify its subscribers",
		Args:  cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			built, h, err := a.open(true)
			if err != nil {
				return err
			}
			defer func() {
				if cerr := closeAll(built, h); err == nil {
					err = cerr
				}
			}()

			key := parseKey(args[:len(args)-1], asJSON)
			v, err := h.Mutator.Mutate(cmd.Context(), key, parseValue(args[len(args)-1]))
			if err != nil {
				return err
			}
			id, _ := h.Mutator.Serialize(key)
			a.log.WithField("key", id).Debug("value written")
			b, err := json.Marshal(v)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "decode each key part as JSON")
	return cmd
}
