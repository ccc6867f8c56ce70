package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/config"
	asynchook "github.com/unkn0wn-root/swrcache/hooks/async"
	"github.com/unkn0wn-root/swrcache/sloghooks"
)

func newWatchCmd(a *app) *cobra.Command {
	var (
		keys   []string
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Attach the configured environment listeners and log revalidation",
		Long: `watch binds to the configured provider with its focus and reconnect
sources (signals, file watches) and logs every revalidation an environment
event triggers for the given keys, plus every write to them, until interrupted.`,
		Example: `  swrcache watch -c swr.yaml --key /api/user --key /api/feed`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(keys) == 0 {
				return fmt.Errorf("at least one --key is required")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return a.watch(ctx, cmd, keys, asJSON)
		},
	}
	cmd.Flags().StringArrayVarP(&keys, "key", "k", nil, "key to watch (repeatable)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "decode each key as JSON")
	return cmd
}

func (a *app) watch(ctx context.Context, cmd *cobra.Command, keys []string, asJSON bool) error {
	hooks := asynchook.New(sloghooks.New(slogFor(a.log), sloghooks.Options{}), 1, 1024)
	defer hooks.Close()

	cfg := *a.cfg
	built, err := cfg.Build(a.logger(), hooks)
	if err != nil {
		return err
	}
	h, err := swrcache.Initialize(built.Provider, built.Options)
	if err != nil {
		_ = built.Close()
		return err
	}
	defer func() { _ = closeAll(built, h) }()

	for _, k := range keys {
		id, _ := h.Mutator.Serialize(parseKey([]string{k}, asJSON))
		if id == "" {
			return fmt.Errorf("key %q serializes to no id", k)
		}
		entry := a.log.WithField("key", id)
		defer h.State.Register(id, func(ev swrcache.Event) {
			entry.WithField("event", ev.String()).Info("revalidate")
		})()
		defer h.State.Subscribe(id, func(cur, prev any) {
			entry.WithFields(logrus.Fields{"value": cur, "prev": prev}).Info("changed")
		})()
	}

	a.log.WithFields(logrus.Fields{
		"state":     h.State.ID(),
		"keys":      len(keys),
		"headless":  cfg.Env.Headless,
		"focus":     describe(cfg.Env.Focus),
		"reconnect": describe(cfg.Env.Reconnect),
	}).Info("watching")
	fmt.Fprintln(cmd.OutOrStdout(), "watching; interrupt to stop")

	<-ctx.Done()
	return nil
}

func describe(s config.SourceConfig) string {
	switch {
	case len(s.Signals) > 0 && s.File != "":
		return fmt.Sprintf("signals=%v file=%s", s.Signals, s.File)
	case len(s.Signals) > 0:
		return fmt.Sprintf("signals=%v", s.Signals)
	case s.File != "":
		return "file=" + s.File
	}
	return "none"
}
