package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unkn0wn-root/swrcache"
	"github.com/unkn0wn-root/swrcache/stablehash"
)

func newKeyCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "key <part>...",
		Short: "Print the cache id a key serializes to",
		Example: `  swrcache key /api/user
  swrcache key --json /api/user 42`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hasher, err := stablehash.ByName(a.cfg.Hasher)
			if err != nil {
				return err
			}
			id, keyArgs := swrcache.Serializer{Hash: hasher}.Serialize(parseKey(args, asJSON))
			if id == "" {
				return fmt.Errorf("key %q serializes to no id", args)
			}
			b, err := json.Marshal(keyArgs)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", id, b)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "decode each part as JSON")
	return cmd
}
