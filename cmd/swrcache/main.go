package main

import (
	"context"
	"fmt"
	"os"

	"github.com/unkn0wn-root/swrcache/internal/cli"
)

// Set via ldflags.
var version = "dev"

func main() {
	if err := cli.NewRootCmd(version).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "swrcache:", err)
		os.Exit(1)
	}
}
