package main

import (
	"context"
	"os"

	"github.com/ptxhome/ptxswitchd/cmd/ptxctl/commands"
	"github.com/ptxhome/ptxswitchd/internal/utils"
)

var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	rootCmd := commands.NewRootCommand(version, commit, buildDate)
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		utils.SetupErrorLogger().Error("ptxctl failed", "error", err)
		os.Exit(1)
	}
}
