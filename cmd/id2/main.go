package main

import (
	"os"

	"github.com/toranova/id2/cmd/id2/commands"
)

func main() {
	rootCmd := commands.RootCmd

	rootCmd.AddCommand(
		commands.NewKeygenCmd(),
		commands.NewSignCmd(),
		commands.NewVerifyCmd(),
		commands.NewSetupCmd(),
		commands.NewExtractCmd(),
		commands.NewProveCmd(),
		commands.NewServeCmd(),
		commands.NewSelfTestCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
