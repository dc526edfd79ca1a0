package cmd

import (
	"github.com/spf13/cobra"
)

// Version is the released version, set at build time:
//
//	go build -ldflags "-X laravel-api-forge/cmd.Version=v1.2.3"
//
// Self-update refuses to run while it is "dev".
var Version = "dev"

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the forge version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Printf("forge %s\n", Version)
		},
	}
}
