package cli

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/iudanet/winelog/internal/client/iocli"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

func newVersionCmd(io iocli.IO) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			io.Println("Winelog")
			io.Printf("Version:    %s\n", Version)
			io.Printf("Build Date: %s\n", BuildDate)
			io.Printf("Git Commit: %s\n", GitCommit)
			io.Printf("Go Version: %s\n", runtime.Version())
		},
	}
}
