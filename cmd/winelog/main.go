package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/iudanet/winelog/internal/client/cli"
	"github.com/iudanet/winelog/internal/client/iocli"
)

func main() {
	root := cli.NewRootCmd(iocli.NewStdio())

	if err := fang.Execute(
		context.Background(),
		root,
		fang.WithVersion(cli.Version),
		fang.WithNotifySignal(os.Interrupt, os.Kill),
	); err != nil {
		os.Exit(1)
	}
}
