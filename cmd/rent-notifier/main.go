// Package main is the entry point for rent-notifier.
package main

import (
	"context"
	"os"
	"syscall"

	"charm.land/fang/v2"

	"github.com/donaldgifford/rent-notifier/cmd/rent-notifier/cmd"
)

func main() {
	if err := fang.Execute(
		context.Background(),
		cmd.Root(),
		fang.WithVersion(cmd.Version),
		fang.WithNotifySignal(os.Interrupt, syscall.SIGTERM),
	); err != nil {
		os.Exit(1)
	}
}
