package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/romshark/jscan-partial/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := cli.NewRootCmd(viper.GetViper())
	if err := cmd.ExecuteContext(ctx); err != nil {
		log.Error("jscanpartial failed", "error", err)
		stop()
		os.Exit(1)
	}
}
