package main

import (
	"context"
	"log"
	"os"

	"github.com/mkaranov/brospace/internal/buildinfo"
	"github.com/mkaranov/brospace/internal/client/cli"
	"github.com/mkaranov/brospace/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	app, err := cli.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)
}
