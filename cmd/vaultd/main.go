package main

import (
	"context"
	"log"
	"os"

	"github.com/awnumar/memguard"
	"github.com/dmitrijs2005/gophvault/internal/buildinfo"
	"github.com/dmitrijs2005/gophvault/internal/platform"
	"github.com/dmitrijs2005/gophvault/internal/server"
	"github.com/dmitrijs2005/gophvault/internal/server/config"
)

func main() {
	defer memguard.Purge()

	buildinfo.PrintBuildData(os.Stdout)

	if err := platform.DisableCoreDumps(); err != nil {
		log.Printf("cannot disable core dumps: %v", err)
	}

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Printf("%v", err)
		return
	}

	ctx := context.Background()
	app, err := server.NewApp(ctx, cfg, os.Stdout)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
