package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophvault/internal/buildinfo"
	"github.com/dmitrijs2005/gophvault/internal/client/cli"
	"github.com/dmitrijs2005/gophvault/internal/client/client"
	"github.com/dmitrijs2005/gophvault/internal/client/config"
)

func main() {
	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	api, err := client.NewGRPCClient(cfg.ServerAddr)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer api.Close()

	app := cli.NewApp(cfg, api, os.Stdin, os.Stdout)
	app.Run(context.Background())
}
