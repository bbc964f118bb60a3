package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/gophauth/internal/client/cli"
	"github.com/dmitrijs2005/gophauth/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg := config.LoadConfig()
	app, err := cli.NewApp(cfg)

	if err != nil {
		log.Fatalf("%v", err)
		return
	}

	os.Exit(app.Run(ctx, os.Args[1:]))

}
