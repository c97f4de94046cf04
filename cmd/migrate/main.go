// Command migrate runs goose against the configured database using the
// embedded migrations:
//
//	migrate [up|down|status|version|redo|reset] [-d dsn]
package main

import (
	"context"
	"log"
	"os"
	"strings"

	"github.com/dmitrijs2005/storeauth/internal/server/config"
	"github.com/dmitrijs2005/storeauth/internal/server/repositories/repomanager"
	"github.com/pressly/goose/v3"
)

var commands = map[string]bool{
	"up": true, "down": true, "status": true, "version": true, "redo": true, "reset": true,
}

func main() {

	command := "up"
	if len(os.Args) > 1 && !strings.HasPrefix(os.Args[1], "-") {
		command = os.Args[1]
	}
	if !commands[command] {
		log.Fatalf("unknown command %q", command)
	}

	cfg := config.LoadConfig()
	if cfg.DatabaseDSN == "" {
		log.Fatal("DATABASE_DSN is not set")
	}

	ctx := context.Background()
	db, err := repomanager.Open(ctx, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("%v", err)
	}
	defer db.Close()

	if err := repomanager.Prepare(); err != nil {
		log.Fatalf("%v", err)
	}

	if err := goose.RunContext(ctx, command, db, "."); err != nil {
		log.Printf("goose %s: %v", command, err)
		return
	}
}
