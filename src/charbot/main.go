package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/mitchmarns/hockey-bot/src/actions"
	"github.com/mitchmarns/hockey-bot/src/config"
	"github.com/mitchmarns/hockey-bot/src/data"
)

func main() {
	db := data.MustConnect()

	if err := data.Init(db); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	if err := data.LoadSettings(db); err != nil {
		log.Printf("Failed to load settings: %v", err)
	}

	base := config.LoadBase(db)
	if base.Token == "" {
		log.Fatal("discord_token not set in database or environment")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	mgr, err := actions.StartAll(ctx, db)
	if err != nil {
		log.Fatalf("Failed to start bot: %v", err)
	}

	log.Println("Character bot is running. Press CTRL-C to exit.")

	sc := make(chan os.Signal, 1)
	signal.Notify(sc, syscall.SIGINT, syscall.SIGTERM, os.Interrupt)
	<-sc

	mgr.Stop(ctx)
	log.Println("Character bot stopped gracefully")
}
