package main

import (
	"time"

	"github.com/wfunc/wordchain/config"
	"github.com/wfunc/wordchain/logger"
	"github.com/wfunc/wordchain/server"
	"github.com/wfunc/wordchain/timer"
)

func main() {
	// Initialize logger
	logger.Init()

	// Load configuration
	cfg, err := config.LoadConfig(".")
	if err != nil {
		logger.Log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize Game Server
	scheduler := timer.NewScheduler(time.Second)
	gameServer := server.NewGameServer(cfg, scheduler)

	// Start Server
	logger.Log.Infof("Starting word-chain server on %s (%d rooms, %s turns)",
		cfg.Server.TCPAddress, cfg.Game.RoomCount, cfg.Game.TurnTimeout)
	if err := gameServer.Start(); err != nil {
		logger.Log.Fatalf("Failed to start server: %v", err)
	}
}
