package main

import (
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"grid-clash/internal/api"
	"grid-clash/internal/config"
	"grid-clash/internal/grid"
	"grid-clash/internal/render"
	"grid-clash/internal/sim"
	"grid-clash/internal/view"
)

func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("💡 No .env file found, using environment variables only")
	}

	log.Println("⚔️  ================================")
	log.Println("⚔️   GRID CLASH - BATTLE SERVER")
	log.Println("⚔️  ================================")

	cfg := config.Load()
	log.Printf("🗺️  board %dx%d, turn every %v", cfg.Board.Size, cfg.Board.Size, cfg.Board.TurnInterval)

	registry := grid.NewTypeRegistry(grid.DefaultTypes()...)

	// Battle audit log (optional).
	var battleLog *sim.BattleLog
	if cfg.Server.BattleLogPath != "" {
		battleLog = sim.NewBattleLog()
		if err := battleLog.Start(cfg.Server.BattleLogPath); err != nil {
			log.Printf("⚠️ battle log disabled: %v", err)
			battleLog = nil
		} else {
			log.Printf("📜 battle log: %s", cfg.Server.BattleLogPath)
			defer battleLog.Stop()
		}
	}

	seed := cfg.Board.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	battle := sim.NewBattle(cfg.Board.Size, registry, seed, battleLog)

	engine := view.NewEngine(view.Config{
		GridSize:      cfg.Board.Size,
		FlashDuration: cfg.Timings.Flash,
		ShakeDuration: cfg.Timings.Shake,
		PopupDuration: cfg.Timings.Popup,
		SlideQuantum:  cfg.Timings.SlideQuantum,
		OnSelect: func(row, col int) {
			log.Printf("👆 cell selected (%d,%d)", row, col)
		},
	}, registry)
	defer engine.Close()

	server := api.NewServer(api.RouterConfig{
		View:     engine,
		Battle:   battle,
		Renderer: render.New(registry),
	})
	defer server.Stop()

	// Turn loop: resolve a turn, feed the view, push to render surfaces.
	stopLoop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(cfg.Board.TurnInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				start := time.Now()
				engine.Apply(battle.Resolve())
				api.RecordTurn(time.Since(start), battle.UnitCount())
				server.Hub().PushState()
			case <-stopLoop:
				return
			}
		}
	}()

	// Serve until signalled.
	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(":" + strconv.Itoa(cfg.Server.Port))
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		log.Printf("🛑 received %v, shutting down", sig)
	case err := <-errChan:
		log.Printf("🛑 server stopped: %v", err)
	}
	close(stopLoop)
}
