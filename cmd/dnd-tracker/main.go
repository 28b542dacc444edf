package main

import (
	"os"
	"time"

	"github.com/dougis/dnd-tracker-next-js-sub004/internal/api"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/config"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/constants"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/logging"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/service"
	"github.com/dougis/dnd-tracker-next-js-sub004/internal/storage"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// Optional .env for local development; the real environment wins.
	_ = godotenv.Load()

	// Path may be provided via TRACKER_CONFIG or defaults to
	// ./tracker_config.json in the current working directory. The file
	// itself is optional; env vars can override its values.
	configPath := os.Getenv(constants.EnvConfigPath)
	if configPath == "" {
		configPath = "./tracker_config.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		logging.Fatal("Invalid tracker configuration", err, logging.Fields{"config_path": configPath})
	}

	db, err := storage.OpenAndMigrate(cfg.DBPath)
	if err != nil {
		logging.Fatal("Failed to initialize database", err, nil)
	}

	repo := storage.NewSQLiteRepository(db)
	sessions := service.NewSessions(repo, service.TrackerConfig{
		MaxHistoryRounds: cfg.MaxHistoryRounds,
		DebounceWindow:   cfg.DebounceWindow,
		MaxRounds:        cfg.MaxRounds,
	})
	handler := api.NewTrackerHandler(repo, sessions)

	// Background sweeper: periodically flush and drop live tracker
	// sessions that have gone idle, so long-running servers don't
	// accumulate trackers for abandoned encounters.
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			if n := sessions.SweepIdle(cfg.SessionIdleTTL); n > 0 {
				logging.Info("idle sessions swept", logging.Fields{"count": n})
			}
		}
	}()

	router := gin.Default()
	router.GET(constants.RouteHealth, func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	router.GET(constants.RouteVersion, api.Version)

	apiRoutes := router.Group(constants.RouteAPIPrefix)
	{
		apiRoutes.POST(constants.RouteEncounters, handler.CreateEncounter)
		apiRoutes.GET(constants.RouteEncounters, handler.ListEncounters)
		apiRoutes.GET(constants.RouteEncounterByID, handler.GetEncounter)

		apiRoutes.POST(constants.RouteCombatStart, handler.StartCombat)
		apiRoutes.POST(constants.RouteCombatEnd, handler.EndCombat)
		apiRoutes.PUT(constants.RouteRound, handler.SetRound)
		apiRoutes.POST(constants.RouteRoundNext, handler.NextRound)
		apiRoutes.POST(constants.RouteRoundPrevious, handler.PreviousRound)

		apiRoutes.GET(constants.RouteEffects, handler.ListEffects)
		apiRoutes.POST(constants.RouteEffects, handler.AddEffect)
		apiRoutes.DELETE(constants.RouteEffectByID, handler.RemoveEffect)

		apiRoutes.POST(constants.RouteTriggers, handler.AddTrigger)
		apiRoutes.POST(constants.RouteTriggerActivate, handler.ActivateTrigger)

		apiRoutes.GET(constants.RouteHistory, handler.GetHistory)
		apiRoutes.POST(constants.RouteHistory, handler.LogEvent)
		apiRoutes.DELETE(constants.RouteHistory, handler.ClearHistory)

		apiRoutes.GET(constants.RouteExport, handler.ExportEncounter)
		apiRoutes.GET(constants.RouteLive, handler.Live)
	}

	addr := cfg.ServerAddress
	logging.Info("Server started", logging.Fields{constants.LogFieldAddr: addr})
	if err := router.Run(addr); err != nil {
		logging.Fatal("Failed to start server", err, nil)
	}
}
