package main

import (
	"context"
	"log"

	"github.com/kalougata/klgt-portal/config"
	"github.com/kalougata/klgt-portal/routes"
	"github.com/kalougata/klgt-portal/services"
	"github.com/kalougata/klgt-portal/storage"
	"github.com/kalougata/klgt-portal/utils"
)

func main() {
	cfg := config.Load()
	if err := cfg.RequireServerSecrets(); err != nil {
		log.Fatal(err)
	}

	if err := utils.InitLogger(cfg); err != nil {
		panic(err)
	}
	defer func() { _ = utils.Logger.Sync() }()

	slots, err := storage.Open(cfg)
	if err != nil {
		utils.Sugar.Fatalf("open slot storage: %v", err)
	}

	var tips services.TipsGenerator
	if cfg.GeminiAPIKey != "" {
		g, err := services.NewGeminiClient(context.Background(), services.GeminiOptions{
			APIKey:  cfg.GeminiAPIKey,
			Model:   cfg.GeminiModel,
			BaseURL: cfg.GeminiBaseURL,
		})
		if err != nil {
			utils.Sugar.Warnf("gemini client unavailable, coach tips will use the fallback text: %v", err)
		} else {
			tips = g
		}
	} else {
		utils.Sugar.Warn("GEMINI_API_KEY not set, coach tips will use the fallback text")
	}

	portal := services.NewPortal(slots, services.Options{
		CommunityTag:  cfg.CommunityTag,
		AdminPasscode: cfg.AdminPasscode,
		Tips:          tips,
		Logger:        utils.Logger,
	})

	r := routes.SetupRouter(cfg, portal, utils.NewMetrics())

	utils.Sugar.Infof("Starting server on port %s (storage=%s)", cfg.AppPort, cfg.StorageDriver)
	if err := utils.GraceServer(":"+cfg.AppPort, r); err != nil {
		utils.Sugar.Fatalf("server stopped with error: %v", err)
	}
}
