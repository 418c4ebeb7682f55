// Command walletstory serves the wallet personality API. It fetches a
// wallet's history from Etherscan, derives statistics and achievement
// badges, and asks an OpenAI-compatible model for the personality story.
//
// Usage:
//
//	walletstory --config config.yaml
//	walletstory --setup            (interactive configuration wizard)
//
// Required environment variables:
//
//	ETHERSCAN_API_KEY
//	LLM_API_KEY
package main

import (
	"context"
	"flag"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/walletstory/walletstory/config"
	"github.com/walletstory/walletstory/internal/clients"
	"github.com/walletstory/walletstory/internal/quota"
	"github.com/walletstory/walletstory/internal/resultcache"
	"github.com/walletstory/walletstory/internal/services/analyzer"
	"github.com/walletstory/walletstory/internal/services/pricer"
	"github.com/walletstory/walletstory/internal/setup"
	"github.com/walletstory/walletstory/internal/storage"
	"github.com/walletstory/walletstory/internal/web"
)

func main() {
	configPath := flag.String("config", "", "path to yaml config")
	runSetup := flag.Bool("setup", false, "run the interactive configuration wizard")
	flag.Parse()

	if *runSetup {
		path := *configPath
		if path == "" {
			path = "config.yaml"
		}
		if err := setup.RunTUI(path); err != nil {
			log.Fatal(err)
		}
		return
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	// the quota tracker and result cache degrade gracefully without
	// persistence, so a broken storage dir only costs durability
	var store storage.Store
	walStore, err := storage.NewWAL(cfg.StorageDir)
	if err != nil {
		logger.Warn("persistent store unavailable, falling back to memory", zap.Error(err))
		store = storage.NewMemory()
	} else {
		store = walStore
		defer walStore.Close()
	}

	tracker := quota.NewTracker(store, cfg.QuotaPerDay, logger)
	cache := resultcache.New(store, cfg.CacheTTL, logger)

	etherscan := clients.NewEtherscanClient(cfg.EtherscanURL, cfg.EtherscanKey, logger)
	narrative := clients.NewOpenAICompatibleClient(cfg.LLMURL, cfg.LLMKey, cfg.LLMModel)

	engine := analyzer.New(etherscan, narrative, cache, logger,
		analyzer.WithPricer(pricer.NewBinancePricer()))

	server := web.NewServer(cfg.Listen, engine, tracker, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("starting wallet story server", zap.String("listen", cfg.Listen))
	if err := server.Start(ctx); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
