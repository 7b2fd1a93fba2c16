package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/swapdex/swapd/internal/config"
	"github.com/swapdex/swapd/internal/core/application/orderbook"
	"github.com/swapdex/swapd/internal/core/application/pubsub"
	"github.com/swapdex/swapd/internal/core/application/relay"
	"github.com/swapdex/swapd/internal/core/application/swap"
	"github.com/swapdex/swapd/internal/core/ports"
	"github.com/swapdex/swapd/internal/infrastructure/assets"
	webhookpubsub "github.com/swapdex/swapd/internal/infrastructure/pubsub"
	dbbadger "github.com/swapdex/swapd/internal/infrastructure/storage/db/badger"
	"github.com/swapdex/swapd/internal/infrastructure/storage/db/inmemory"
	httpinterface "github.com/swapdex/swapd/internal/interfaces/http"
	"github.com/swapdex/swapd/pkg/stats"
)

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	datadir := config.GetDatadir()
	dbType := config.GetString(config.DBTypeKey)
	dbDir := filepath.Join(datadir, config.DbLocation)
	profilerEnabled := config.GetBool(config.EnableProfilerKey)
	statsInterval := time.Duration(config.GetInt(config.StatsIntervalKey)) * time.Second

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if profilerEnabled {
		stats.EnableMemoryStatistics(
			ctx, statsInterval, filepath.Join(datadir, config.ProfilerLocation),
		)
	}

	assetRegistry, err := assets.NewStaticRegistry(config.GetSupportedAssets())
	if err != nil {
		log.WithError(err).Fatal("failed to load supported assets")
	}

	repoManager, webhookDir, err := newRepoManager(dbType, dbDir)
	if err != nil {
		log.WithError(err).Fatal("failed to open db")
	}

	webhookSvc, err := webhookpubsub.NewService(
		webhookDir, log.StandardLogger(), config.GetInt(config.WebhookRateLimitKey),
	)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize webhooks")
	}
	pubsubSvc, err := pubsub.NewService(webhookSvc)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize pubsub service")
	}

	relaySvc := relay.NewService()
	swapSvc, err := swap.NewService(relaySvc, repoManager, pubsubSvc, swap.Config{
		OpenTimeout:   config.GetDuration(config.OpenTimeoutKey),
		CommitTimeout: config.GetDuration(config.CommitTimeoutKey),
		EvictAfter:    config.GetDuration(config.EvictAfterKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize swap registry")
	}
	orderbookSvc, err := orderbook.NewService(
		assetRegistry, repoManager, swapSvc, pubsubSvc,
	)
	if err != nil {
		log.WithError(err).Fatal("failed to initialize order book")
	}

	svc, err := httpinterface.NewService(httpinterface.ServiceOpts{
		Port:         config.GetInt(config.HTTPListeningPortKey),
		AuthSecret:   config.GetString(config.AuthSecretKey),
		NoAuth:       config.GetBool(config.NoAuthKey),
		OrderbookSvc: orderbookSvc,
		SwapSvc:      swapSvc,
		RelaySvc:     relaySvc,
		PubSubSvc:    pubsubSvc,
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize http interface")
	}

	if err := svc.Start(); err != nil {
		log.WithError(err).Fatal("failed to start http interface")
	}
	if config.GetBool(config.NoAuthKey) {
		log.Warn("auth is disabled, callers are identified by the " +
			httpinterface.UidHeader + " header")
	}
	log.Infof("swapd started with %s db in %s", dbType, datadir)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT, os.Interrupt)
	<-sigChan

	log.Info("shutting down daemon")
	svc.Stop()
	relaySvc.Close()
	swapSvc.Close()
	pubsubSvc.Close()
	repoManager.Close()
	cancel()
	log.Info("exiting")
}

// newRepoManager returns the repo manager for the given db type, along with
// the directory where webhooks are persisted, empty for in-memory storage.
func newRepoManager(dbType, dbDir string) (ports.RepoManager, string, error) {
	if dbType == config.DBInMemory {
		return inmemory.NewRepoManager(), "", nil
	}
	repoManager, err := dbbadger.NewRepoManager(dbDir, log.StandardLogger())
	if err != nil {
		return nil, "", err
	}
	return repoManager, dbDir, nil
}
