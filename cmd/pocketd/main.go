package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/pocket-wallet/pocketd/internal/config"
	"github.com/pocket-wallet/pocketd/internal/core/application"
	"github.com/pocket-wallet/pocketd/internal/core/domain"
	"github.com/pocket-wallet/pocketd/pkg/crawler"
	"github.com/pocket-wallet/pocketd/pkg/explorer/esplora"
	boltsecurestore "github.com/pocket-wallet/pocketd/pkg/securestore/bolt"
	"github.com/pocket-wallet/pocketd/pkg/stats"
)

const storeFilename = "pocket.db"

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("invalid config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	net, err := config.GetNetwork()
	if err != nil {
		log.WithError(err).Fatal("invalid network")
	}

	store, err := boltsecurestore.NewSecureStorage(
		filepath.Join(config.GetDatadir(), config.DbLocation), storeFilename,
	)
	if err != nil {
		log.WithError(err).Fatal("error while opening secure store")
	}
	defer store.Close()

	password, err := readUnlockPassword()
	if err != nil {
		log.WithError(err).Fatal("error while reading store password")
	}
	if err := store.CreateUnlock(&password); err != nil {
		log.WithError(err).Fatal("error while unlocking secure store")
	}

	explorerSvc, err := esplora.NewService(
		config.GetString(config.ExplorerEndpointKey),
	)
	if err != nil {
		log.WithError(err).Fatal("error while connecting to explorer")
	}

	custodian := application.NewKeyCustodian(store, net)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if state := custodian.LoadOrCreate(ctx); state.Status != domain.KeyStatusPresent {
		log.WithError(state.Err).Fatal("error while loading spending key")
	}

	walletSvc := application.NewWalletService(custodian, explorerSvc, net)

	address, err := walletSvc.SpendingAddress()
	if err != nil {
		log.WithError(err).Fatal("error while deriving spending address")
	}
	log.Infof("wallet address: %s", address)

	if err := walletSvc.UpdateBalance(ctx); err != nil {
		log.WithError(err).Warn("initial balance refresh failed")
	}

	crawlerSvc := crawler.NewService(crawler.Opts{
		ExplorerSvc: explorerSvc,
		IntervalInMilliseconds: config.GetInt(
			config.BalanceRefreshIntervalKey,
		) * 1000,
		ErrorHandler: func(err error) {
			log.WithError(err).Warn("address observation failed")
		},
		ExplorerLimit:      config.GetInt(config.CrawlLimitKey),
		ExplorerTokenBurst: config.GetInt(config.CrawlTokenBurstKey),
	})
	go crawlerSvc.Start()
	defer crawlerSvc.Stop()
	crawlerSvc.AddObservable(&crawler.AddressObservable{Address: address})

	go handleCrawlerEvents(ctx, crawlerSvc, walletSvc)

	if statsInterval := config.GetInt(config.StatsIntervalKey); statsInterval > 0 {
		stats.EnableMemoryStatistics(
			ctx, time.Duration(statsInterval)*time.Second, config.GetDatadir(),
		)
	}

	log.Info("daemon started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down")
}

func handleCrawlerEvents(
	ctx context.Context,
	crawlerSvc crawler.Service,
	walletSvc application.WalletService,
) {
	for event := range crawlerSvc.GetEventChannel() {
		switch event.Type() {
		case crawler.QuitSignal:
			return
		case crawler.AddressActivity:
			if err := walletSvc.UpdateBalance(ctx); err != nil {
				continue
			}
			if balance := walletSvc.Balance(); balance != nil {
				log.Debugf("balance: %d sats", *balance)
			}
		}
	}
}

func readUnlockPassword() ([]byte, error) {
	passwordFile := config.GetString(config.StoreUnlockPasswordFileKey)
	if len(passwordFile) <= 0 {
		// No password file configured, derive the store key from an empty
		// password.
		return []byte{}, nil
	}
	content, err := os.ReadFile(passwordFile)
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimSpace(string(content))), nil
}