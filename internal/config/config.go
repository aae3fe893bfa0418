package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"

	"github.com/spf13/viper"
)

const (
	// DatadirKey is the local data directory to store the internal state of the daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// NetworkKey is the Bitcoin network to operate on, either mainnet, testnet or regtest
	NetworkKey = "NETWORK"
	// ExplorerEndpointKey is the base URL of the Esplora HTTP API used to source unspents and broadcast transactions
	ExplorerEndpointKey = "EXPLORER_ENDPOINT"
	// BalanceRefreshIntervalKey is the duration in seconds between periodic balance refreshes
	BalanceRefreshIntervalKey = "BALANCE_REFRESH_INTERVAL"
	// CrawlLimitKey is the number of requests per second the crawler is allowed to send to the explorer
	CrawlLimitKey = "CRAWL_LIMIT"
	// CrawlTokenBurstKey is the number of requests the crawler can burst above the rate limit
	CrawlTokenBurstKey = "CRAWL_TOKEN_BURST"
	// StatsIntervalKey defines the interval in seconds for printing basic
	// memory statistics, zero disables them
	StatsIntervalKey = "STATS_INTERVAL"
	// StoreUnlockPasswordFileKey defines full path to a file that contains the
	// password for unlocking the secure store, if provided the store will be
	// unlocked automatically
	StoreUnlockPasswordFileKey = "STORE_UNLOCK_PASSWORD_FILE"

	DbLocation = "db"

	mainnetNetwork = "mainnet"
	testnetNetwork = "testnet"
	regtestNetwork = "regtest"
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("pocketd", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("POCKET")
	vip.AutomaticEnv()

	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(NetworkKey, mainnetNetwork)
	vip.SetDefault(ExplorerEndpointKey, "https://blockstream.info/api")
	vip.SetDefault(BalanceRefreshIntervalKey, 60)
	vip.SetDefault(CrawlLimitKey, 10)
	vip.SetDefault(CrawlTokenBurstKey, 1)
	vip.SetDefault(StatsIntervalKey, 0)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetDuration(key string) time.Duration {
	return vip.GetDuration(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

// GetNetwork maps the configured network name to its chain parameters.
func GetNetwork() (*chaincfg.Params, error) {
	switch network := GetString(NetworkKey); network {
	case mainnetNetwork:
		return &chaincfg.MainNetParams, nil
	case testnetNetwork:
		return &chaincfg.TestNet3Params, nil
	case regtestNetwork:
		return &chaincfg.RegressionNetParams, nil
	default:
		return nil, fmt.Errorf("unknown network: %s", network)
	}
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if _, err := GetNetwork(); err != nil {
		return err
	}

	if len(GetString(ExplorerEndpointKey)) <= 0 {
		return fmt.Errorf("missing explorer endpoint")
	}

	if interval := GetInt(BalanceRefreshIntervalKey); interval <= 0 {
		return fmt.Errorf(
			"%s must be a positive number of seconds", BalanceRefreshIntervalKey,
		)
	}

	return nil
}

func initDatadir() error {
	return makeDirectoryIfNotExists(filepath.Join(GetDatadir(), DbLocation))
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
