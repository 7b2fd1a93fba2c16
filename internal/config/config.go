package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"github.com/swapdex/swapd/internal/infrastructure/assets"
)

const (
	// HTTPListeningPortKey is the port where the HTTP interface will listen on
	HTTPListeningPortKey = "HTTP_LISTENING_PORT"
	// DatadirKey is the local data directory to store the internal state of daemon
	DatadirKey = "DATADIR"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch database type between those supported
	DBTypeKey = "DB_TYPE"
	// OpenTimeoutKey is the max duration a swap can stay in CREATED or OPENING
	// status before being errored
	OpenTimeoutKey = "OPEN_TIMEOUT"
	// CommitTimeoutKey is the max duration a swap can stay in OPENED or
	// COMMITTING status before being errored
	CommitTimeoutKey = "COMMIT_TIMEOUT"
	// EvictAfterKey is the duration a terminated swap is kept in memory before
	// being archived
	EvictAfterKey = "EVICT_AFTER"
	// SupportedAssetsKey is the comma separated list of ASSET:network pairs
	// that orders can exchange
	SupportedAssetsKey = "SUPPORTED_ASSETS"
	// AuthSecretKey is the secret used to verify the HS256 tokens of the
	// parties and of the operator
	AuthSecretKey = "AUTH_SECRET"
	// NoAuthKey is used to start the daemon without token authentication. The
	// caller is then identified by the X-Swapd-Uid header
	NoAuthKey = "NO_AUTH"
	// EnableProfilerKey enables profiler that can be used to investigate performance issues
	EnableProfilerKey = "ENABLE_PROFILER"
	// StatsIntervalKey defines interval for printing basic swapd statistics
	StatsIntervalKey = "STATS_INTERVAL"
	// WebhookRateLimitKey is the max number of webhook requests per second,
	// unlimited if not positive
	WebhookRateLimitKey = "WEBHOOK_RATE_LIMIT"

	DbLocation       = "db"
	ProfilerLocation = "stats"

	DBBadger   = "badger"
	DBInMemory = "inmemory"

	minAuthSecretLen = 32
)

var (
	vip            *viper.Viper
	defaultDatadir = btcutil.AppDataDir("swapd", false)

	defaultSupportedAssets = []string{
		"ETH:goerli", "USDC:sepolia", "BTC:lightning", "ETH:sepolia",
	}
)

// InitConfig loads the .env file of the working directory, if any, and reads
// the config from environment variables prefixed with SWAPD_.
func InitConfig() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.WithError(err).Warn("config: failed to load .env file")
	}

	vip = viper.New()
	vip.SetEnvPrefix("SWAPD")
	vip.AutomaticEnv()

	vip.SetDefault(HTTPListeningPortKey, 9090)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, DBBadger)
	vip.SetDefault(OpenTimeoutKey, 60*time.Second)
	vip.SetDefault(CommitTimeoutKey, 600*time.Second)
	vip.SetDefault(EvictAfterKey, 30*time.Second)
	vip.SetDefault(SupportedAssetsKey, strings.Join(defaultSupportedAssets, ","))
	vip.SetDefault(NoAuthKey, false)
	vip.SetDefault(EnableProfilerKey, false)
	vip.SetDefault(StatsIntervalKey, 600)
	vip.SetDefault(WebhookRateLimitKey, 10)

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

// GetSupportedAssets returns the list of ASSET:network pairs. Both commas and
// spaces are accepted as separators.
func GetSupportedAssets() []string {
	fields := strings.FieldsFunc(GetString(SupportedAssetsKey), func(r rune) bool {
		return r == ',' || r == ' '
	})
	return fields
}

func validate() error {
	datadir := GetString(DatadirKey)
	if len(datadir) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	if port := GetInt(HTTPListeningPortKey); port <= 0 || port > 65535 {
		return fmt.Errorf("%s must be a valid port number", HTTPListeningPortKey)
	}

	dbType := GetString(DBTypeKey)
	if dbType != DBBadger && dbType != DBInMemory {
		return fmt.Errorf(
			"%s must be either %s or %s", DBTypeKey, DBBadger, DBInMemory,
		)
	}

	for _, key := range []string{OpenTimeoutKey, CommitTimeoutKey} {
		if GetDuration(key) <= 0 {
			return fmt.Errorf("%s must be a positive duration", key)
		}
	}
	if GetDuration(EvictAfterKey) < 0 {
		return fmt.Errorf("%s must not be negative", EvictAfterKey)
	}

	supportedAssets := GetSupportedAssets()
	if len(supportedAssets) <= 0 {
		return fmt.Errorf("missing supported assets")
	}
	for _, pair := range supportedAssets {
		if _, err := assets.ParseAsset(pair); err != nil {
			return err
		}
	}

	if !GetBool(NoAuthKey) && len(GetString(AuthSecretKey)) < minAuthSecretLen {
		return fmt.Errorf(
			"%s must be at least %d characters long, or set %s to disable auth",
			AuthSecretKey, minAuthSecretLen, NoAuthKey,
		)
	}

	return nil
}

func initDatadir() error {
	datadir := GetDatadir()
	if GetString(DBTypeKey) == DBBadger {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, DbLocation)); err != nil {
			return err
		}
	}

	profilerEnabled := GetBool(EnableProfilerKey)
	if profilerEnabled {
		if err := makeDirectoryIfNotExists(filepath.Join(datadir, ProfilerLocation)); err != nil {
			return err
		}
	}
	return nil
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
