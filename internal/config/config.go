package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	defaultLocalPort      = ":8080"
	defaultChainName      = "Oraichain"
	defaultLCDAddr        = "https://lcd.orai.io"
	defaultSignerAddr     = "localhost:8090"
	defaultBech32Prefix   = "orai"
	defaultDatabaseName   = "daodash"
	defaultRequestTimeout = 10 * time.Second
	defaultViewTTL        = 30 * time.Minute
	defaultTxRatePerMin   = 6
)

func init() {
	viper.AutomaticEnv()
}

// GetPort returns port prepended with `:`
func GetPort() string {
	port := viper.GetString("PORT")
	if port == "" {
		return defaultLocalPort
	}
	if !strings.HasPrefix(port, ":") {
		port = ":" + port
	}
	return port
}

func GetChainName() string {
	return getString("CHAIN_NAME", defaultChainName)
}

// GetLCDAddr is the REST endpoint of the chain node used for queries.
func GetLCDAddr() string {
	return getString("LCD_ADDR", defaultLCDAddr)
}

// GetSignerAddr is the signing relay executing contract messages.
func GetSignerAddr() string {
	return getString("SIGNER_ADDR", defaultSignerAddr)
}

func GetBech32Prefix() string {
	return getString("BECH32_PREFIX", defaultBech32Prefix)
}

// GetDbConnectionURI returns empty when the transaction log is disabled.
func GetDbConnectionURI() string {
	return viper.GetString("DB_URI")
}

func GetDatabaseName() string {
	return getString("DB_NAME", defaultDatabaseName)
}

// GetJWTSecret returns the HS256 key session tokens are verified with.
// Empty means the claims are read without verification.
func GetJWTSecret() string {
	return viper.GetString("JWT_SECRET")
}

func GetRequestTimeout() time.Duration {
	return getDuration("REQ_TIMEOUT", defaultRequestTimeout)
}

// GetViewTTL is how long an untouched mounted view is kept.
func GetViewTTL() time.Duration {
	return getDuration("VIEW_TTL", defaultViewTTL)
}

// GetTxRatePerMin is the number of transactions an account may submit per minute.
func GetTxRatePerMin() int {
	rate := viper.GetInt("TX_RATE_PER_MIN")
	if rate <= 0 {
		return defaultTxRatePerMin
	}
	return rate
}

// GetAllowedOrigins reads the comma separated CORS_ORIGINS. Empty allows any origin.
func GetAllowedOrigins() []string {
	var origins []string
	for _, origin := range strings.Split(viper.GetString("CORS_ORIGINS"), ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

func GetNetworksFile() string {
	return viper.GetString("NETWORKS_FILE")
}

func getString(key, fallback string) string {
	value := viper.GetString(key)
	if value == "" {
		return fallback
	}
	return value
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value := viper.GetDuration(key)
	if value <= 0 {
		return fallback
	}
	return value
}
