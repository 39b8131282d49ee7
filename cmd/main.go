package main

import (
	"context"
	"dao-dashboard/internal/app"
	"dao-dashboard/internal/chain"
	"dao-dashboard/internal/config"
	"dao-dashboard/internal/metrics"
	"dao-dashboard/internal/notify"
	"dao-dashboard/internal/ports/http"
	"dao-dashboard/internal/repository/mongodb"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const shutdownTimeout = 10 * time.Second

var (
	envFile     string
	networkName string
	verbose     bool
)

var rootCmd = &cobra.Command{
	Use:   "daodash",
	Short: "DAO governance and staking dashboard backend",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if envFile == "" {
			return nil
		}
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load %s: %w", envFile, err)
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "file with environment variables to load")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.AddCommand(newServeCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the dashboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := getLogger(verbose)
			if err != nil {
				log.Fatalln("setting up the logger failed: ", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return serve(ctx, logger)
		},
	}
	cmd.Flags().StringVar(&networkName, "network", "", "network profile of the networks file (its default when empty)")
	return cmd
}

func serve(ctx context.Context, logger *zap.Logger) error {
	logger.Info("application started")

	network, err := loadNetwork(logger)
	if err != nil {
		return err
	}
	if network.LCDAddr == "" {
		return errors.New("no LCD endpoint configured, set LCD_ADDR or a networks file")
	}
	logger.Info("network", zap.String("chain", network.ChainName), zap.String("lcd", network.LCDAddr), zap.String("signer", network.SignerAddr))

	collector := metrics.NewCollector()
	timeout := config.GetRequestTimeout()
	queries := chain.NewQueryClient(logger, network.LCDAddr, timeout).WithObserver(collector)
	signer := chain.NewSigningClient(logger, network.SignerAddr, timeout).WithObserver(collector)

	hub := notify.NewHub(logger)
	deps := app.Deps{
		Provider:     chain.NewProvider(network.ChainName, queries, signer),
		Bech32Prefix: network.Bech32Prefix,
		Events:       hub,
		Metrics:      collector,
		ViewTTL:      config.GetViewTTL(),
	}

	if uri := config.GetDbConnectionURI(); uri != "" {
		repo, err := mongodb.NewConnection(ctx, logger, uri)
		if err != nil {
			return err
		}
		defer repo.Disconnect()
		deps.Recorder = repo
	} else {
		logger.Warn("DB_URI not set, the transaction log is disabled")
	}

	if config.GetJWTSecret() == "" {
		logger.Warn("JWT_SECRET not set, sessions are read-only and transactions are refused")
	}

	a := app.NewApp(logger, deps)
	ser := http.NewServer(logger, a, config.GetPort(), http.Options{
		JWTSecret:      config.GetJWTSecret(),
		TxRatePerMin:   config.GetTxRatePerMin(),
		RequestTimeout: timeout,
		AllowedOrigins: config.GetAllowedOrigins(),
		Metrics:        collector,
		Events:         hub,
	})

	errCh := make(chan error, 1)
	go func() {
		errCh <- ser.Run()
	}()

	select {
	case err = <-errCh:
		if err != nil {
			logger.Error("failed to run the server: " + err.Error())
		}
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err = ser.Shutdown(shutdownCtx); err != nil {
			logger.Error("failed to shut the server down: " + err.Error())
		}
	}

	a.Close()
	if stopErr := hub.Stop(); stopErr != nil {
		logger.Warn("closing the event streams: " + stopErr.Error())
	}

	logger.Info("application finished")
	return err
}

// loadNetwork picks the profile from the networks file when there is one;
// the environment fills what the profile leaves out.
func loadNetwork(logger *zap.Logger) (config.Network, error) {
	env := config.FromEnv()

	path := config.GetNetworksFile()
	if path == "" {
		return env, nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) && networkName == "" {
		logger.Debug("no networks file at " + path)
		return env, nil
	}

	network, err := config.LoadNetwork(path, networkName)
	if err != nil {
		return config.Network{}, err
	}
	return network.Merge(env), nil
}

func getLogger(verbose bool) (*zap.Logger, error) {
	options := []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(zap.FatalLevel),
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout(time.RFC3339)
	cfg.Development = true
	cfg.Level.SetLevel(zap.InfoLevel)
	if verbose {
		cfg.Level.SetLevel(zap.DebugLevel)
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.WithOptions(options...), nil
}
