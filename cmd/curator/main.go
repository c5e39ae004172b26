// Package main provides curator, the operator CLI of the record-store
// admin console. It drives the console client: collections, records, users
// and settings, with the same cache and optimistic-mutation behavior the
// graphical console uses.
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/wanjohi/go-curator/core/cache"
	"github.com/wanjohi/go-curator/core/console"
	"github.com/wanjohi/go-curator/rest"
	"github.com/wanjohi/go-curator/sqlite"
)

var (
	// configFile is set by the --config flag.
	configFile string

	// client is the global console client, initialized on startup.
	client *console.Client

	// store holds the persisted cache when cache_path is configured.
	store cache.Store
)

var rootCmd = &cobra.Command{
	Use:   "curator",
	Short: "Curator is an operator console for a record-store backend",
	Long: `Curator manages collections, records, users and settings of a
record-store backend from the terminal. Reads go through a TTL cache;
writes apply optimistically and roll back if the backend rejects them.`,
	PersistentPreRunE:  initClient,
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error { return closeClient() },
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default: .curator.yaml or ~/.curator/config.yaml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(collectionsCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(usersCmd)
	rootCmd.AddCommand(settingsCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("curator v0.1.0")
	},
}

// initClient loads config and wires the console client over the REST
// backend.
func initClient(cmd *cobra.Command, args []string) error {
	if cmd.Name() == "version" {
		return nil
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := zap.NewNop()
	if cfg.GetBool(cfgKeyVerbose) {
		logger, err = zap.NewDevelopment()
		if err != nil {
			return fmt.Errorf("build logger: %w", err)
		}
	}

	backend := rest.New(cfg.GetString(cfgKeyAPIURL),
		rest.WithLogger(logger),
		rest.WithTokenProvider(func() string { return cfg.GetString(cfgKeyToken) }),
	)

	opts := []console.Option{console.WithLogger(logger)}
	if ttl := cfg.GetDuration(cfgKeyCacheTTL); ttl > 0 {
		opts = append(opts, console.WithTTL(ttl))
	}
	if path := cfg.GetString(cfgKeyCachePath); path != "" {
		store, err = sqlite.NewStore(path, logger)
		if err != nil {
			return fmt.Errorf("open cache store: %w", err)
		}
		opts = append(opts, console.WithStore(store))
	}

	client, err = console.New(backend, opts...)
	if err != nil {
		return fmt.Errorf("build console client: %w", err)
	}
	return nil
}

// closeClient releases the persisted cache, if any.
func closeClient() error {
	if store != nil {
		return store.Close()
	}
	return nil
}

// printJSON renders any command result as indented JSON on stdout.
func printJSON(v any) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	fmt.Println(string(out))
	return nil
}

// commandTimeout bounds every CLI-triggered operation.
const commandTimeout = 60 * time.Second
