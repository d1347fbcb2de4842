package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cppla/bbscontroller/config"
	"github.com/cppla/bbscontroller/dispatch"
	"github.com/cppla/bbscontroller/routes"
	"github.com/cppla/bbscontroller/service"
	"github.com/cppla/bbscontroller/store"
	"github.com/cppla/bbscontroller/utils"
)

var (
	verbosity int
	clearDB   bool
	migrateDB bool
	tokenTTL  time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "bbscontroller",
	Short:         "Forum content controller serving users, categories, threads and comments over RPC",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(loadConfig())
	},
}

var tokenCmd = &cobra.Command{
	Use:   "token <service>",
	Short: "Mint a service token for the RPC endpoints",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		token, err := utils.GenerateToken(cfg.JWTSecret, args[0], tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "log more; -v for debug logs, -vv adds SQL statements")
	rootCmd.Flags().BoolVarP(&clearDB, "clear", "c", false, "delete all forum content before serving")
	rootCmd.Flags().BoolVarP(&migrateDB, "migrate", "m", false, "create or update the schema before serving")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 0, "token lifetime, 0 for no expiry")
	rootCmd.AddCommand(tokenCmd)
}

// loadConfig reads the configuration and applies the command line overrides.
func loadConfig() config.AppConfig {
	cfg := config.Load()
	if verbosity >= 1 {
		cfg.LogLevel = "debug"
	}
	if verbosity >= 2 {
		cfg.LogSQL = true
	}
	cfg.ClearOnStartup = cfg.ClearOnStartup || clearDB
	cfg.MigrateOnStartup = cfg.MigrateOnStartup || migrateDB
	config.Set(cfg)
	return cfg
}

func serve(cfg config.AppConfig) error {
	// Initialize logger early
	if err := utils.InitLogger(cfg); err != nil {
		return err
	}
	defer func() { _ = utils.Logger.Sync() }()

	db := config.InitDatabase(cfg)

	if cfg.MigrateOnStartup {
		utils.Sugar.Info("running migrations")
		if err := config.Migrate(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	if cfg.ClearOnStartup {
		utils.Sugar.Warn("clearing all forum content")
		if err := store.New(db).ClearAll(); err != nil {
			return fmt.Errorf("clear: %w", err)
		}
	}

	d := dispatch.New(db, dispatch.Options{
		Workers:  cfg.WorkerCount,
		MaxConns: cfg.DBMaxOpenConns,
		Timeout:  time.Duration(cfg.RequestTimeoutSec) * time.Second,
	})
	defer d.Close()

	r := routes.SetupRouter(cfg, service.New(d), utils.GetRedis())

	utils.Sugar.Infof("Starting server on %s (graceful)", cfg.BindAddress)
	if err := utils.GraceServer(cfg.BindAddress, r); err != nil {
		utils.Sugar.Errorf("server stopped with error: %v", err)
		return err
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
