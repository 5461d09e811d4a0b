package cli

import (
	"fmt"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/lazypower/habits/internal/clock"
	"github.com/lazypower/habits/internal/commands"
	"github.com/lazypower/habits/internal/config"
	apperr "github.com/lazypower/habits/internal/errors"
	"github.com/lazypower/habits/internal/habits"
	"github.com/lazypower/habits/internal/logging"
	"github.com/lazypower/habits/internal/records"
	"github.com/lazypower/habits/internal/scoring"
	"github.com/lazypower/habits/internal/store"
)

var (
	configPath string
	dataDir    string
)

var rootCmd = &cobra.Command{
	Use:           "habits",
	Short:         "Habit tracker store and scoring engine",
	Long:          "Habits keeps a local SQLite profile of habits, daily point records and a decaying score, and serves it to the UI over a loopback command bridge.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <data dir>/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&dataDir, "data-dir", "", "data directory (default <user config dir>/habits)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(habitCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(migrateCmd)
}

// loadConfig resolves the data dir and config file from the persistent
// flags and returns the merged config.
func loadConfig() (config.Config, error) {
	dir := dataDir
	if dir == "" {
		var err error
		dir, err = store.DefaultDataDir()
		if err != nil {
			return config.Config{}, fmt.Errorf("resolve data dir: %w", err)
		}
	}

	// Variables already set in the environment win over the .env file.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	path := configPath
	if path == "" {
		path = filepath.Join(dir, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.OverrideFromEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	cfg.ApplyDataDir(dir)
	return cfg, nil
}

// app is the wired set of components behind the command surface.
type app struct {
	cfg      config.Config
	db       *store.DB
	log      *zap.Logger
	habits   *habits.Registry
	records  *records.Log
	engine   *scoring.Engine
	commands *commands.Dispatcher
	flush    func()
}

// openApp loads config, builds the logger and opens the database.
func openApp() (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	log, flush, err := logging.New(logging.Config{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return nil, err
	}

	dbPath, err := cfg.DBPath()
	if err != nil {
		flush()
		return nil, fmt.Errorf("resolve db path: %w", err)
	}
	db, err := store.Open(dbPath)
	if err != nil {
		if apperr.IsFatal(err) {
			log.Error("database is corrupt, refusing to start", zap.String("path", dbPath), zap.Error(err))
		} else {
			log.Error("open database", zap.String("path", dbPath), zap.Error(err))
		}
		flush()
		return nil, fmt.Errorf("open database: %w", err)
	}

	recs := records.New(db, log)
	reg := habits.New(db, log)
	eng := scoring.New(db, clock.System{}, recs, log)
	return &app{
		cfg:      cfg,
		db:       db,
		log:      log,
		habits:   reg,
		records:  recs,
		engine:   eng,
		commands: commands.New(reg, recs, eng, log),
		flush:    flush,
	}, nil
}

func (a *app) Close() {
	a.db.Close()
	a.flush()
}
