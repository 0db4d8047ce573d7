package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/example/go-nmt-prep/internal/config"
	"github.com/example/go-nmt-prep/internal/server"
	"github.com/example/go-nmt-prep/internal/store"
	"github.com/example/go-nmt-prep/internal/vectorizer"
	"github.com/spf13/cobra"
)

var (
	cfgFile   string
	activeCfg config.Config
)

func NewRootCmd() *cobra.Command {
	defaults := config.DefaultConfig()

	cmd := &cobra.Command{
		Use:   "nmtprep",
		Short: "Build and serve translation-model vectorizers",
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			loaded, err := config.Load(config.LoadOptions{
				Cmd:        cmd,
				ConfigFile: cfgFile,
				Defaults:   defaults,
			})
			if err != nil {
				return err
			}
			activeCfg = loaded
			setupLogger(loaded.LogLevel)
			return nil
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Optional config file (yaml|toml|json)")
	config.RegisterFlags(cmd.PersistentFlags(), defaults)

	cmd.AddCommand(newBuildCmd())
	cmd.AddCommand(newEncodeCmd())
	cmd.AddCommand(newInspectCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// setupLogger configures the process-wide slog default logger.
func setupLogger(levelStr string) {
	lvl, err := server.ParseLogLevel(levelStr)
	if err != nil {
		lvl = slog.LevelInfo
	}
	h := slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: lvl})
	slog.SetDefault(slog.New(h))
}

func requireConfig() (config.Config, error) {
	if activeCfg.Paths.ArtifactPath == "" {
		return config.Config{}, fmt.Errorf("configuration not loaded")
	}
	return activeCfg, nil
}

// loadVectorizer restores a vectorizer from the SQLite store when a
// snapshot name is given, otherwise from the JSON artifact file.
func loadVectorizer(cfg config.Config, storeName string) (*vectorizer.Vectorizer, error) {
	snap, err := loadSnapshot(cfg, storeName)
	if err != nil {
		return nil, err
	}

	return vectorizer.FromSnapshot(snap)
}

func loadSnapshot(cfg config.Config, storeName string) (vectorizer.Snapshot, error) {
	if storeName == "" {
		return store.LoadFile(cfg.Paths.ArtifactPath)
	}

	s, err := store.Open(cfg.Paths.StorePath)
	if err != nil {
		return vectorizer.Snapshot{}, err
	}
	defer func() { _ = s.Close() }()

	snap, err := s.Get(storeName)
	if err != nil {
		if errors.Is(err, store.ErrSnapshotNotFound) {
			return vectorizer.Snapshot{}, fmt.Errorf("no snapshot named %q in %s", storeName, cfg.Paths.StorePath)
		}

		return vectorizer.Snapshot{}, err
	}

	return snap, nil
}
