package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/go-nmt-prep/internal/server"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var storeName string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP vectorization service",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			vec, err := loadVectorizer(cfg, storeName)
			if err != nil {
				return err
			}

			h := server.NewHandler(vec,
				server.WithMaxTextBytes(cfg.Server.MaxTextBytes),
			)

			srv := server.New(cfg.Server.ListenAddr, h).
				WithShutdownTimeout(time.Duration(cfg.Server.ShutdownTimeout) * time.Second)

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&storeName, "store-name", "", "Load the snapshot with this name from the SQLite store")

	return cmd
}
