package main

import (
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/visibility-cli/internal/config"
	"github.com/sells-group/visibility-cli/internal/monitoring"
	"github.com/sells-group/visibility-cli/internal/server"
)

var (
	servePort          int
	serveSweepInterval time.Duration
	serveTimeout       time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the lead capture and report server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if servePort > 0 {
			cfg.Server.Port = servePort
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		env, err := initAnalysis(ctx, config.ModeServe)
		if err != nil {
			return err
		}
		defer env.Close()

		go monitoring.NewSweeper(env.Store, serveSweepInterval).Run(ctx)

		srv := server.New(env.Service, server.Options{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			AnalyzeTimeout: serveTimeout,
		})

		zap.L().Info("starting server",
			zap.Int("port", cfg.Server.Port),
			zap.String("store", cfg.Store.Driver),
		)
		return srv.Run(ctx, cfg.Server.Port)
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "listen port (overrides server.port)")
	serveCmd.Flags().DurationVar(&serveSweepInterval, "sweep-interval", 5*time.Minute, "how often expired results are purged")
	serveCmd.Flags().DurationVar(&serveTimeout, "analyze-timeout", 60*time.Second, "upper bound for one analysis request")
	rootCmd.AddCommand(serveCmd)
}
