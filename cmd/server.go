package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/kisanmitra/kisanmitra/internal/livechat"
	"github.com/kisanmitra/kisanmitra/internal/scheduler"
	"github.com/kisanmitra/kisanmitra/internal/server"
)

var serverPort int

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the kisanmitra HTTP server",
	Long:  `Starts the assistant server with the chat REST API, WebSocket live chat, market price API, and background session maintenance.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if serverPort != 0 {
			cfg.Port = serverPort
		}

		engine, prices, database, err := buildEngine(cfg)
		if err != nil {
			return err
		}
		defer database.Close()

		if _, err := prices.EnsureSeeded(cmd.Context()); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: could not seed market prices: %v\n", err)
		}

		srv := server.New(server.Config{
			Port:     cfg.Port,
			DataDir:  cfg.DataDir,
			AllowAll: cfg.CORSAllowAll,
		}, database)

		// Register all feature routes.
		r := srv.Router()
		engine.RegisterRoutes(r)
		prices.RegisterRoutes(r)
		livechat.NewHandler(engine).RegisterRoutes(r)

		// Graceful shutdown.
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		// Background maintenance.
		sched := scheduler.New(scheduler.Config{
			CleanupInterval: time.Duration(cfg.Scheduler.CleanupIntervalMinutes) * time.Minute,
			MarketInterval:  time.Duration(cfg.Scheduler.MarketIntervalMinutes) * time.Minute,
			MaxIdleDays:     cfg.Scheduler.MaxIdleDays,
		}, engine.Manager(), prices)
		go sched.Run(ctx)

		go func() {
			<-ctx.Done()
			fmt.Fprintln(os.Stderr, "\nShutting down server...")
			srv.Shutdown(context.Background())
		}()

		fmt.Fprintf(os.Stderr, "kisanmitra server v%s starting on port %d\n", Version, cfg.Port)
		fmt.Fprintf(os.Stderr, "  Database: %s\n", database.Path())

		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	},
}

func init() {
	serverCmd.Flags().IntVar(&serverPort, "port", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serverCmd)
}
