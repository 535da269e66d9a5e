package commands

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/yeremiapane/restaurant-reservation/database"
	"github.com/yeremiapane/restaurant-reservation/hub"
	"github.com/yeremiapane/restaurant-reservation/router"
	"github.com/yeremiapane/restaurant-reservation/utils"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe(cmd.Context())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(parent context.Context) error {
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(db)

	if err := database.Migrate(db); err != nil {
		return err
	}

	redisClient := connectRedis(ctx)
	if redisClient != nil {
		defer redisClient.Close()
	}

	floor := hub.New(redisClient)
	defer floor.Close()
	go func() {
		if err := floor.Run(ctx); err != nil {
			utils.ErrorLogger.WithError(err).Error("floor relay stopped")
		}
	}()

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router.SetupRouter(db, cfg, floor),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		utils.InfoLogger.Printf("Listening on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	utils.InfoLogger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	utils.InfoLogger.Info("server stopped")
	return nil
}

// connectRedis returns nil when REDIS_URL is unset or unreachable; the hub
// then delivers to local clients only.
func connectRedis(ctx context.Context) *redis.Client {
	if cfg.RedisURL == "" {
		return nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		utils.ErrorLogger.WithError(err).Warn("invalid REDIS_URL, floor events stay local")
		return nil
	}

	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		utils.ErrorLogger.WithError(err).Warn("redis unreachable, floor events stay local")
		client.Close()
		return nil
	}
	utils.InfoLogger.WithField("addr", opts.Addr).Info("connected to redis")
	return client
}
