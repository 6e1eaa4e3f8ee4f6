package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"visitbook/internal/bulkimport"
	"visitbook/internal/config"
	"visitbook/internal/logging"
	"visitbook/internal/mediastore/local"
	"visitbook/internal/meeting"
	"visitbook/internal/refstore"
	"visitbook/internal/report"
	"visitbook/internal/service"
	"visitbook/internal/suggest"
	"visitbook/internal/web"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the visitbook API server",
	Long: `Start the HTTP server. Configuration is read from the environment
(and a .env file when present): LISTEN_ADDR, REDIS_ADDR, REDIS_PASSWORD,
REF_DB_PATH, MEDIA_PATH, SUGGEST_WINDOW, LOG_LEVEL, LOG_FORMAT, LOG_FILE.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := config.Load()

	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFormat, cfg.LogFile)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer cleanup()

	ref, err := refstore.Open(cfg.RefDBPath)
	if err != nil {
		return fmt.Errorf("failed to open reference store: %w", err)
	}
	defer func() { _ = ref.Close() }()

	if n, err := ref.Count(cmd.Context()); err == nil {
		logger.Info("reference store ready", "path", cfg.RefDBPath, "buildings", n)
	}

	repo := meeting.NewRepository(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	defer func() { _ = repo.Close() }()

	pingCtx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
	defer cancel()
	if err := repo.Ping(pingCtx); err != nil {
		return fmt.Errorf("failed to reach redis at %s: %w", cfg.RedisAddr, err)
	}

	media, err := local.NewMediaStore(cfg.MediaPath)
	if err != nil {
		return fmt.Errorf("failed to open media store: %w", err)
	}

	renderer, err := report.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to set up report renderer: %w", err)
	}

	matcher := suggest.NewMatcher(ref, cfg.SuggestWindow, logger)
	defer matcher.Close()

	svc := service.NewMeetingService(repo, media, renderer, logger)
	srv := web.NewServer(svc, matcher, bulkimport.NewImporter(ref), cfg.SuggestWindow, logger)

	return srv.ListenAndServe(cfg.ListenAddr)
}
