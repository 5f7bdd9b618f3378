package commands

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/lingoflow-ai/lingoflow/internal/config"
	"github.com/lingoflow-ai/lingoflow/internal/event"
	"github.com/lingoflow-ai/lingoflow/internal/history"
	"github.com/lingoflow-ai/lingoflow/internal/logging"
	"github.com/lingoflow-ai/lingoflow/internal/notify"
	"github.com/lingoflow-ai/lingoflow/internal/provider"
	"github.com/lingoflow-ai/lingoflow/internal/server"
	"github.com/lingoflow-ai/lingoflow/internal/settings"
	"github.com/lingoflow-ai/lingoflow/internal/translator"
)

var (
	servePort int
	serveDir  string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the LingoFlow HTTP server",
	Long: `Start LingoFlow as a server that exposes the translation API over
HTTP: streaming translation via SSE, model discovery, history, settings
and a global event feed.

This is what UI frontends connect to.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 4517, "Port to listen on")
	serveCmd.Flags().StringVar(&serveDir, "directory", "", "Working directory")
}

func runServe(cmd *cobra.Command, args []string) error {
	workDir, err := GetWorkDir(serveDir)
	if err != nil {
		return err
	}

	logging.Logger.Info().
		Str("version", Version).
		Str("workDir", workDir).
		Msg("starting LingoFlow server")

	paths := config.GetPaths()
	if err := paths.EnsurePaths(); err != nil {
		return err
	}

	appConfig, err := config.Load(workDir)
	if err != nil {
		return err
	}

	bus := event.NewBus()
	defer bus.Close()

	limit := appConfig.HistoryLimit
	if limit <= 0 {
		limit = history.DefaultLimit
	}
	store, err := history.Open(paths.HistoryPath(), limit)
	if err != nil {
		return err
	}
	defer store.Close()

	settingsStore, err := settings.Open(paths.SettingsPath(), bus)
	if err != nil {
		return err
	}
	if err := settingsStore.Watch(); err != nil {
		logging.Logger.Warn().Err(err).Msg("settings file watching disabled")
	}
	defer settingsStore.Close()

	registry := provider.DefaultRegistry(appConfig)
	notifier := notify.New(bus)
	svc := translator.New(registry, bus, store, notifier, appConfig)

	serverConfig := server.DefaultConfig()
	serverConfig.Port = servePort

	srv := server.New(serverConfig, appConfig, svc, store, settingsStore, bus)

	go func() {
		logging.Logger.Info().Int("port", servePort).Msg("server listening")
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logging.Logger.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logging.Logger.Info().Msg("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logging.Logger.Error().Err(err).Msg("server shutdown error")
	}

	logging.Logger.Info().Msg("server stopped")
	return nil
}
