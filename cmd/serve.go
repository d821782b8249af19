package cmd

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fmanzoor3/tiq-assistant/api"
	"github.com/fmanzoor3/tiq-assistant/config"
	"github.com/fmanzoor3/tiq-assistant/engine"
	"github.com/fmanzoor3/tiq-assistant/export"
	"github.com/fmanzoor3/tiq-assistant/outlook"
	"github.com/fmanzoor3/tiq-assistant/store/sqlite"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server with session reminders",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default from config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, store, log, err := bootstrap()
	if err != nil {
		return err
	}
	defer store.Close()
	defer log.Sync()

	ctx := cmd.Context()
	seedSettings(ctx, cfg, store, log)

	source := calendarSource(ctx, cfg, store, log)
	exporter := export.NewWriter(cfg.ExportDir)
	handler := api.NewHandler(store, source, exporter, log)
	router := api.NewRouter(handler)

	scheduler := api.NewReminderScheduler(store, log)
	scheduler.Start()
	defer scheduler.Stop()

	addr := cfg.ListenAddr
	if serveAddr != "" {
		addr = serveAddr
	}
	server := &http.Server{
		Addr:              addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", zap.String("addr", addr))
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case sig := <-sigCh:
		log.Info("shutting down", zap.String("signal", sig.String()))
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// seedSettings writes the config consultant defaults into a fresh
// database. An already-customized settings row is left alone.
func seedSettings(ctx context.Context, cfg config.Config, store *sqlite.Store, log *zap.Logger) {
	current, err := store.GetSettings(ctx)
	if err != nil {
		log.Warn("reading settings failed", zap.Error(err))
		return
	}
	if current != engine.DefaultSettings() {
		return
	}
	if err := store.SaveSettings(ctx, cfg.Settings()); err != nil {
		log.Warn("seeding settings failed", zap.Error(err))
	}
}

// calendarSource builds the Graph-backed source when an account is
// configured and a cached token exists. It never starts an interactive
// sign-in; use `tiq sync` for that.
func calendarSource(ctx context.Context, cfg config.Config, store *sqlite.Store, log *zap.Logger) engine.CalendarSource {
	if cfg.Outlook.ClientID == "" {
		log.Info("no outlook client configured, calendar sync disabled")
		return nil
	}
	auth := outlook.NewAuthenticator(cfg.Outlook.TenantID, cfg.Outlook.ClientID, cfg.TokenPath())
	if !auth.HasToken() {
		log.Info("no cached outlook token, run `tiq sync` to sign in")
		return nil
	}
	client, err := outlook.NewClient(ctx, auth, cfg.Outlook.Timezone)
	if err != nil {
		log.Warn("outlook client unavailable", zap.Error(err))
		return nil
	}
	return outlook.NewSource(client, store, log)
}
