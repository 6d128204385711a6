package main

import (
	"context"
	"encoding/base64"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wondervoice/core"
	"wondervoice/factories"
	"wondervoice/session"
	gateway "wondervoice/transports/websocket"

	"github.com/joho/godotenv"
)

func main() {
	var addr string
	var settingsPath string
	flag.StringVar(&addr, "addr", ":8080", "listen address for the session gateway")
	flag.StringVar(&settingsPath, "settings", "settings.json", "path to settings file")
	flag.Parse()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := godotenv.Load(".env.local"); err != nil {
		core.GetLogger().With(map[string]any{"error": err}).Warn("No .env.local file found or failed to load")
	}

	settings := loadSettingsFromEnv(settingsPath)
	settings.ApplyKeys(factories.APIKeys{OpenAI: os.Getenv("OPENAI_API_KEY")})

	logger := core.GetLogger()

	gw := gateway.NewGateway(settings.Gateway, func() (*session.Session, error) {
		return factories.BuildSession(ctx, settings, logger)
	}, logger)

	mux := http.NewServeMux()
	mux.Handle("/ws/session", gw)

	server := &http.Server{
		Addr:    addr,
		Handler: mux,
	}

	go func() {
		logger.Info("session gateway listening", "addr", addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-sigChan:
	case <-ctx.Done():
	}

	logger.Info("Shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("shutdown did not finish cleanly", "error", err)
	}
}

// loadSettingsFromEnv loads SettingsConfig from the SETTINGS_JSON_B64 env
// var when set, otherwise from the settings file, otherwise defaults.
func loadSettingsFromEnv(path string) factories.SettingsConfig {
	logger := core.GetLogger()

	if b64 := os.Getenv("SETTINGS_JSON_B64"); b64 != "" {
		data, decErr := base64.StdEncoding.DecodeString(b64)
		if decErr != nil {
			logger.With(map[string]any{"error": decErr}).Error("failed to decode SETTINGS_JSON_B64")
			return factories.DefaultSettingsConfig()
		}
		settings, err := factories.SettingsConfigFromJSON(data)
		if err != nil {
			logger.With(map[string]any{"error": err}).Error("failed to parse SETTINGS_JSON_B64")
			return factories.DefaultSettingsConfig()
		}
		logger.Info("loaded settings from SETTINGS_JSON_B64")
		return settings
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			logger.With(map[string]any{"error": err, "path": path}).Warn("failed to read settings file")
		}
		return factories.DefaultSettingsConfig()
	}
	settings, err := factories.SettingsConfigFromJSON(data)
	if err != nil {
		logger.With(map[string]any{"error": err, "path": path}).Error("failed to parse settings file")
		return factories.DefaultSettingsConfig()
	}
	logger.Info("loaded settings", "path", path)
	return settings
}
