package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"jarvis/api"
	"jarvis/config"
	"jarvis/model"
	"jarvis/storage"
	"jarvis/ui"
	"jarvis/voice"
)

const Version = "v0.01.00"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger, err := config.NewLogger(cfg)
	if err != nil {
		fmt.Printf("Failed to initialize logging: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting jarvis",
		zap.String("version", Version),
		zap.String("api", cfg.APIBaseURL),
		zap.String("history", cfg.HistoryBackend))

	// Clean up old tmp dir in cache directory (crash recovery)
	if err := config.CleanupTempDir(); err != nil {
		logger.Warn("failed to cleanup old temp directory", zap.Error(err))
	}

	// Synthesized audio is staged here, never in the synced data dir
	if err := config.CreateTempDir(); err != nil {
		fmt.Printf("Failed to create secure temp directory: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := config.CleanupTempDir(); err != nil {
			logger.Warn("failed to cleanup temp directory on exit", zap.Error(err))
		}
	}()

	persister, closer, err := storage.Open(cfg.HistoryBackend, cfg.DataDir())
	if err != nil {
		fmt.Printf("Failed to open history: %v\n", err)
		os.Exit(1)
	}
	defer closer.Close()

	client, err := api.NewClient(cfg.APIBaseURL, nil, logger.Named("api"))
	if err != nil {
		fmt.Printf("Invalid API configuration: %v\n", err)
		os.Exit(1)
	}

	notifications := ui.NewNotifications()
	store := model.NewStore(client, persister, notifications, logger.Named("store"))

	var recognizer voice.Recognizer
	var mic voice.Microphone
	if cfg.STTCommand != "" {
		recognizer = voice.NewCommandRecognizer(cfg.STTCommand, logger.Named("stt"))
		mic = voice.NewCommandMicrophone(cfg.STTCommand)
	}
	session := voice.NewSession(
		mic,
		recognizer,
		voice.NewCommandPlayer(cfg.PlayerCommand, logger.Named("player")),
		client,
		voice.WithTempDir(config.GetTempDir()),
		voice.WithLogger(logger.Named("voice")),
		voice.WithNotifier(notifications),
	)

	app := ui.NewAppView(cfg, store, session, client, notifications, logger.Named("ui"))
	defer app.Shutdown()

	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("program exited with error", zap.Error(err))
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}
