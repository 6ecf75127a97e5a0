package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/AdrianFall/DesktopChatApp-Server/pkg/eventlog"
	"github.com/AdrianFall/DesktopChatApp-Server/pkg/logging"
	"github.com/AdrianFall/DesktopChatApp-Server/pkg/server"
	"github.com/AdrianFall/DesktopChatApp-Server/pkg/version"
)

func main() {
	configFile := flag.String("config", "", "YAML config file (flags override it)")
	listenAddr := flag.String("listen", "", "TCP bind address for chat clients")
	wsAddr := flag.String("ws", "", "WebSocket bind address (empty to disable)")
	wsPath := flag.String("ws-path", "", "WebSocket upgrade path")
	metricsAddr := flag.String("metrics", "", "HTTP bind address for Prometheus /metrics (empty to disable)")
	eventLog := flag.String("event-log", "", "SQLite file for the admin event feed (empty = in-memory)")
	registerTimeout := flag.Duration("register-timeout", 0, "Deadline for a new connection to send its display name")
	logLevel := flag.String("log-level", "info", "Log level: "+logging.LevelNames())
	logFormat := flag.String("log-format", "text", "Log format: text or json")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println(version.Full())
		return
	}

	// Configure structured logging
	if err := logging.Setup(logging.Options{
		Level:  *logLevel,
		Format: *logFormat,
		Output: os.Stdout,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "invalid logging config: %v\n", err)
		os.Exit(1)
	}

	cfg := server.DefaultConfig()
	if *configFile != "" {
		loaded, err := server.LoadConfig(*configFile)
		if err != nil {
			slog.Error("load config", "path", *configFile, "err", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	applyFlags(&cfg, *listenAddr, *wsAddr, *wsPath, *metricsAddr, *eventLog, *registerTimeout)

	var deps server.Dependencies
	if cfg.EventLogPath != "" {
		store, err := eventlog.NewSQLite(cfg.EventLogPath)
		if err != nil {
			slog.Error("open event log", "path", cfg.EventLogPath, "err", err)
			os.Exit(1)
		}
		deps.Events = store
	}

	slog.Info("starting chat server", "version", version.String())
	srv := server.New(cfg, deps)
	if err := srv.Run(); err != nil {
		slog.Error("server error", "err", err)
		os.Exit(1)
	}
}

// applyFlags layers explicitly-set flag values over the config file, so
// `-listen` beats the file the same way the file beats the defaults.
func applyFlags(cfg *server.Config, listen, ws, wsPath, metrics, eventLog string, registerTimeout time.Duration) {
	if listen != "" {
		cfg.ListenAddr = listen
	}
	if ws != "" {
		cfg.WSAddr = ws
	}
	if wsPath != "" {
		cfg.WSPath = wsPath
	}
	if metrics != "" {
		cfg.MetricsAddr = metrics
	}
	if eventLog != "" {
		cfg.EventLogPath = eventLog
	}
	if registerTimeout > 0 {
		cfg.RegisterTimeout = registerTimeout
	}
}
