package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"timetable_bot/internal/bot"
	"timetable_bot/internal/config"
	"timetable_bot/internal/digest"
	"timetable_bot/internal/extract"
	"timetable_bot/internal/fetcher"
	"timetable_bot/internal/model"
	"timetable_bot/internal/render"
	"timetable_bot/internal/scheduler"
	"timetable_bot/internal/storage"
	"timetable_bot/internal/weather"
)

const modeServe = "serve"

func main() {
	os.Exit(run())
}

func run() int {
	dbPath := flag.String("db", "", "path to sqlite database (overrides DATABASE_PATH)")
	flag.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: bot [-db path] <mode>")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Modes:")
		fmt.Fprintln(os.Stderr, "  today       Post today's schedule with the weather")
		fmt.Fprintln(os.Stderr, "  tomorrow    Post tomorrow's schedule with the weather")
		fmt.Fprintln(os.Stderr, "  week        Post next week's schedule")
		fmt.Fprintln(os.Stderr, "  serve       Post on the configured cron schedules until stopped")
	}
	flag.Parse()

	if flag.NArg() != 1 {
		flag.Usage()
		return 2
	}
	arg := flag.Arg(0)
	var mode model.Mode
	if arg != modeServe {
		m, err := model.ParseMode(arg)
		if err != nil {
			slog.Error("parse mode", "error", err)
			return 2
		}
		mode = m
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("load config", "error", err)
		return 1
	}
	if *dbPath != "" {
		cfg.DatabasePath = *dbPath
	}

	log := newLogger(cfg.LogLevel)

	if dir := filepath.Dir(cfg.DatabasePath); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			log.Error("create data directory", "path", dir, "error", err)
			return 1
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	store, err := storage.NewSQLite(ctx, cfg.DatabasePath)
	if err != nil {
		log.Error("open database", "path", cfg.DatabasePath, "error", err)
		return 1
	}
	defer func() { _ = store.Close() }()

	rules := extract.Default()
	if cfg.RulesFile != "" {
		if rules, err = extract.LoadFile(cfg.RulesFile); err != nil {
			log.Error("load extraction rules", "path", cfg.RulesFile, "error", err)
			return 1
		}
	}

	httpClient := &http.Client{Timeout: 30 * time.Second}

	var forecaster digest.Forecaster
	if cfg.Weather.Enabled {
		forecaster = weather.New(httpClient, cfg.Weather.Latitude, cfg.Weather.Longitude, cfg.Location.String())
	}

	runner := digest.New(
		digest.Options{
			FeedURL:      cfg.FeedURL,
			ChatID:       cfg.ChatID,
			WeekThreadID: cfg.ScheduleThreadID,
			Location:     cfg.Location,
			Rules:        cfg.Rules,
		},
		store,
		fetcher.New(httpClient),
		forecaster,
		bot.New(cfg.TelegramBotToken, log),
		render.New(rules, cfg.Location, cfg.Weather.City),
		log,
	)

	if arg == modeServe {
		return serve(ctx, cfg, runner, log)
	}

	posted, err := runner.Run(ctx, mode)
	if err != nil {
		log.Error("posting cycle failed", "mode", mode, "error", err)
		return 1
	}
	if !posted {
		log.Info("nothing to post", "mode", mode)
	}
	return 0
}

func serve(ctx context.Context, cfg *config.Config, runner scheduler.Runner, log *slog.Logger) int {
	sched := scheduler.New(runner, cfg.Location, log)
	for _, mode := range model.Modes {
		spec, ok := cfg.Schedules[mode]
		if !ok {
			continue
		}
		if err := sched.Add(mode, spec); err != nil {
			log.Error("add schedule", "error", err)
			return 1
		}
	}

	log.Info("starting scheduler", "timezone", cfg.Location.String())
	sched.Run(ctx)
	log.Info("scheduler stopped")
	return 0
}

func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch strings.ToLower(level) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
}
