// Package config handles application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata" // zone database for minimal images

	"github.com/joho/godotenv"

	"timetable_bot/internal/filter"
	"timetable_bot/internal/model"
)

// ScheduleOff disables a cron schedule. It is matched case-insensitively.
const ScheduleOff = "off"

// Config holds the application configuration.
type Config struct {
	TelegramBotToken string
	ChatID           string
	FeedURL          string
	// ScheduleThreadID is the forum topic for weekly posts.
	ScheduleThreadID *int

	DatabasePath string
	LogLevel     string
	Location     *time.Location

	Weather Weather

	// Schedules maps each enabled mode to its cron spec for serve mode.
	Schedules map[model.Mode]string

	Rules []filter.Rule
	// RulesFile is an optional YAML file overriding the extraction rules.
	RulesFile string
}

// Weather configures the forecast shown in daily posts.
type Weather struct {
	Enabled   bool
	Latitude  float64
	Longitude float64
	City      string
}

var defaultSchedules = map[model.Mode]string{
	model.ModeToday:    "0 7 * * *",
	model.ModeTomorrow: "0 19 * * *",
	model.ModeWeek:     "0 18 * * 0",
}

// Load reads configuration from environment variables. A .env file in the
// working directory is read first; real environment variables win.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		DatabasePath: envOrDefault("DATABASE_PATH", "./data/bot.db"),
		LogLevel:     envOrDefault("LOG_LEVEL", "info"),
		RulesFile:    strings.TrimSpace(os.Getenv("RULES_FILE")),
		Schedules:    map[model.Mode]string{},
	}

	required := []struct {
		key string
		dst *string
	}{
		{"TG_BOT_TOKEN", &cfg.TelegramBotToken},
		{"TG_CHAT_ID", &cfg.ChatID},
		{"GCAL_ICS_URL", &cfg.FeedURL},
	}
	for _, r := range required {
		*r.dst = strings.TrimSpace(os.Getenv(r.key))
		if *r.dst == "" {
			return nil, fmt.Errorf("%s is required", r.key)
		}
	}

	if raw := strings.TrimSpace(os.Getenv("TG_SCHEDULE_THREAD_ID")); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid TG_SCHEDULE_THREAD_ID %q: %w", raw, err)
		}
		cfg.ScheduleThreadID = &id
	}

	tz := envOrDefault("TIMEZONE", "Europe/Kyiv")
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", tz, err)
	}
	cfg.Location = loc

	if cfg.Weather, err = loadWeather(); err != nil {
		return nil, err
	}

	for _, mode := range model.Modes {
		key := "CRON_" + strings.ToUpper(string(mode))
		spec := envOrDefault(key, defaultSchedules[mode])
		if !strings.EqualFold(spec, ScheduleOff) {
			cfg.Schedules[mode] = spec
		}
	}

	include, err := filter.ParseRules(os.Getenv("EVENT_INCLUDE"), true)
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_INCLUDE: %w", err)
	}
	exclude, err := filter.ParseRules(os.Getenv("EVENT_EXCLUDE"), false)
	if err != nil {
		return nil, fmt.Errorf("invalid EVENT_EXCLUDE: %w", err)
	}
	cfg.Rules = append(include, exclude...)

	return cfg, nil
}

func loadWeather() (Weather, error) {
	w := Weather{
		Enabled:   true,
		Latitude:  48.45,
		Longitude: 34.98,
		City:      envOrDefault("WEATHER_CITY", "Дніпрі"),
	}

	if raw := os.Getenv("WEATHER_ENABLED"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			return w, fmt.Errorf("invalid WEATHER_ENABLED %q: %w", raw, err)
		}
		w.Enabled = v
	}
	for key, dst := range map[string]*float64{
		"WEATHER_LATITUDE":  &w.Latitude,
		"WEATHER_LONGITUDE": &w.Longitude,
	} {
		raw := os.Getenv(key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return w, fmt.Errorf("invalid %s %q: %w", key, raw, err)
		}
		*dst = v
	}
	return w, nil
}

func envOrDefault(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
