// Package digest runs one posting cycle: gate, fetch, parse, compose,
// deliver, record.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"timetable_bot/internal/dedupe"
	"timetable_bot/internal/filter"
	"timetable_bot/internal/ical"
	"timetable_bot/internal/model"
	"timetable_bot/internal/render"
	"timetable_bot/internal/storage"
)

// Fetcher returns the raw calendar feed.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Forecaster returns the weather for a date.
type Forecaster interface {
	Forecast(ctx context.Context, day time.Time) (*model.Weather, error)
}

// Sender delivers a message.
type Sender interface {
	SendMessage(ctx context.Context, chatID, text string, threadID *int) error
}

// Options configures a Runner.
type Options struct {
	FeedURL string
	ChatID  string
	// WeekThreadID is the forum topic for weekly posts, nil for the main chat.
	WeekThreadID *int
	Location     *time.Location
	Rules        []filter.Rule
}

// Runner executes posting cycles. Runs must not overlap.
type Runner struct {
	opts     Options
	store    storage.Storage
	fetcher  Fetcher
	weather  Forecaster
	sender   Sender
	composer *render.Composer
	log      *slog.Logger
	now      func() time.Time
}

// New creates a Runner. weather may be nil to disable forecasts.
func New(opts Options, store storage.Storage, f Fetcher, weather Forecaster, sender Sender, composer *render.Composer, log *slog.Logger) *Runner {
	return &Runner{
		opts:     opts,
		store:    store,
		fetcher:  f,
		weather:  weather,
		sender:   sender,
		composer: composer,
		log:      log,
		now:      time.Now,
	}
}

// SetClock overrides the time source.
func (r *Runner) SetClock(now func() time.Time) {
	r.now = now
}

// Run performs one cycle for mode. It reports whether a message was sent.
// State is only written after a successful delivery.
func (r *Runner) Run(ctx context.Context, mode model.Mode) (bool, error) {
	now := r.now()
	plan := PlanFor(mode, now, r.opts.Location)
	log := r.log.With("mode", mode, "stamp", plan.Stamp)

	state, err := r.store.LoadState(ctx)
	if err != nil {
		return false, fmt.Errorf("load state: %w", err)
	}
	if !dedupe.ShouldPost(state, plan.Key, plan.Stamp) {
		log.Info("already posted, skipping")
		return false, nil
	}

	raw, err := r.fetcher.Fetch(ctx, r.opts.FeedURL)
	if err != nil {
		return false, fmt.Errorf("fetch feed: %w", err)
	}

	parsed := ical.Parse(raw, r.opts.Location)
	for _, is := range parsed.Issues {
		log.Warn(issueMessage(is.Kind), "line", is.Line, "kind", is.Kind, "detail", is.Detail)
	}

	events := filter.InRange(parsed.Events, plan.From, plan.To, r.opts.Location)
	events = filter.Apply(events, r.opts.Rules)
	log.Debug("events selected", "parsed", len(parsed.Events), "selected", len(events))

	var threadID *int
	var text string
	switch mode {
	case model.ModeWeek:
		text = r.composer.WeekMessage(events, plan.From, plan.To, now)
		threadID = r.opts.WeekThreadID
		if threadID == nil {
			log.Warn("schedule thread id not set, weekly post goes to the main chat")
		}
	case model.ModeTomorrow:
		text = r.composer.TomorrowMessage(events, plan.From, r.forecast(ctx, log, plan.From), now)
	default:
		text = r.composer.TodayMessage(events, plan.From, r.forecast(ctx, log, plan.From), now)
	}

	if err := r.sender.SendMessage(ctx, r.opts.ChatID, text, threadID); err != nil {
		return false, fmt.Errorf("deliver: %w", err)
	}

	dedupe.MarkPosted(state, plan.Key, plan.Stamp)
	if err := r.store.SaveState(ctx, state); err != nil {
		return true, fmt.Errorf("save state: %w", err)
	}

	log.Info("posted", "events", len(events))
	return true, nil
}

// forecast never fails; a missing forecast only drops the weather block.
func (r *Runner) forecast(ctx context.Context, log *slog.Logger, day time.Time) *model.Weather {
	if r.weather == nil {
		return nil
	}
	w, err := r.weather.Forecast(ctx, day)
	if err != nil {
		log.Warn("weather unavailable", "error", err)
		return nil
	}
	return w
}

// issueMessage describes a parse issue for the log. A stray END:VEVENT
// costs no event, so it is not reported as a drop.
func issueMessage(k ical.IssueKind) string {
	if k == ical.IssueOrphanClose {
		return "calendar anomaly"
	}
	return "calendar block dropped"
}
