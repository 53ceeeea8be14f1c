// Package weather fetches daily forecasts from Open-Meteo.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"time"

	"timetable_bot/internal/model"
)

// DefaultBaseURL is the public Open-Meteo forecast endpoint.
const DefaultBaseURL = "https://api.open-meteo.com/v1/forecast"

const dailyFields = "weathercode,temperature_2m_max,temperature_2m_min,precipitation_probability_max"

// ErrNoForecast is returned when the response has no usable entry for the
// requested day.
var ErrNoForecast = errors.New("no forecast for day")

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client queries daily forecasts for one point.
type Client struct {
	client    HTTPClient
	baseURL   string
	latitude  float64
	longitude float64
	timezone  string
	timeout   time.Duration
}

// New creates a Client for the given coordinates. Forecast days are
// bucketed in timezone, an IANA name.
func New(client HTTPClient, latitude, longitude float64, timezone string) *Client {
	return &Client{
		client:    client,
		baseURL:   DefaultBaseURL,
		latitude:  latitude,
		longitude: longitude,
		timezone:  timezone,
		timeout:   20 * time.Second,
	}
}

type forecastResponse struct {
	Daily struct {
		Time        []string   `json:"time"`
		WeatherCode []*int     `json:"weathercode"`
		TempMax     []*float64 `json:"temperature_2m_max"`
		TempMin     []*float64 `json:"temperature_2m_min"`
		PrecipProb  []*float64 `json:"precipitation_probability_max"`
	} `json:"daily"`
}

// Forecast returns the forecast for day's calendar date.
func (c *Client) Forecast(ctx context.Context, day time.Time) (*model.Weather, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	q := url.Values{}
	q.Set("latitude", strconv.FormatFloat(c.latitude, 'f', -1, 64))
	q.Set("longitude", strconv.FormatFloat(c.longitude, 'f', -1, 64))
	q.Set("daily", dailyFields)
	q.Set("timezone", c.timezone)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http get: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	var data forecastResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode forecast: %w", err)
	}

	d := data.Daily
	idx := slices.Index(d.Time, day.Format(time.DateOnly))
	if idx < 0 {
		return nil, ErrNoForecast
	}
	code, ok1 := at(d.WeatherCode, idx)
	tmax, ok2 := at(d.TempMax, idx)
	tmin, ok3 := at(d.TempMin, idx)
	if !ok1 || !ok2 || !ok3 {
		return nil, fmt.Errorf("%w: incomplete entry for %s", ErrNoForecast, d.Time[idx])
	}

	w := &model.Weather{
		Code:        code,
		Description: Describe(code),
		MinTemp:     int(math.RoundToEven(tmin)),
		MaxTemp:     int(math.RoundToEven(tmax)),
	}
	if p, ok := at(d.PrecipProb, idx); ok {
		v := int(p)
		w.PrecipProbability = &v
	}
	return w, nil
}

func at[T any](vals []*T, i int) (T, bool) {
	var zero T
	if i >= len(vals) || vals[i] == nil {
		return zero, false
	}
	return *vals[i], true
}

var descriptions = map[int]string{
	0:  "ясно",
	1:  "переважно ясно",
	2:  "мінлива хмарність",
	3:  "хмарно",
	45: "туман",
	48: "паморозь / туман",
	51: "мряка",
	53: "мряка",
	55: "мряка",
	61: "дощ",
	63: "дощ",
	65: "сильний дощ",
	66: "крижаний дощ",
	67: "крижаний дощ",
	71: "сніг",
	73: "сніг",
	75: "сильний сніг",
	77: "снігова крупа",
	80: "зливи",
	81: "зливи",
	82: "сильні зливи",
	85: "снігопад",
	86: "сильний снігопад",
	95: "гроза",
	96: "гроза з градом",
	99: "гроза з градом",
}

// Describe returns the Ukrainian label of a WMO weather code.
func Describe(code int) string {
	if d, ok := descriptions[code]; ok {
		return d
	}
	return fmt.Sprintf("погода (код: %d)", code)
}
