// Package weather serves the sample weather forecast query.
package weather

import (
	"context"
	"time"

	"github.com/Pallinder/go-randomdata"

	"go.hackfix.me/todo/mediator"
)

// Days is the number of forecasts returned by GetWeatherForecasts.
const Days = 5

// Temperature range of generated forecasts in degrees Celsius, inclusive.
const (
	MinTemperatureC = -20
	MaxTemperatureC = 55
)

// Summaries are the possible forecast descriptions.
//
//nolint:gochecknoglobals // Static lookup table.
var Summaries = []string{
	"Freezing", "Bracing", "Chilly", "Cool", "Mild",
	"Warm", "Balmy", "Hot", "Sweltering", "Scorching",
}

// GetWeatherForecasts returns the forecasts for the next Days days. Anyone can
// request it.
type GetWeatherForecasts struct{}

// Forecast is the weather forecast for a single day.
type Forecast struct {
	Date         time.Time `json:"date"`
	TemperatureC int       `json:"temperatureC"`
	TemperatureF int       `json:"temperatureF"`
	Summary      string    `json:"summary"`
}

// ToFahrenheit converts a temperature in degrees Celsius to Fahrenheit, the
// same way forecasts do.
func ToFahrenheit(c int) int {
	return 32 + int(float64(c)/0.5556)
}

// Source generates the random parts of a forecast.
type Source interface {
	TemperatureC() int
	Summary() string
}

type randomSource struct{}

func (randomSource) TemperatureC() int {
	return randomdata.Number(MinTemperatureC, MaxTemperatureC+1)
}

func (randomSource) Summary() string {
	return randomdata.StringSample(Summaries...)
}

type options struct {
	src     Source
	timeNow func() time.Time
}

// Option configures the forecast handler.
type Option func(*options)

// WithSource sets the source of temperatures and summaries.
func WithSource(src Source) Option {
	return func(o *options) {
		o.src = src
	}
}

// WithTimeNow sets the clock used to date forecasts.
func WithTimeNow(timeNow func() time.Time) Option {
	return func(o *options) {
		o.timeNow = timeNow
	}
}

// NewHandler registers the GetWeatherForecasts handler with the pipeline p.
func NewHandler(p *mediator.Pipeline, opts ...Option) mediator.HandlerFunc[GetWeatherForecasts, []Forecast] {
	o := &options{src: randomSource{}, timeNow: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	return mediator.Handle(p, func(_ context.Context, _ GetWeatherForecasts) ([]Forecast, error) {
		today := o.timeNow()
		today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, today.Location())

		forecasts := make([]Forecast, 0, Days)
		for i := 1; i <= Days; i++ {
			c := o.src.TemperatureC()
			forecasts = append(forecasts, Forecast{
				Date:         today.AddDate(0, 0, i),
				TemperatureC: c,
				TemperatureF: ToFahrenheit(c),
				Summary:      o.src.Summary(),
			})
		}

		return forecasts, nil
	})
}
