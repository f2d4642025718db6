package cli

import (
	"fmt"
	"strconv"
	"time"

	actx "go.hackfix.me/todo/app/context"
	aerrors "go.hackfix.me/todo/app/errors"
	"go.hackfix.me/todo/identity"
	"go.hackfix.me/todo/mediator"
	"go.hackfix.me/todo/weather"
	"go.hackfix.me/todo/web/client"
)

// The Weather command shows the weather forecast for the next days.
type Weather struct {
	Remote string `help:"Base URL of a todo server to request the forecast from. It's generated locally by default."`
}

// Run the weather command.
func (c *Weather) Run(appCtx *actx.Context) error {
	var (
		forecasts []weather.Forecast
		err       error
	)
	if c.Remote != "" {
		forecasts, err = client.New(c.Remote).WeatherForecasts(appCtx.Ctx)
	} else {
		p := mediator.Default(appCtx.Logger, identity.CurrentUser, nil)
		forecasts, err = weather.NewHandler(p, weather.WithTimeNow(appCtx.TimeNow))(
			appCtx.Ctx, weather.GetWeatherForecasts{})
	}
	if err != nil {
		return aerrors.NewRuntimeError("failed getting weather forecasts", err, "")
	}

	data := make([][]string, len(forecasts))
	for i, f := range forecasts {
		data[i] = []string{
			f.Date.Format(time.DateOnly),
			strconv.Itoa(f.TemperatureC),
			strconv.Itoa(f.TemperatureF),
			f.Summary,
		}
	}

	header := []string{"Date", "Temp. (C)", "Temp. (F)", "Summary"}
	if err = renderTable(appCtx.Stdout, header, data, 1, 2); err != nil {
		return fmt.Errorf("failed rendering table: %w", err)
	}

	return nil
}
