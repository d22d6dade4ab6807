package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-outfit/internal/weather"
)

const defaultOpenWeatherBaseURL = "https://api.openweathermap.org/data/2.5"

// tomorrowFallbackIndex is roughly 24h ahead in a 3-hourly forecast list.
const tomorrowFallbackIndex = 8

var openWeatherIcons = map[string]codeInfo{
	"01d": {weather.ConditionSunny, "☀️"},
	"01n": {weather.ConditionSunny, "🌙"},
	"02d": {weather.ConditionPartlyCloudy, "⛅"},
	"02n": {weather.ConditionPartlyCloudy, "☁️"},
	"03d": {weather.ConditionCloudy, "☁️"},
	"03n": {weather.ConditionCloudy, "☁️"},
	"04d": {weather.ConditionCloudy, "☁️"},
	"04n": {weather.ConditionCloudy, "☁️"},
	"09d": {weather.ConditionRainy, "🌧️"},
	"09n": {weather.ConditionRainy, "🌧️"},
	"10d": {weather.ConditionRainy, "🌦️"},
	"10n": {weather.ConditionRainy, "🌧️"},
	"11d": {weather.ConditionRainy, "⛈️"},
	"11n": {weather.ConditionRainy, "⛈️"},
	"13d": {weather.ConditionSnowy, "🌨️"},
	"13n": {weather.ConditionSnowy, "🌨️"},
	"50d": {weather.ConditionCloudy, "🌫️"},
	"50n": {weather.ConditionCloudy, "🌫️"},
}

var openWeatherPeriodHours = [...]struct {
	hour int
	name weather.PeriodName
}{
	{6, weather.PeriodMorning},
	{12, weather.PeriodAfternoon},
	{18, weather.PeriodEvening},
}

// OpenWeatherProvider implements weather.Provider for OpenWeatherMap using the
// current-weather and 5 day / 3 hour forecast endpoints.
type OpenWeatherProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	now     func() time.Time
}

func NewOpenWeatherProvider(client *http.Client, apiKey, baseURL string) *OpenWeatherProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultOpenWeatherBaseURL
	}
	return &OpenWeatherProvider{
		name:    "openweather",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker("openweather"),
		now:     time.Now,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

type owmCondition struct {
	Icon        string `json:"icon"`
	Description string `json:"description"`
}

type owmMain struct {
	Temp      float64 `json:"temp"`
	FeelsLike float64 `json:"feels_like"`
	TempMin   float64 `json:"temp_min"`
	TempMax   float64 `json:"temp_max"`
	Humidity  int     `json:"humidity"`
}

type owmCurrent struct {
	Weather  []owmCondition `json:"weather"`
	Main     *owmMain       `json:"main"`
	Timezone int            `json:"timezone"`
	Name     string         `json:"name"`
}

type owmEntry struct {
	Dt      int64          `json:"dt"`
	Main    owmMain        `json:"main"`
	Weather []owmCondition `json:"weather"`
	Pop     float64        `json:"pop"`
	DtTxt   string         `json:"dt_txt"`
}

type owmForecast struct {
	List []owmEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Timezone int    `json:"timezone"`
	} `json:"city"`
}

func (p *OpenWeatherProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.Forecast, error) {
	if p.apiKey == "" {
		return weather.Forecast{}, weather.NewProviderError(p.name, weather.ErrTransport, fmt.Errorf("openweather api key is not configured"))
	}

	var current owmCurrent
	if err := getJSON(ctx, p.name, p.client, p.circuit, p.endpoint("weather", loc), &current); err != nil {
		return weather.Forecast{}, err
	}
	if current.Main == nil {
		return weather.Forecast{}, weather.NewProviderError(p.name, weather.ErrDataShape, fmt.Errorf("current weather has no main block"))
	}

	var forecast owmForecast
	if err := getJSON(ctx, p.name, p.client, p.circuit, p.endpoint("forecast", loc), &forecast); err != nil {
		return weather.Forecast{}, err
	}
	if len(forecast.List) == 0 {
		return weather.Forecast{}, weather.NewProviderError(p.name, weather.ErrDataShape, fmt.Errorf("forecast list is empty"))
	}

	offset := forecast.City.Timezone
	if offset == 0 {
		offset = current.Timezone
	}
	zone := time.FixedZone("", offset)

	return buildOpenWeatherForecast(current, forecast, p.now().In(zone))
}

func (p *OpenWeatherProvider) endpoint(path string, loc weather.Location) string {
	values := url.Values{}
	values.Set("lat", fmt.Sprintf("%f", loc.Lat))
	values.Set("lon", fmt.Sprintf("%f", loc.Lon))
	values.Set("appid", p.apiKey)
	values.Set("units", "metric")
	values.Set("lang", "kr")
	return fmt.Sprintf("%s/%s?%s", p.baseURL, path, values.Encode())
}

// buildOpenWeatherForecast maps the current/forecast pair onto the canonical
// model. now must already be in the location's local zone.
func buildOpenWeatherForecast(current owmCurrent, fc owmForecast, now time.Time) (weather.Forecast, error) {
	zone := now.Location()
	tomorrow := now.AddDate(0, 0, 1)

	todayInfo := openWeatherInfo(current.Weather)
	todayTemp := roundHalfUp(current.Main.Temp)
	todayMin, todayMax, ok := entryRange(fc.List, now, zone)
	if !ok {
		todayMin, todayMax = roundHalfUp(current.Main.TempMin), roundHalfUp(current.Main.TempMax)
	}

	noon, ok := tomorrowNoonEntry(fc.List, tomorrow, zone)
	if !ok {
		return weather.Forecast{}, weather.NewProviderError("openweather", weather.ErrDataShape, fmt.Errorf("no forecast entry for tomorrow"))
	}
	tomorrowInfo := openWeatherInfo(noon.Weather)
	tomorrowTemp := roundHalfUp(noon.Main.Temp)
	tomorrowMin, tomorrowMax, ok := entryRange(fc.List, tomorrow, zone)
	if !ok {
		tomorrowMin, tomorrowMax = tomorrowTemp, tomorrowTemp
	}

	return weather.Forecast{
		Today: weather.WeatherDay{
			Date:        weather.FormatDate(now),
			DayName:     weather.DayName(now),
			Condition:   todayInfo.condition,
			Icon:        todayInfo.icon,
			Temperature: todayTemp,
			TempMin:     todayMin,
			TempMax:     todayMax,
			FeelsLike:   roundHalfUp(current.Main.FeelsLike),
			Humidity:    current.Main.Humidity,
			Periods:     openWeatherPeriods(fc.List, now, zone),
		},
		Tomorrow: weather.WeatherDay{
			Date:        weather.FormatDate(tomorrow),
			DayName:     weather.DayName(tomorrow),
			Condition:   tomorrowInfo.condition,
			Icon:        tomorrowInfo.icon,
			Temperature: tomorrowTemp,
			TempMin:     tomorrowMin,
			TempMax:     tomorrowMax,
			FeelsLike:   roundHalfUp(noon.Main.FeelsLike),
			Humidity:    noon.Main.Humidity,
			Periods:     openWeatherPeriods(fc.List, tomorrow, zone),
		},
	}, nil
}

// tomorrowNoonEntry picks the first entry on tomorrow's local date at or after
// noon. Failing that it falls back to list[8], which assumes a strict 3-hour
// cadence starting near now and can land on the wrong day when the request is
// made close to midnight or the list starts late.
func tomorrowNoonEntry(list []owmEntry, tomorrow time.Time, zone *time.Location) (owmEntry, bool) {
	for _, e := range list {
		t := time.Unix(e.Dt, 0).In(zone)
		if sameDate(t, tomorrow) && t.Hour() >= 12 {
			return e, true
		}
	}
	if len(list) > tomorrowFallbackIndex {
		return list[tomorrowFallbackIndex], true
	}
	return owmEntry{}, false
}

func entryRange(list []owmEntry, day time.Time, zone *time.Location) (int, int, bool) {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, e := range list {
		if !sameDate(time.Unix(e.Dt, 0).In(zone), day) {
			continue
		}
		lo = math.Min(lo, e.Main.Temp)
		hi = math.Max(hi, e.Main.Temp)
	}
	if math.IsInf(lo, 1) {
		return 0, 0, false
	}
	return roundHalfUp(lo), roundHalfUp(hi), true
}

// openWeatherPeriods takes the entry exactly at 06:00, 12:00 and 18:00 local
// time on day; a missing boundary drops that period.
func openWeatherPeriods(list []owmEntry, day time.Time, zone *time.Location) []weather.WeatherPeriod {
	periods := make([]weather.WeatherPeriod, 0, len(openWeatherPeriodHours))
	for _, slot := range openWeatherPeriodHours {
		for _, e := range list {
			t := time.Unix(e.Dt, 0).In(zone)
			if !sameDate(t, day) || t.Hour() != slot.hour || t.Minute() != 0 {
				continue
			}
			periods = append(periods, weather.WeatherPeriod{
				Name:            slot.name,
				Temperature:     roundHalfUp(e.Main.Temp),
				Icon:            openWeatherInfo(e.Weather).icon,
				RainProbability: roundHalfUp(e.Pop * 100),
			})
			break
		}
	}
	return periods
}

func openWeatherInfo(conds []owmCondition) codeInfo {
	if len(conds) > 0 {
		if info, ok := openWeatherIcons[conds[0].Icon]; ok {
			return info
		}
	}
	return codeInfo{weather.ConditionSunny, "☀️"}
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
