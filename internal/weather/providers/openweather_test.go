package providers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-outfit/internal/weather"
)

const seoulOffset = 9 * 60 * 60

type entrySpec struct {
	temp, feels float64
	humidity    int
	icon        string
	pop         float64
}

// forecastList builds one entry per element of specs, step apart, starting at start.
func forecastList(start time.Time, step time.Duration, specs []entrySpec) []map[string]any {
	list := make([]map[string]any, 0, len(specs))
	for i, s := range specs {
		ts := start.Add(time.Duration(i) * step)
		list = append(list, map[string]any{
			"dt": ts.Unix(),
			"main": map[string]any{
				"temp":       s.temp,
				"feels_like": s.feels,
				"humidity":   s.humidity,
			},
			"weather": []map[string]any{{"icon": s.icon}},
			"pop":     s.pop,
			"dt_txt":  ts.UTC().Format("2006-01-02 15:04:05"),
		})
	}
	return list
}

func sampleEntries() []entrySpec {
	return []entrySpec{
		{temp: 4.4, icon: "02d", pop: 0.1},  // 10th 12:00
		{temp: 6.0, icon: "01d"},            // 10th 15:00
		{temp: 2.6, icon: "03n", pop: 0.25}, // 10th 18:00
		{temp: 0.2, icon: "01n"},            // 10th 21:00
		{temp: -1.0, icon: "13n"},           // 11th 00:00
		{temp: -2.5, icon: "13n"},           // 11th 03:00
		{temp: -3.0, icon: "13d", pop: 0.6}, // 11th 06:00
		{temp: -1.6, icon: "13d"},           // 11th 09:00
		{temp: 1.5, feels: -2.4, humidity: 80, icon: "13d", pop: 0.7}, // 11th 12:00
		{temp: 2.0, icon: "10d"},            // 11th 15:00
		{temp: -0.5, icon: "04n", pop: 0.5}, // 11th 18:00
		{temp: -2.0, icon: "04n"},           // 11th 21:00
		{temp: -4.0, icon: "01n"},           // 12th 00:00
	}
}

func newTestOpenWeather(t *testing.T, current map[string]any, list []map[string]any, status int) (*OpenWeatherProvider, *int) {
	t.Helper()
	calls := 0
	mux := http.NewServeMux()
	mux.HandleFunc("/weather", func(w http.ResponseWriter, r *http.Request) {
		calls++
		if r.URL.Query().Get("appid") != "test-key" || r.URL.Query().Get("units") != "metric" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		if status != 0 {
			w.WriteHeader(status)
			return
		}
		_ = json.NewEncoder(w).Encode(current)
	})
	mux.HandleFunc("/forecast", func(w http.ResponseWriter, r *http.Request) {
		calls++
		_ = json.NewEncoder(w).Encode(map[string]any{
			"list": list,
			"city": map[string]any{"name": "Seoul", "timezone": seoulOffset},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	p := NewOpenWeatherProvider(srv.Client(), "test-key", srv.URL)
	p.now = func() time.Time { return time.Date(2025, 1, 10, 9, 30, 0, 0, kst) }
	return p, &calls
}

func sampleCurrent() map[string]any {
	return map[string]any{
		"weather": []map[string]any{{"icon": "01d", "description": "맑음"}},
		"main": map[string]any{
			"temp": 3.6, "feels_like": 1.2, "temp_min": 1.0, "temp_max": 5.0, "humidity": 55,
		},
		"timezone": seoulOffset,
		"name":     "Seoul",
	}
}

func TestOpenWeatherFetchForecast(t *testing.T) {
	start := time.Date(2025, 1, 10, 12, 0, 0, 0, kst)
	p, calls := newTestOpenWeather(t, sampleCurrent(), forecastList(start, 3*time.Hour, sampleEntries()), 0)

	fc, err := p.FetchForecast(context.Background(), weather.Location{Lat: 37.5665, Lon: 126.9780})
	require.NoError(t, err)
	require.Equal(t, 2, *calls)

	today := fc.Today
	require.Equal(t, "1월 10일", today.Date)
	require.Equal(t, weather.ConditionSunny, today.Condition)
	require.Equal(t, "☀️", today.Icon)
	require.Equal(t, 4, today.Temperature)
	require.Equal(t, 1, today.FeelsLike)
	require.Equal(t, 55, today.Humidity)
	require.Equal(t, 0, today.TempMin)
	require.Equal(t, 6, today.TempMax)
	// no 06:00 entry left for today
	require.Equal(t, []weather.WeatherPeriod{
		{Name: weather.PeriodAfternoon, Temperature: 4, Icon: "⛅", RainProbability: 10},
		{Name: weather.PeriodEvening, Temperature: 3, Icon: "☁️", RainProbability: 25},
	}, today.Periods)

	tomorrow := fc.Tomorrow
	require.Equal(t, "1월 11일", tomorrow.Date)
	require.Equal(t, "토요일", tomorrow.DayName)
	require.Equal(t, weather.ConditionSnowy, tomorrow.Condition)
	require.Equal(t, 2, tomorrow.Temperature)
	require.Equal(t, -2, tomorrow.FeelsLike)
	require.Equal(t, 80, tomorrow.Humidity)
	require.Equal(t, -3, tomorrow.TempMin)
	require.Equal(t, 2, tomorrow.TempMax)
	require.Equal(t, []weather.WeatherPeriod{
		{Name: weather.PeriodMorning, Temperature: -3, Icon: "🌨️", RainProbability: 60},
		{Name: weather.PeriodAfternoon, Temperature: 2, Icon: "🌨️", RainProbability: 70},
		{Name: weather.PeriodEvening, Temperature: 0, Icon: "☁️", RainProbability: 50},
	}, tomorrow.Periods)
}

func TestOpenWeatherTomorrowIndexFallback(t *testing.T) {
	// hourly entries that never reach tomorrow: the list[8] heuristic applies
	start := time.Date(2025, 1, 10, 12, 0, 0, 0, kst)
	specs := make([]entrySpec, 10)
	for i := range specs {
		specs[i] = entrySpec{temp: float64(i), icon: "04d"}
	}
	now := time.Date(2025, 1, 10, 9, 30, 0, 0, time.FixedZone("", seoulOffset))

	var current owmCurrent
	raw, _ := json.Marshal(sampleCurrent())
	require.NoError(t, json.Unmarshal(raw, &current))

	var fc owmForecast
	raw, _ = json.Marshal(map[string]any{"list": forecastList(start, time.Hour, specs)})
	require.NoError(t, json.Unmarshal(raw, &fc))

	got, err := buildOpenWeatherForecast(current, fc, now)
	require.NoError(t, err)
	require.Equal(t, 8, got.Tomorrow.Temperature)
	require.Equal(t, weather.ConditionCloudy, got.Tomorrow.Condition)
	// no entries dated tomorrow: range collapses to the chosen entry
	require.Equal(t, 8, got.Tomorrow.TempMin)
	require.Equal(t, 8, got.Tomorrow.TempMax)
	require.Empty(t, got.Tomorrow.Periods)

	fc.List = fc.List[:8]
	_, err = buildOpenWeatherForecast(current, fc, now)
	require.ErrorIs(t, err, weather.ErrDataShape)
}

func TestOpenWeatherTodayRangeFallsBackToCurrent(t *testing.T) {
	// list starts tomorrow, so today's min/max come from the current block
	start := time.Date(2025, 1, 11, 0, 0, 0, 0, kst)
	p, _ := newTestOpenWeather(t, sampleCurrent(), forecastList(start, 3*time.Hour, sampleEntries()[4:]), 0)

	fc, err := p.FetchForecast(context.Background(), weather.Location{Lat: 37.5, Lon: 127})
	require.NoError(t, err)
	require.Equal(t, 1, fc.Today.TempMin)
	require.Equal(t, 5, fc.Today.TempMax)
	require.Empty(t, fc.Today.Periods)
}

func TestOpenWeatherErrors(t *testing.T) {
	loc := weather.Location{Lat: 48.85, Lon: 2.35}
	start := time.Date(2025, 1, 10, 12, 0, 0, 0, kst)

	t.Run("unauthorized", func(t *testing.T) {
		p, calls := newTestOpenWeather(t, sampleCurrent(), nil, http.StatusUnauthorized)
		_, err := p.FetchForecast(context.Background(), loc)
		require.ErrorIs(t, err, weather.ErrTransport)
		require.Equal(t, 1, *calls)
	})

	t.Run("missing main", func(t *testing.T) {
		p, _ := newTestOpenWeather(t, map[string]any{"weather": []any{}}, forecastList(start, 3*time.Hour, sampleEntries()), 0)
		_, err := p.FetchForecast(context.Background(), loc)
		require.ErrorIs(t, err, weather.ErrDataShape)
	})

	t.Run("empty list", func(t *testing.T) {
		p, _ := newTestOpenWeather(t, sampleCurrent(), nil, 0)
		_, err := p.FetchForecast(context.Background(), loc)
		require.ErrorIs(t, err, weather.ErrDataShape)
	})

	t.Run("missing key", func(t *testing.T) {
		p := NewOpenWeatherProvider(http.DefaultClient, "", "")
		_, err := p.FetchForecast(context.Background(), loc)
		require.ErrorIs(t, err, weather.ErrTransport)
	})
}

func TestOpenWeatherInfoUnknownIcon(t *testing.T) {
	info := openWeatherInfo([]owmCondition{{Icon: "99x"}})
	require.Equal(t, weather.ConditionSunny, info.condition)
	require.Equal(t, "☀️", openWeatherInfo(nil).icon)
}
