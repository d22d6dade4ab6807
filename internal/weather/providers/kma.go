package providers

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-outfit/internal/grid"
	"github.com/i474232898/weather-outfit/internal/weather"
)

const defaultKMABaseURL = "https://apis.data.go.kr/1360000/VilageFcstInfoService_2.0"

// KMA publishes short-term forecasts at these local hours; each becomes
// queryable issueDelayHours later.
var kmaIssueHours = [...]int{2, 5, 8, 11, 14, 17, 20, 23}

const issueDelayHours = 1

type codeInfo struct {
	condition weather.Condition
	icon      string
}

// SKY: sky cover.
var kmaSkyCodes = map[string]codeInfo{
	"1": {weather.ConditionSunny, "☀️"},
	"3": {weather.ConditionPartlyCloudy, "⛅"},
	"4": {weather.ConditionCloudy, "☁️"},
}

// PTY: precipitation type. Any non-zero code overrides SKY.
var kmaPtyCodes = map[string]codeInfo{
	"0": {weather.ConditionSunny, "☀️"},
	"1": {weather.ConditionRainy, "🌧️"},
	"2": {weather.ConditionRainy, "🌨️"},
	"3": {weather.ConditionSnowy, "🌨️"},
	"4": {weather.ConditionRainy, "🌧️"},
}

var kmaPeriodSlots = [...]struct {
	time string
	name weather.PeriodName
}{
	{"0600", weather.PeriodMorning},
	{"1200", weather.PeriodAfternoon},
	{"1800", weather.PeriodEvening},
}

// KMAProvider implements weather.Provider for the Korea Meteorological
// Administration short-term (village) forecast.
//
// KMA does not publish an apparent temperature, so FeelsLike is always the
// plain temperature. Recommendations for regional data therefore ignore wind
// chill and humidity.
type KMAProvider struct {
	name    string
	apiKey  string
	baseURL string
	client  *http.Client
	circuit *gobreaker.CircuitBreaker
	tz      *time.Location
	now     func() time.Time
}

// NewKMAProvider builds the regional adapter. tz must be the provider's
// local time zone (Asia/Seoul); issue times and forecast dates use it.
func NewKMAProvider(client *http.Client, apiKey, baseURL string, tz *time.Location) *KMAProvider {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultKMABaseURL
	}
	if tz == nil {
		tz = time.FixedZone("KST", 9*60*60)
	}
	return &KMAProvider{
		name:    "kma",
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		circuit: newCircuitBreaker("kma"),
		tz:      tz,
		now:     time.Now,
	}
}

func (p *KMAProvider) Name() string {
	return p.name
}

// BaseIssueTime returns the base_date/base_time of the latest forecast issue
// already available at now (interpreted in now's location).
func BaseIssueTime(now time.Time) (string, string) {
	hour := now.Hour()
	base := -1
	for i := len(kmaIssueHours) - 1; i >= 0; i-- {
		if hour >= kmaIssueHours[i]+issueDelayHours {
			base = kmaIssueHours[i]
			break
		}
	}

	day := now
	if base < 0 {
		// 02:00 issue not yet available; use the previous day's 23:00.
		day = now.AddDate(0, 0, -1)
		base = kmaIssueHours[len(kmaIssueHours)-1]
	}
	return day.Format("20060102"), fmt.Sprintf("%02d00", base)
}

type kmaResponse struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body *struct {
			Items *struct {
				Item []kmaItem `json:"item"`
			} `json:"items"`
		} `json:"body"`
	} `json:"response"`
}

type kmaItem struct {
	Category  string `json:"category"`
	FcstDate  string `json:"fcstDate"`
	FcstTime  string `json:"fcstTime"`
	FcstValue string `json:"fcstValue"`
}

func (p *KMAProvider) FetchForecast(ctx context.Context, loc weather.Location) (weather.Forecast, error) {
	if p.apiKey == "" {
		return weather.Forecast{}, weather.NewProviderError(p.name, weather.ErrTransport, fmt.Errorf("kma api key is not configured"))
	}

	now := p.now().In(p.tz)
	baseDate, baseTime := BaseIssueTime(now)
	nx, ny := grid.ToGrid(loc.Lat, loc.Lon)

	values := url.Values{}
	values.Set("numOfRows", "1000")
	values.Set("pageNo", "1")
	values.Set("dataType", "JSON")
	values.Set("base_date", baseDate)
	values.Set("base_time", baseTime)
	values.Set("nx", strconv.Itoa(nx))
	values.Set("ny", strconv.Itoa(ny))

	// data.go.kr issues serviceKey already URL-encoded; it is appended verbatim.
	u := fmt.Sprintf("%s/getVilageFcst?serviceKey=%s&%s", p.baseURL, p.apiKey, values.Encode())

	var payload kmaResponse
	if err := getJSON(ctx, p.name, p.client, p.circuit, u, &payload); err != nil {
		return weather.Forecast{}, err
	}

	if code := payload.Response.Header.ResultCode; code != "" && code != "00" {
		return weather.Forecast{}, weather.NewProviderError(p.name, weather.ErrDataShape,
			fmt.Errorf("result %s: %s", code, payload.Response.Header.ResultMsg))
	}
	body := payload.Response.Body
	if body == nil || body.Items == nil || len(body.Items.Item) == 0 {
		return weather.Forecast{}, weather.NewProviderError(p.name, weather.ErrDataShape, fmt.Errorf("no forecast items"))
	}

	return parseKMAForecast(body.Items.Item, now), nil
}

func parseKMAForecast(items []kmaItem, now time.Time) weather.Forecast {
	idx := indexKMAItems(items)
	tomorrow := now.AddDate(0, 0, 1)
	return weather.Forecast{
		Today:    buildKMADay(items, idx, now),
		Tomorrow: buildKMADay(items, idx, tomorrow),
	}
}

type kmaSlotKey struct {
	date, time, category string
}

// indexKMAItems keeps the first value seen for each date/time/category slot.
func indexKMAItems(items []kmaItem) map[kmaSlotKey]string {
	idx := make(map[kmaSlotKey]string, len(items))
	for _, it := range items {
		k := kmaSlotKey{it.FcstDate, it.FcstTime, it.Category}
		if _, ok := idx[k]; !ok {
			idx[k] = it.FcstValue
		}
	}
	return idx
}

func buildKMADay(items []kmaItem, idx map[kmaSlotKey]string, day time.Time) weather.WeatherDay {
	date := day.Format("20060102")

	var (
		temps    []float64
		noonTemp *float64
		tmn, tmx *float64
	)
	for _, it := range items {
		if it.FcstDate != date {
			continue
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(it.FcstValue), 64)
		if err != nil {
			continue
		}
		switch it.Category {
		case "TMP":
			temps = append(temps, v)
			if it.FcstTime == "1200" {
				noonTemp = &v
			}
		case "TMN":
			tmn = &v
		case "TMX":
			tmx = &v
		}
	}

	info := kmaConditionInfo(slotValue(idx, date, "1200", "PTY", "0"), slotValue(idx, date, "1200", "SKY", "1"))

	temperature := 0
	switch {
	case noonTemp != nil:
		temperature = roundHalfUp(*noonTemp)
	case len(temps) > 0:
		temperature = roundHalfUp(mean(temps))
	}

	tempMin := 0
	if tmn != nil {
		tempMin = roundHalfUp(*tmn)
	} else if len(temps) > 0 {
		tempMin = roundHalfUp(minOf(temps))
	}

	tempMax := 0
	if tmx != nil {
		tempMax = roundHalfUp(*tmx)
	} else if len(temps) > 0 {
		tempMax = roundHalfUp(maxOf(temps))
	}

	humidity := 50
	if v, ok := idx[kmaSlotKey{date, "1200", "REH"}]; ok {
		if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
			humidity = n
		}
	}

	return weather.WeatherDay{
		Date:        weather.FormatDate(day),
		DayName:     weather.DayName(day),
		Condition:   info.condition,
		Icon:        info.icon,
		Temperature: temperature,
		TempMin:     tempMin,
		TempMax:     tempMax,
		FeelsLike:   temperature,
		Humidity:    humidity,
		Periods:     buildKMAPeriods(idx, date),
	}
}

func buildKMAPeriods(idx map[kmaSlotKey]string, date string) []weather.WeatherPeriod {
	periods := make([]weather.WeatherPeriod, 0, len(kmaPeriodSlots))
	for _, slot := range kmaPeriodSlots {
		raw, ok := idx[kmaSlotKey{date, slot.time, "TMP"}]
		if !ok {
			continue
		}
		temp, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
		if err != nil {
			continue
		}

		pop := 0
		if v, ok := idx[kmaSlotKey{date, slot.time, "POP"}]; ok {
			if n, err := strconv.Atoi(strings.TrimSpace(v)); err == nil {
				pop = n
			}
		}

		info := kmaConditionInfo(slotValue(idx, date, slot.time, "PTY", "0"), slotValue(idx, date, slot.time, "SKY", "1"))
		periods = append(periods, weather.WeatherPeriod{
			Name:            slot.name,
			Temperature:     roundHalfUp(temp),
			Icon:            info.icon,
			RainProbability: pop,
		})
	}
	return periods
}

func kmaConditionInfo(pty, sky string) codeInfo {
	if pty != "0" {
		if info, ok := kmaPtyCodes[pty]; ok {
			return info
		}
		return kmaPtyCodes["0"]
	}
	if info, ok := kmaSkyCodes[sky]; ok {
		return info
	}
	return kmaSkyCodes["1"]
}

func slotValue(idx map[kmaSlotKey]string, date, tm, category, def string) string {
	if v, ok := idx[kmaSlotKey{date, tm, category}]; ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// roundHalfUp rounds halves toward positive infinity (-2.5 -> -2).
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

func mean(vs []float64) float64 {
	var sum float64
	for _, v := range vs {
		sum += v
	}
	return sum / float64(len(vs))
}

func minOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		m = math.Min(m, v)
	}
	return m
}

func maxOf(vs []float64) float64 {
	m := vs[0]
	for _, v := range vs[1:] {
		m = math.Max(m, v)
	}
	return m
}
