package weather

import (
	"fmt"
	"time"
)

// Condition represents the normalized sky/precipitation state of a day or period.
type Condition string

const (
	ConditionSunny        Condition = "sunny"
	ConditionPartlyCloudy Condition = "partly_cloudy"
	ConditionCloudy       Condition = "cloudy"
	ConditionRainy        Condition = "rainy"
	ConditionSnowy        Condition = "snowy"
)

// PeriodName identifies a sub-day forecast slice.
type PeriodName string

const (
	PeriodMorning   PeriodName = "morning"
	PeriodAfternoon PeriodName = "afternoon"
	PeriodEvening   PeriodName = "evening"
)

// Source records which provider supplied the current forecast pair.
type Source string

const (
	SourceRegional Source = "kma"
	SourceGlobal   Source = "openweather"
	SourceDemo     Source = "demo"
)

// Location is a resolved place for which we fetch weather.
type Location struct {
	Lat  float64 `json:"lat" validate:"gte=-90,lte=90"`
	Lon  float64 `json:"lon" validate:"gte=-180,lte=180"`
	City string  `json:"city,omitempty"`
}

// Key returns a canonical string key for logging and indexing.
func (l Location) Key() string {
	if l.City != "" {
		return fmt.Sprintf("%s(%.4f,%.4f)", l.City, l.Lat, l.Lon)
	}
	return fmt.Sprintf("%.4f,%.4f", l.Lat, l.Lon)
}

// WeatherPeriod is a morning/afternoon/evening slice of a day.
type WeatherPeriod struct {
	Name            PeriodName `json:"name"`
	Temperature     int        `json:"temperature"`
	Icon            string     `json:"icon"`
	RainProbability int        `json:"rainProbability"`
}

// WeatherDay is the provider-agnostic daily weather view.
// TempMin <= Temperature <= TempMax only holds when all three were derived
// from the same samples; providers reporting them separately may violate it.
type WeatherDay struct {
	Date        string          `json:"date"`
	DayName     string          `json:"dayName"`
	Condition   Condition       `json:"condition"`
	Icon        string          `json:"icon"`
	Temperature int             `json:"temperature"`
	TempMin     int             `json:"tempMin"`
	TempMax     int             `json:"tempMax"`
	FeelsLike   int             `json:"feelsLike"`
	Humidity    int             `json:"humidity"`
	Periods     []WeatherPeriod `json:"periods"`
}

// Forecast is the today/tomorrow pair produced by every provider.
type Forecast struct {
	Today    WeatherDay `json:"today"`
	Tomorrow WeatherDay `json:"tomorrow"`
}

var dayNames = [...]string{"일요일", "월요일", "화요일", "수요일", "목요일", "금요일", "토요일"}

// FormatDate renders t as a display date such as "1월 5일".
func FormatDate(t time.Time) string {
	return fmt.Sprintf("%d월 %d일", int(t.Month()), t.Day())
}

// DayName returns the weekday name of t.
func DayName(t time.Time) string {
	return dayNames[t.Weekday()]
}
