package weather

import "time"

// DemoAdvisory is shown when every provider failed and demo data is displayed.
const DemoAdvisory = "API 키 활성화 대기 중입니다. (최대 2시간 소요) 데모 데이터로 표시합니다."

// DemoForecast returns the built-in dataset used when no provider answers.
// Only the display dates depend on now.
func DemoForecast(now time.Time) Forecast {
	tomorrow := now.AddDate(0, 0, 1)

	return Forecast{
		Today: WeatherDay{
			Date:        FormatDate(now),
			DayName:     DayName(now),
			Condition:   ConditionSunny,
			Icon:        "☀️",
			Temperature: 5,
			TempMin:     2,
			TempMax:     8,
			FeelsLike:   3,
			Humidity:    55,
			Periods: []WeatherPeriod{
				{Name: PeriodMorning, Temperature: 3, Icon: "☀️", RainProbability: 10},
				{Name: PeriodAfternoon, Temperature: 7, Icon: "⛅", RainProbability: 15},
				{Name: PeriodEvening, Temperature: 4, Icon: "☁️", RainProbability: 20},
			},
		},
		Tomorrow: WeatherDay{
			Date:        FormatDate(tomorrow),
			DayName:     DayName(tomorrow),
			Condition:   ConditionSnowy,
			Icon:        "🌨️",
			Temperature: -2,
			TempMin:     -5,
			TempMax:     2,
			FeelsLike:   -5,
			Humidity:    70,
			Periods: []WeatherPeriod{
				{Name: PeriodMorning, Temperature: -1, Icon: "🌨️", RainProbability: 60},
				{Name: PeriodAfternoon, Temperature: 2, Icon: "🌨️", RainProbability: 70},
				{Name: PeriodEvening, Temperature: 0, Icon: "☁️", RainProbability: 50},
			},
		},
	}
}
