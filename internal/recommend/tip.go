package recommend

import (
	"fmt"

	"github.com/i474232898/weather-outfit/internal/weather"
)

// bigSwing is the temperature change (°C) above which the tip also suggests
// how to dress.
const bigSwing = 5

// Tip compares today's and tomorrow's temperature and adds a precipitation
// warning for tomorrow's condition.
func Tip(todayTemp, tomorrowTemp int, tomorrow weather.Condition) string {
	diff := todayTemp - tomorrowTemp

	var tip string
	switch {
	case diff > bigSwing:
		tip = fmt.Sprintf("내일은 오늘보다 %d도 낮습니다. 따뜻하게 입으세요!", diff)
	case diff < -bigSwing:
		tip = fmt.Sprintf("내일은 오늘보다 %d도 높습니다. 가볍게 입으세요!", -diff)
	case diff > 0:
		tip = fmt.Sprintf("내일은 오늘보다 %d도 낮습니다.", diff)
	case diff < 0:
		tip = fmt.Sprintf("내일은 오늘보다 %d도 높습니다.", -diff)
	default:
		tip = "오늘과 내일 기온이 비슷합니다."
	}

	switch tomorrow {
	case weather.ConditionSnowy:
		tip += " 눈이 예보되어 있어 미끄럼 주의하세요."
	case weather.ConditionRainy:
		tip += " 비가 예보되어 있어 우산을 챙기세요."
	}
	return tip
}
