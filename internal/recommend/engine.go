package recommend

import (
	"fmt"
	"sort"

	"github.com/i474232898/weather-outfit/internal/common"
	"github.com/i474232898/weather-outfit/internal/weather"
)

// Category groups recommended items.
type Category string

const (
	CategoryOuter     Category = "outer"
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryShoes     Category = "shoes"
	CategoryAccessory Category = "accessory"
	CategoryEssential Category = "essential"
)

// Feels-like thresholds in °C.
const (
	coldBelow     = 5
	veryColdBelow = 0
)

// Item is a single recommended piece of clothing or gear.
// Lower Priority values are shown first.
type Item struct {
	ID       string   `json:"id"`
	Category Category `json:"category"`
	Name     string   `json:"name"`
	Icon     string   `json:"icon"`
	Reason   string   `json:"reason"`
	Priority int      `json:"priority"`
}

// Set is a full recommendation. Top, Bottom and Shoes always hold at least
// one item; the other categories may be empty.
type Set struct {
	Outer       []Item `json:"outer"`
	Top         []Item `json:"top"`
	Bottom      []Item `json:"bottom"`
	Shoes       []Item `json:"shoes"`
	Accessories []Item `json:"accessories"`
	Essentials  []Item `json:"essentials"`
}

// Clone returns a deep copy of s. Empty categories stay non-nil.
func (s Set) Clone() Set {
	return Set{
		Outer:       cloneItems(s.Outer),
		Top:         cloneItems(s.Top),
		Bottom:      cloneItems(s.Bottom),
		Shoes:       cloneItems(s.Shoes),
		Accessories: cloneItems(s.Accessories),
		Essentials:  cloneItems(s.Essentials),
	}
}

func cloneItems(items []Item) []Item {
	return append([]Item{}, items...)
}

var outdoorExposure = []Transportation{TransportWalking, TransportBicycle, TransportMotorcycle, TransportKickboard}

// Recommend derives an outfit for the given weather and user context.
// It has no side effects and returns a fresh Set on every call.
func Recommend(opts UserOptions, cond weather.Condition, temperature, feelsLike int) Set {
	styles := opts.FashionStyles
	var (
		warm     = common.HasAny(styles, StyleWarm)
		formal   = common.HasAny(styles, StyleFormal, StyleBusinessCasual)
		sporty   = common.HasAny(styles, StyleSporty)
		casual   = common.HasAny(styles, StyleCasual)
		exposed  = common.HasAny(outdoorExposure, opts.Transportation)
		snowy    = cond == weather.ConditionSnowy
		rainy    = cond == weather.ConditionRainy
		cold     = feelsLike < coldBelow
		veryCold = feelsLike < veryColdBelow

		businessDay = formal || opts.ScheduleType == ScheduleWork || opts.ScheduleType == ScheduleMeeting
		activeDay   = sporty || opts.ScheduleType == ScheduleExercise
	)

	pick := func(c bool, ifCold, otherwise string) string {
		if c {
			return ifCold
		}
		return otherwise
	}

	// empty categories encode as [] rather than null
	set := Set{
		Outer:       []Item{},
		Top:         []Item{},
		Bottom:      []Item{},
		Shoes:       []Item{},
		Accessories: []Item{},
		Essentials:  []Item{},
	}

	if veryCold || (warm && cold) {
		set.Outer = append(set.Outer, item("o1", CategoryOuter, "롱패딩", "🧥", fmt.Sprintf("체감온도 %d°C", feelsLike), 1))
	}
	if formal && cold {
		set.Outer = append(set.Outer, item("o2", CategoryOuter, "울 코트", "🧥", "포멀한 느낌", 2))
	}
	if sporty {
		set.Outer = append(set.Outer, item("o3", CategoryOuter, "패딩 점퍼", "🧥", "활동성 좋음", 2))
	}
	if len(set.Outer) == 0 && cold {
		set.Outer = append(set.Outer, item("o4", CategoryOuter, "숏패딩", "🧥", fmt.Sprintf("기온 %d°C", temperature), 1))
	}

	switch {
	case businessDay:
		set.Top = append(set.Top, item("t1", CategoryTop, pick(cold, "기모 셔츠", "면 셔츠"), "👔", "비즈니스 룩", 1))
	case activeDay:
		set.Top = append(set.Top, item("t2", CategoryTop, pick(cold, "기모 맨투맨", "드라이핏"), "👕", "운동에 적합", 1))
	case casual || opts.ScheduleType == ScheduleDate:
		set.Top = append(set.Top, item("t3", CategoryTop, pick(cold, "울 니트", "가디건"), "🧶", "캐주얼 + 스타일", 1))
	default:
		set.Top = append(set.Top, item("t4", CategoryTop, "맨투맨", "👕", "편안함", 1))
	}

	switch {
	case businessDay:
		set.Bottom = append(set.Bottom, item("b1", CategoryBottom, pick(cold, "기모 슬랙스", "슬랙스"), "👖", "비즈니스 + 보온", 1))
	case activeDay:
		set.Bottom = append(set.Bottom, item("b2", CategoryBottom, pick(cold, "기모 조거팬츠", "트레이닝"), "👖", "활동성", 1))
	default:
		set.Bottom = append(set.Bottom, item("b3", CategoryBottom, pick(cold, "기모 청바지", "청바지"), "👖", "캐주얼", 1))
	}

	switch {
	case snowy:
		set.Shoes = append(set.Shoes, item("s1", CategoryShoes, "방한 부츠", "🥾", "눈길 미끄럼 방지", 1))
	case rainy:
		set.Shoes = append(set.Shoes, item("s2", CategoryShoes, "레인부츠", "👢", "비 오는 날 필수", 1))
	case formal:
		set.Shoes = append(set.Shoes, item("s3", CategoryShoes, "구두/로퍼", "👞", "포멀 스타일", 1))
	case sporty:
		set.Shoes = append(set.Shoes, item("s4", CategoryShoes, "운동화", "👟", "활동성", 1))
	default:
		set.Shoes = append(set.Shoes, item("s5", CategoryShoes, pick(cold, "방한 운동화", "스니커즈"), "👟", "편안함", 1))
	}

	if cold {
		set.Accessories = append(set.Accessories, item("a1", CategoryAccessory, "목도리", "🧣", "목 보온", 1))
	}
	if veryCold || exposed {
		set.Accessories = append(set.Accessories, item("a2", CategoryAccessory, "장갑", "🧤", "손 보온", 1))
	}
	if veryCold && exposed {
		set.Accessories = append(set.Accessories, item("a3", CategoryAccessory, "귀마개", "🎧", "귀 보온", 2))
	}
	if opts.ScheduleType == ScheduleDate {
		set.Accessories = append(set.Accessories, item("a4", CategoryAccessory, "향수", "🌸", "데이트 필수템", 2))
	}

	if snowy || rainy {
		set.Essentials = append(set.Essentials, item("e1", CategoryEssential, "우산", "☂️", pick(snowy, "눈 대비", "비 대비"), 1))
	}
	if veryCold {
		set.Essentials = append(set.Essentials, item("e2", CategoryEssential, "핫팩", "🔥", fmt.Sprintf("체감온도 %d°C", feelsLike), 1))
	}
	if opts.ScheduleType == ScheduleTravel || opts.ScheduleType == ScheduleOutdoor {
		set.Essentials = append(set.Essentials, item("e3", CategoryEssential, "보조배터리", "🔋", "야외 활동 필수", 2))
	}

	for _, items := range [][]Item{set.Outer, set.Top, set.Bottom, set.Shoes, set.Accessories, set.Essentials} {
		sortByPriority(items)
	}
	return set
}

func item(id string, cat Category, name, icon, reason string, priority int) Item {
	return Item{ID: id, Category: cat, Name: name, Icon: icon, Reason: reason, Priority: priority}
}

func sortByPriority(items []Item) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Priority < items[j].Priority
	})
}
