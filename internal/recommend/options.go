package recommend

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-outfit/internal/common"
)

// Transportation is how the user gets around tomorrow.
type Transportation string

const (
	TransportCar           Transportation = "car"
	TransportTaxi          Transportation = "taxi"
	TransportPublicTransit Transportation = "public_transit"
	TransportBicycle       Transportation = "bicycle"
	TransportMotorcycle    Transportation = "motorcycle"
	TransportWalking       Transportation = "walking"
	TransportKickboard     Transportation = "kickboard"
)

// ScheduleType is the main plan for tomorrow.
type ScheduleType string

const (
	ScheduleWork         ScheduleType = "work"
	ScheduleMeeting      ScheduleType = "meeting"
	ScheduleDate         ScheduleType = "date"
	ScheduleTravel       ScheduleType = "travel"
	ScheduleExercise     ScheduleType = "exercise"
	ScheduleSchool       ScheduleType = "school"
	ScheduleHome         ScheduleType = "home"
	ScheduleEvent        ScheduleType = "event"
	ScheduleOutdoor      ScheduleType = "outdoor"
	ScheduleCasualOuting ScheduleType = "casual_outing"
)

// FashionStyle is a preferred style tag.
type FashionStyle string

const (
	StyleCasual         FashionStyle = "casual"
	StyleFormal         FashionStyle = "formal"
	StyleBusinessCasual FashionStyle = "business_casual"
	StyleSporty         FashionStyle = "sporty"
	StyleMinimal        FashionStyle = "minimal"
	StyleStreet         FashionStyle = "street"
	StyleLovely         FashionStyle = "lovely"
	StyleClassic        FashionStyle = "classic"
	StyleWarm           FashionStyle = "warm"
	StyleLight          FashionStyle = "light"
)

// ErrInvalidOptions is returned when options fail validation.
var ErrInvalidOptions = errors.New("invalid user options")

// UserOptions is the user context the engine combines with weather.
// ScheduleDescription is free text kept for display only.
type UserOptions struct {
	Transportation      Transportation `json:"transportation" validate:"required,oneof=car taxi public_transit bicycle motorcycle walking kickboard"`
	ScheduleType        ScheduleType   `json:"scheduleType" validate:"required,oneof=work meeting date travel exercise school home event outdoor casual_outing"`
	ScheduleDescription string         `json:"scheduleDescription" validate:"max=200"`
	FashionStyles       []FashionStyle `json:"fashionStyles" validate:"dive,oneof=casual formal business_casual sporty minimal street lovely classic warm light"`
}

// OptionsPatch carries a partial options update; nil fields are left as is.
type OptionsPatch struct {
	Transportation      *Transportation `json:"transportation,omitempty"`
	ScheduleType        *ScheduleType   `json:"scheduleType,omitempty"`
	ScheduleDescription *string         `json:"scheduleDescription,omitempty"`
	FashionStyles       []FashionStyle  `json:"fashionStyles,omitempty"`
}

var validate = validator.New()

// DefaultOptions returns the options a fresh session starts with.
func DefaultOptions() UserOptions {
	return UserOptions{
		Transportation: TransportPublicTransit,
		ScheduleType:   ScheduleWork,
		FashionStyles:  []FashionStyle{StyleCasual, StyleWarm},
	}
}

// Validate checks every field against the known vocabularies.
func (o UserOptions) Validate() error {
	if err := validate.Struct(o); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidOptions, err)
	}
	return nil
}

// Merge applies p over o and returns the result; o is not modified.
func (o UserOptions) Merge(p OptionsPatch) UserOptions {
	out := o.Clone()
	if p.Transportation != nil {
		out.Transportation = *p.Transportation
	}
	if p.ScheduleType != nil {
		out.ScheduleType = *p.ScheduleType
	}
	if p.ScheduleDescription != nil {
		out.ScheduleDescription = *p.ScheduleDescription
	}
	if p.FashionStyles != nil {
		out.FashionStyles = append([]FashionStyle(nil), p.FashionStyles...)
	}
	return out
}

// ToggleStyle adds style when absent and removes it when present.
func (o UserOptions) ToggleStyle(style FashionStyle) UserOptions {
	out := o.Clone()
	out.FashionStyles = common.Toggle(o.FashionStyles, style)
	return out
}

// Clone returns a deep copy of o.
func (o UserOptions) Clone() UserOptions {
	out := o
	if o.FashionStyles != nil {
		out.FashionStyles = append([]FashionStyle(nil), o.FashionStyles...)
	}
	return out
}

// Preset is a selectable option with its display name and icon.
type Preset struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

// TransportPreset adds how exposed to the weather a mode of transport is.
type TransportPreset struct {
	Preset
	Exposure string `json:"exposureLevel"`
}

// Catalog lists every selectable option in display order.
type Catalog struct {
	Transportation []TransportPreset `json:"transportation"`
	Schedules      []Preset          `json:"schedules"`
	Styles         []Preset          `json:"styles"`
}

// Presets returns the option catalog shown to users.
func Presets() Catalog {
	return Catalog{
		Transportation: []TransportPreset{
			{Preset{string(TransportCar), "자가용", "🚗"}, "low"},
			{Preset{string(TransportTaxi), "택시", "🚕"}, "low"},
			{Preset{string(TransportPublicTransit), "대중교통", "🚌"}, "medium"},
			{Preset{string(TransportBicycle), "자전거", "🚲"}, "very_high"},
			{Preset{string(TransportMotorcycle), "오토바이", "🏍️"}, "very_high"},
			{Preset{string(TransportWalking), "걷기", "🚶"}, "high"},
			{Preset{string(TransportKickboard), "전동킥보드", "🛴"}, "very_high"},
		},
		Schedules: []Preset{
			{string(ScheduleWork), "출근/업무", "💼"},
			{string(ScheduleMeeting), "미팅/면접", "🤝"},
			{string(ScheduleDate), "데이트", "💕"},
			{string(ScheduleTravel), "여행/나들이", "✈️"},
			{string(ScheduleExercise), "운동", "🏋️"},
			{string(ScheduleSchool), "등교/학교", "📚"},
			{string(ScheduleHome), "재택/집", "🏠"},
			{string(ScheduleEvent), "행사/파티", "🎉"},
			{string(ScheduleOutdoor), "야외활동", "⛰️"},
			{string(ScheduleCasualOuting), "가벼운 외출", "🚶"},
		},
		Styles: []Preset{
			{string(StyleCasual), "캐주얼", "👕"},
			{string(StyleFormal), "포멀", "👔"},
			{string(StyleBusinessCasual), "비캐", "👞"},
			{string(StyleSporty), "스포티", "🏃"},
			{string(StyleMinimal), "미니멀", "⬜"},
			{string(StyleStreet), "스트릿", "🧢"},
			{string(StyleLovely), "러블리", "🎀"},
			{string(StyleClassic), "클래식", "🎩"},
			{string(StyleWarm), "따뜻함", "🔥"},
			{string(StyleLight), "가벼움", "🪶"},
		},
	}
}
