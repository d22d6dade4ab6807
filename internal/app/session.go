package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-outfit/internal/recommend"
	"github.com/i474232898/weather-outfit/internal/store"
	"github.com/i474232898/weather-outfit/internal/weather"
)

var (
	// ErrNoWeather is returned when recommendations are requested before any
	// forecast has been loaded.
	ErrNoWeather = errors.New("no weather loaded yet")
	// ErrInvalidLocation is returned for coordinates outside the valid range.
	ErrInvalidLocation = errors.New("invalid location")
)

var validate = validator.New()

// Forecaster resolves a two-day forecast; it never fails.
type Forecaster interface {
	Resolve(ctx context.Context, loc weather.Location) weather.Result
}

// Locator turns an optional caller position into a named location.
type Locator interface {
	Locate(ctx context.Context, requested *weather.Location) weather.Location
}

// State is a point-in-time copy of the session.
type State struct {
	Today           *weather.WeatherDay   `json:"today"`
	Tomorrow        *weather.WeatherDay   `json:"tomorrow"`
	Source          weather.Source        `json:"source,omitempty"`
	Advisory        string                `json:"advisory,omitempty"`
	Options         recommend.UserOptions `json:"options"`
	Location        *weather.Location     `json:"location"`
	Recommendations *recommend.Set        `json:"recommendations"`
	UpdatedAt       time.Time             `json:"updatedAt"`
}

// Background is the theme for tomorrow's weather, sunny until a forecast loads.
func (st State) Background() weather.Condition {
	if st.Tomorrow == nil {
		return weather.ConditionSunny
	}
	return Background(st.Tomorrow.Condition)
}

// Tip is the today/tomorrow comparison, empty until a forecast loads.
func (st State) Tip() string {
	if st.Today == nil || st.Tomorrow == nil {
		return ""
	}
	return recommend.Tip(st.Today.Temperature, st.Tomorrow.Temperature, st.Tomorrow.Condition)
}

func (st State) clone() State {
	out := st
	out.Today = cloneDay(st.Today)
	out.Tomorrow = cloneDay(st.Tomorrow)
	out.Options = st.Options.Clone()
	if st.Location != nil {
		loc := *st.Location
		out.Location = &loc
	}
	if st.Recommendations != nil {
		set := st.Recommendations.Clone()
		out.Recommendations = &set
	}
	return out
}

func cloneDay(d *weather.WeatherDay) *weather.WeatherDay {
	if d == nil {
		return nil
	}
	out := *d
	out.Periods = append([]weather.WeatherPeriod(nil), d.Periods...)
	return &out
}

// Background maps a condition to its display theme. Unknown conditions fall
// back to sunny.
func Background(cond weather.Condition) weather.Condition {
	switch cond {
	case weather.ConditionSunny, weather.ConditionPartlyCloudy, weather.ConditionCloudy,
		weather.ConditionRainy, weather.ConditionSnowy:
		return cond
	}
	return weather.ConditionSunny
}

// Session owns the single user's state. Every transition replaces the state
// value under the write lock; readers get copies.
type Session struct {
	forecaster Forecaster
	locator    Locator
	prefs      store.PreferenceStore
	now        func() time.Time

	// loading serializes Load so refreshes never overlap.
	loading sync.Mutex
	// saving orders persisted writes so the store sees them in state order.
	saving sync.Mutex

	mu    sync.RWMutex
	state State
}

// NewSession restores persisted options and location from prefs, falling
// back to defaults when nothing usable is stored.
func NewSession(ctx context.Context, forecaster Forecaster, locator Locator, prefs store.PreferenceStore) *Session {
	s := &Session{
		forecaster: forecaster,
		locator:    locator,
		prefs:      prefs,
		now:        time.Now,
		state:      State{Options: recommend.DefaultOptions()},
	}

	if prefs == nil {
		return s
	}
	saved, err := prefs.Load(ctx)
	switch {
	case errors.Is(err, store.ErrNotFound):
		log.Println("INFO: no stored preferences, using defaults")
	case err != nil:
		log.Printf("ERROR: failed to load preferences, using defaults: %v", err)
	default:
		if err := saved.Options.Validate(); err != nil {
			log.Printf("ERROR: stored options rejected, using defaults: %v", err)
		} else {
			s.state.Options = saved.Options
		}
		if saved.Location != nil && validate.Struct(saved.Location) == nil {
			loc := *saved.Location
			s.state.Location = &loc
		}
	}
	return s
}

// Snapshot returns a deep copy of the current state.
func (s *Session) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

// update applies fn to a copy of the state and stores the result.
func (s *Session) update(fn func(st *State) error) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.state.clone()
	if err := fn(&next); err != nil {
		return State{}, err
	}
	s.state = next
	return next.clone(), nil
}

// updateAndPersist applies fn like update and saves the resulting options
// and location before another persisted write can run.
func (s *Session) updateAndPersist(ctx context.Context, fn func(st *State) error) (State, error) {
	s.saving.Lock()
	defer s.saving.Unlock()

	st, err := s.update(fn)
	if err != nil {
		return State{}, err
	}
	s.persist(ctx, st)
	return st, nil
}

// SetWeather stores a resolved forecast pair with its source.
func (s *Session) SetWeather(res weather.Result) {
	_, _ = s.update(func(st *State) error {
		s.setWeather(st, res)
		return nil
	})
}

func (s *Session) setWeather(st *State, res weather.Result) {
	today, tomorrow := res.Forecast.Today, res.Forecast.Tomorrow
	st.Today = cloneDay(&today)
	st.Tomorrow = cloneDay(&tomorrow)
	st.Source = res.Source
	st.Advisory = res.Advisory
	st.UpdatedAt = s.now()
}

// SetOptions merges patch into the current options. The merged result must
// validate; on error the state is unchanged.
func (s *Session) SetOptions(ctx context.Context, patch recommend.OptionsPatch) (recommend.UserOptions, error) {
	st, err := s.updateAndPersist(ctx, func(st *State) error {
		merged := st.Options.Merge(patch)
		if err := merged.Validate(); err != nil {
			return err
		}
		st.Options = merged
		return nil
	})
	if err != nil {
		return recommend.UserOptions{}, err
	}
	return st.Options, nil
}

// ToggleStyle adds or removes a single fashion style.
func (s *Session) ToggleStyle(ctx context.Context, style recommend.FashionStyle) (recommend.UserOptions, error) {
	st, err := s.updateAndPersist(ctx, func(st *State) error {
		toggled := st.Options.ToggleStyle(style)
		if err := toggled.Validate(); err != nil {
			return err
		}
		st.Options = toggled
		return nil
	})
	if err != nil {
		return recommend.UserOptions{}, err
	}
	return st.Options, nil
}

// SetLocation replaces the remembered location.
func (s *Session) SetLocation(ctx context.Context, loc weather.Location) error {
	if err := validate.Struct(loc); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidLocation, err)
	}
	_, _ = s.updateAndPersist(ctx, func(st *State) error {
		st.Location = &loc
		return nil
	})
	return nil
}

// SetRecommendations stores a computed recommendation set.
func (s *Session) SetRecommendations(set recommend.Set) {
	set = set.Clone()
	_, _ = s.update(func(st *State) error {
		st.Recommendations = &set
		return nil
	})
}

// Load resolves the location, fetches the forecast through the fallback chain
// and recomputes recommendations from tomorrow's weather. An explicit
// requested location wins over the remembered one; with neither, the locator
// estimates a position.
func (s *Session) Load(ctx context.Context, requested *weather.Location) (State, error) {
	s.loading.Lock()
	defer s.loading.Unlock()

	loc, err := s.resolveLocation(ctx, requested)
	if err != nil {
		return State{}, err
	}

	res := s.forecaster.Resolve(ctx, loc)
	// weather and recommendations change together; readers never see one
	// without the other
	st, err := s.update(func(st *State) error {
		s.setWeather(st, res)
		return recompute(st)
	})
	if err != nil {
		return State{}, err
	}
	log.Printf("INFO: loaded forecast for %s from %s", loc.Key(), res.Source)
	return st, nil
}

// Refresh reloads the forecast for the remembered location.
func (s *Session) Refresh(ctx context.Context) error {
	_, err := s.Load(ctx, nil)
	return err
}

func (s *Session) resolveLocation(ctx context.Context, requested *weather.Location) (weather.Location, error) {
	if requested == nil {
		if cur := s.Snapshot().Location; cur != nil {
			return *cur, nil
		}
	}

	var loc weather.Location
	if s.locator != nil {
		loc = s.locator.Locate(ctx, requested)
	} else if requested != nil {
		loc = *requested
	} else {
		return weather.Location{}, fmt.Errorf("%w: no location available", ErrInvalidLocation)
	}

	if err := s.SetLocation(ctx, loc); err != nil {
		return weather.Location{}, err
	}
	return loc, nil
}

// Apply recomputes recommendations from the stored tomorrow forecast and the
// current options without fetching weather again.
func (s *Session) Apply() (recommend.Set, error) {
	st, err := s.update(recompute)
	if err != nil {
		return recommend.Set{}, err
	}
	return *st.Recommendations, nil
}

func recompute(st *State) error {
	if st.Tomorrow == nil {
		return ErrNoWeather
	}
	set := recommend.Recommend(st.Options, st.Tomorrow.Condition, st.Tomorrow.Temperature, st.Tomorrow.FeelsLike)
	st.Recommendations = &set
	return nil
}

func (s *Session) persist(ctx context.Context, st State) {
	if s.prefs == nil {
		return
	}
	if err := s.prefs.Save(ctx, store.Preferences{Options: st.Options, Location: st.Location}); err != nil {
		log.Printf("ERROR: failed to save preferences: %v", err)
	}
}
