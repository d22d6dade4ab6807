package weather

import (
	"context"
	"log"
	"sync"
	"time"
)

// State is the orchestrator lifecycle.
type State string

const (
	StateIdle      State = "idle"
	StateResolving State = "resolving"
	StateResolved  State = "resolved"
)

// Result is the terminal outcome of one orchestrator run.
type Result struct {
	Forecast Forecast `json:"forecast"`
	Source   Source   `json:"source"`
	// Advisory is non-empty only when demo data is served.
	Advisory string `json:"advisory,omitempty"`
}

// Service picks a provider by coverage and falls back regional -> global -> demo.
type Service struct {
	regional Provider
	global   Provider
	covers   func(lat, lon float64) bool
	tz       *time.Location
	now      func() time.Time

	// run serializes orchestrator runs so only one outbound call is in flight.
	run sync.Mutex

	mu     sync.RWMutex
	state  State
	source Source
}

// NewService creates a new Service. Either provider may be nil, in which
// case that step of the chain is treated as failed.
func NewService(regional, global Provider, covers func(lat, lon float64) bool, tz *time.Location) *Service {
	if tz == nil {
		tz = time.Local
	}
	return &Service{
		regional: regional,
		global:   global,
		covers:   covers,
		tz:       tz,
		now:      time.Now,
		state:    StateIdle,
	}
}

// Status returns the current lifecycle state and, once resolved, the last source.
func (s *Service) Status() (State, Source) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state, s.source
}

// Resolve runs the fallback chain for loc. It always terminates with a
// forecast: demo data is the last resort and cannot fail.
func (s *Service) Resolve(ctx context.Context, loc Location) Result {
	s.run.Lock()
	defer s.run.Unlock()

	s.setState(StateResolving, "")

	if s.covers != nil && s.covers(loc.Lat, loc.Lon) {
		fc, err := s.attempt(ctx, s.regional, loc)
		if err == nil {
			return s.resolved(Result{Forecast: fc, Source: SourceRegional})
		}
		log.Printf("INFO: regional provider failed for %s, trying global: %v", loc.Key(), err)
	}

	fc, err := s.attempt(ctx, s.global, loc)
	if err == nil {
		return s.resolved(Result{Forecast: fc, Source: SourceGlobal})
	}
	log.Printf("ERROR: global provider failed for %s, using demo data: %v", loc.Key(), err)

	return s.resolved(Result{
		Forecast: DemoForecast(s.now().In(s.tz)),
		Source:   SourceDemo,
		Advisory: DemoAdvisory,
	})
}

func (s *Service) attempt(ctx context.Context, p Provider, loc Location) (Forecast, error) {
	if p == nil {
		return Forecast{}, errProviderNotConfigured
	}
	log.Printf("DEBUG: fetching forecast from %s for %s", p.Name(), loc.Key())
	return p.FetchForecast(ctx, loc)
}

func (s *Service) resolved(res Result) Result {
	s.setState(StateResolved, res.Source)
	return res
}

func (s *Service) setState(st State, src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = st
	s.source = src
}
