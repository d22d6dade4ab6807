package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-outfit/internal/weather"
)

const (
	DefaultIPLookupURL = "https://ipapi.co/json/"

	// CurrentLocationName labels coordinates whose city could not be named.
	CurrentLocationName = "현재 위치"

	lookupTimeout = 10 * time.Second
	maxFixAge     = 5 * time.Minute
)

// DefaultLocation is used when no position can be estimated.
var DefaultLocation = weather.Location{Lat: 37.5665, Lon: 126.9780, City: "서울"}

var (
	errLookupStatus = errors.New("ip lookup returned non-2xx status")
	errLookupShape  = errors.New("ip lookup response has no coordinates")
)

// ReverseGeocoder names the city at a coordinate.
type ReverseGeocoder interface {
	City(ctx context.Context, lat, lon float64) (string, error)
}

// Locator turns an optional caller position into a named Location.
type Locator struct {
	client      *http.Client
	ipLookupURL string
	reverse     ReverseGeocoder
	fallback    weather.Location
	now         func() time.Time

	mu       sync.Mutex
	lastFix  weather.Location
	lastTime time.Time
}

// NewLocator builds a Locator. reverse may be nil, in which case
// caller-supplied coordinates without a city are labelled CurrentLocationName.
func NewLocator(client *http.Client, ipLookupURL string, reverse ReverseGeocoder, fallback weather.Location) *Locator {
	if strings.TrimSpace(ipLookupURL) == "" {
		ipLookupURL = DefaultIPLookupURL
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Locator{
		client:      client,
		ipLookupURL: ipLookupURL,
		reverse:     reverse,
		fallback:    fallback,
		now:         time.Now,
	}
}

// Locate resolves requested when given, otherwise estimates the position
// from the caller's IP address, otherwise returns the fallback location.
// It never fails.
func (l *Locator) Locate(ctx context.Context, requested *weather.Location) weather.Location {
	if requested != nil {
		loc := *requested
		if loc.City == "" {
			loc.City = l.cityName(ctx, loc.Lat, loc.Lon)
		}
		return loc
	}

	loc, err := l.lookupIP(ctx)
	if err != nil {
		log.Printf("INFO: ip location lookup failed, using %s: %v", l.fallback.Key(), err)
		return l.fallback
	}
	return loc
}

func (l *Locator) cityName(ctx context.Context, lat, lon float64) string {
	if l.reverse == nil {
		return CurrentLocationName
	}
	city, err := l.reverse.City(ctx, lat, lon)
	if err != nil || city == "" {
		log.Printf("DEBUG: reverse geocoding %.4f,%.4f gave no city: %v", lat, lon, err)
		return CurrentLocationName
	}
	return city
}

type ipLookupResponse struct {
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// lookupIP estimates the caller position, reusing a fix younger than maxFixAge.
func (l *Locator) lookupIP(ctx context.Context) (weather.Location, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.lastTime.IsZero() && l.now().Sub(l.lastTime) < maxFixAge {
		return l.lastFix, nil
	}

	ctx, cancel := context.WithTimeout(ctx, lookupTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.ipLookupURL, nil)
	if err != nil {
		return weather.Location{}, err
	}
	resp, err := l.client.Do(req)
	if err != nil {
		return weather.Location{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return weather.Location{}, fmt.Errorf("%w: %d", errLookupStatus, resp.StatusCode)
	}

	var body ipLookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return weather.Location{}, fmt.Errorf("decode ip lookup response: %w", err)
	}
	if body.Latitude == nil || body.Longitude == nil {
		return weather.Location{}, errLookupShape
	}

	loc := weather.Location{Lat: *body.Latitude, Lon: *body.Longitude, City: body.City}
	if loc.City == "" {
		loc.City = CurrentLocationName
	}
	l.lastFix, l.lastTime = loc, l.now()
	return loc, nil
}

// Geocoder is a ReverseGeocoder backed by the Google Geocoding API.
type Geocoder struct{}

// NewGeocoder configures the geocoding client with apiKey. It returns nil
// when apiKey is empty so callers can pass the result straight to NewLocator.
func NewGeocoder(apiKey string) ReverseGeocoder {
	if strings.TrimSpace(apiKey) == "" {
		return nil
	}
	geocoder.ApiKey = apiKey
	return Geocoder{}
}

func (Geocoder) City(ctx context.Context, lat, lon float64) (string, error) {
	type result struct {
		city string
		err  error
	}
	done := make(chan result, 1)
	go func() {
		addrs, err := geocoder.GeocodingReverse(geocoder.Location{Latitude: lat, Longitude: lon})
		if err != nil {
			done <- result{err: err}
			return
		}
		for _, a := range addrs {
			if a.City != "" {
				done <- result{city: a.City}
				return
			}
		}
		done <- result{}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r := <-done:
		return r.city, r.err
	}
}
