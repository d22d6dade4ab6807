package geo

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-outfit/internal/weather"
)

type stubGeocoder struct {
	city  string
	err   error
	calls int
}

func (s *stubGeocoder) City(_ context.Context, _, _ float64) (string, error) {
	s.calls++
	return s.city, s.err
}

func ipServer(t *testing.T, status int, body string) (*httptest.Server, *int) {
	t.Helper()
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestLocateRequestedCoordinates(t *testing.T) {
	srv, hits := ipServer(t, http.StatusOK, `{}`)

	t.Run("city kept", func(t *testing.T) {
		l := NewLocator(srv.Client(), srv.URL, &stubGeocoder{city: "unused"}, DefaultLocation)
		got := l.Locate(context.Background(), &weather.Location{Lat: 35.1, Lon: 129.0, City: "부산"})
		require.Equal(t, "부산", got.City)
	})

	t.Run("reverse geocoded", func(t *testing.T) {
		g := &stubGeocoder{city: "Paris"}
		l := NewLocator(srv.Client(), srv.URL, g, DefaultLocation)
		got := l.Locate(context.Background(), &weather.Location{Lat: 48.85, Lon: 2.35})
		require.Equal(t, weather.Location{Lat: 48.85, Lon: 2.35, City: "Paris"}, got)
		require.Equal(t, 1, g.calls)
	})

	t.Run("geocoder failure", func(t *testing.T) {
		l := NewLocator(srv.Client(), srv.URL, &stubGeocoder{err: errors.New("quota")}, DefaultLocation)
		got := l.Locate(context.Background(), &weather.Location{Lat: 48.85, Lon: 2.35})
		require.Equal(t, CurrentLocationName, got.City)
	})

	t.Run("no geocoder", func(t *testing.T) {
		l := NewLocator(srv.Client(), srv.URL, NewGeocoder(""), DefaultLocation)
		got := l.Locate(context.Background(), &weather.Location{Lat: 48.85, Lon: 2.35})
		require.Equal(t, CurrentLocationName, got.City)
	})

	require.Zero(t, *hits)
}

func TestLocateByIPCachesFix(t *testing.T) {
	srv, hits := ipServer(t, http.StatusOK, `{"city":"Busan","latitude":35.1796,"longitude":129.0756}`)
	l := NewLocator(srv.Client(), srv.URL, nil, DefaultLocation)

	now := time.Date(2025, 1, 10, 9, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	want := weather.Location{Lat: 35.1796, Lon: 129.0756, City: "Busan"}
	require.Equal(t, want, l.Locate(context.Background(), nil))

	now = now.Add(4 * time.Minute)
	require.Equal(t, want, l.Locate(context.Background(), nil))
	require.Equal(t, 1, *hits)

	now = now.Add(2 * time.Minute)
	require.Equal(t, want, l.Locate(context.Background(), nil))
	require.Equal(t, 2, *hits)
}

func TestLocateFallsBackToDefault(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error":   {http.StatusTooManyRequests, `{"error":true}`},
		"not json":       {http.StatusOK, `<html>`},
		"no coordinates": {http.StatusOK, `{"city":"Seoul"}`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv, _ := ipServer(t, tc.status, tc.body)
			l := NewLocator(srv.Client(), srv.URL, nil, DefaultLocation)
			require.Equal(t, DefaultLocation, l.Locate(context.Background(), nil))
		})
	}
}

func TestLocateIPWithoutCity(t *testing.T) {
	srv, _ := ipServer(t, http.StatusOK, `{"latitude":0,"longitude":0}`)
	l := NewLocator(srv.Client(), srv.URL, nil, DefaultLocation)
	got := l.Locate(context.Background(), nil)
	require.Equal(t, weather.Location{City: CurrentLocationName}, got)
}
