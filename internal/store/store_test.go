package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/i474232898/weather-outfit/internal/recommend"
	"github.com/i474232898/weather-outfit/internal/weather"
)

func openStores(t *testing.T) map[string]PreferenceStore {
	t.Helper()
	sqlite, err := NewSQLiteStore(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]PreferenceStore{
		"memory": NewMemoryStore(),
		"sqlite": sqlite,
	}
}

func TestPreferenceStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Load(ctx)
			require.ErrorIs(t, err, ErrNotFound)

			opts := recommend.DefaultOptions()
			opts.ScheduleDescription = "주말 등산"
			prefs := Preferences{
				Options:  opts,
				Location: &weather.Location{Lat: 35.1796, Lon: 129.0756, City: "부산"},
			}
			require.NoError(t, s.Save(ctx, prefs))

			got, err := s.Load(ctx)
			require.NoError(t, err)
			require.Equal(t, prefs, got)

			// saving again replaces the single document
			prefs.Location = nil
			prefs.Options = prefs.Options.ToggleStyle(recommend.StyleWarm)
			require.NoError(t, s.Save(ctx, prefs))

			got, err = s.Load(ctx)
			require.NoError(t, err)
			require.Nil(t, got.Location)
			require.Equal(t, []recommend.FashionStyle{recommend.StyleCasual}, got.Options.FashionStyles)
		})
	}
}

func TestMemoryStoreIsolatesCallers(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	prefs := Preferences{Options: recommend.DefaultOptions()}
	require.NoError(t, s.Save(ctx, prefs))

	prefs.Options.FashionStyles[0] = recommend.StyleFormal

	got, err := s.Load(ctx)
	require.NoError(t, err)
	require.Equal(t, recommend.StyleCasual, got.Options.FashionStyles[0])
}

func TestSQLiteStoreCorruptDocument(t *testing.T) {
	s, err := NewSQLiteStore(filepath.Join(t.TempDir(), "prefs.db"))
	require.NoError(t, err)
	defer s.Close()

	_, err = s.db.Exec(`INSERT INTO preferences(key, value, updated_at) VALUES(?,?,?)`, PreferencesKey, "{not json", "")
	require.NoError(t, err)

	_, err = s.Load(context.Background())
	require.ErrorIs(t, err, ErrCorrupt)
}
