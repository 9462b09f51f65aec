package cachestore

import (
	"context"
	"errors"
	"testing"
	"time"

	"roster-workbench/core/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time          { return c.t }
func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func testConfig() Config {
	return Config{
		Medium:         MediumDatabase,
		Namespace:      "portal",
		Version:        "v1",
		TTLMinutes:     30,
		HotCapacity:    100,
		HotTTLSeconds:  30,
		LegacyFallback: true,
	}
}

func newTestMedium(t *testing.T) *DatabaseMedium {
	t.Helper()
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	m, err := NewDatabaseMedium(db)
	require.NoError(t, err)
	return m
}

func newTestStore(t *testing.T, cfg Config) (*Store, *DatabaseMedium, *fakeClock) {
	t.Helper()
	medium := newTestMedium(t)
	clock := &fakeClock{t: time.Date(2026, 1, 1, 8, 0, 0, 0, time.UTC)}
	s := New(medium, cfg, nil).WithClock(clock.Now)
	t.Cleanup(s.Close)
	return s, medium, clock
}

type entity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestKey_String(t *testing.T) {
	k := Key{Namespace: "portal", Version: "v2", Scope: "collegeX:deptY", Name: "programs"}
	assert.Equal(t, "portal:v2:collegeX:deptY:programs", k.String())
	assert.Equal(t, []string{"programs_collegeX:deptY"}, k.legacyKeys())
	assert.Equal(t, []string{"programs"}, Key{Name: "programs"}.legacyKeys())
}

func TestStore_SetGet(t *testing.T) {
	ctx := context.Background()

	for _, hot := range []int{0, 100} {
		cfg := testConfig()
		cfg.HotCapacity = hot
		s, _, _ := newTestStore(t, cfg)

		key := s.Key("u42", "departments:C1")
		s.Set(ctx, key, []entity{{ID: "D1", Name: "Physics"}}, time.Hour)

		var got []entity
		assert.True(t, s.Get(ctx, key, &got))
		assert.Equal(t, []entity{{ID: "D1", Name: "Physics"}}, got)

		var missing []entity
		assert.False(t, s.Get(ctx, s.Key("u42", "other"), &missing))
	}
}

func TestStore_TTLExpiry(t *testing.T) {
	ctx := context.Background()
	s, medium, clock := newTestStore(t, testConfig())

	key := s.Key("u1", "colleges")
	s.Set(ctx, key, []string{"C1"}, 30*time.Minute)

	var got []string
	clock.Advance(29 * time.Minute)
	assert.True(t, s.Get(ctx, key, &got))

	clock.Advance(2 * time.Minute)
	assert.False(t, s.Get(ctx, key, &got))
	assert.False(t, s.Get(ctx, key, &got), "entry stays evicted")

	_, err := medium.Read(ctx, key.String())
	assert.ErrorIs(t, err, ErrNotFound, "expired entry is removed from the medium")
}

func TestStore_NoExpiry(t *testing.T) {
	ctx := context.Background()
	s, _, clock := newTestStore(t, testConfig())

	key := s.Key("u1", "semesters")
	s.Set(ctx, key, []int{1, 2}, 0)

	clock.Advance(365 * 24 * time.Hour)
	var got []int
	assert.True(t, s.Get(ctx, key, &got))
	assert.Equal(t, []int{1, 2}, got)
}

func TestStore_CorruptEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.HotCapacity = 0
	s, medium, _ := newTestStore(t, cfg)

	tests := []struct {
		name    string
		payload string
	}{
		{"NotJSON", "{not json"},
		{"NoValue", `{"expiresAt":null}`},
		{"WrongShape", `{"value":"a string","expiresAt":null}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			key := s.Key("u1", tt.name)
			require.NoError(t, medium.Write(ctx, key.String(), []byte(tt.payload)))

			var got []entity
			assert.False(t, s.Get(ctx, key, &got))
		})
	}
}

func TestStore_Invalidate(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t, testConfig())

	key := s.Key("u1", "colleges")
	s.Set(ctx, key, []string{"C1"}, time.Hour)
	s.Invalidate(ctx, key)

	var got []string
	assert.False(t, s.Get(ctx, key, &got))
}

func TestStore_LegacyFallback(t *testing.T) {
	ctx := context.Background()

	t.Run("ScopedLegacyKey", func(t *testing.T) {
		s, medium, _ := newTestStore(t, testConfig())
		require.NoError(t, medium.Write(ctx, "departments_u1", []byte(`["D9"]`)))

		var got []string
		assert.True(t, s.Get(ctx, s.Key("u1", "departments"), &got))
		assert.Equal(t, []string{"D9"}, got)
	})

	t.Run("BareNameIsNotScoped", func(t *testing.T) {
		s, medium, _ := newTestStore(t, testConfig())
		require.NoError(t, medium.Write(ctx, "departments", []byte(`["D9"]`)))

		var got []string
		assert.False(t, s.Get(ctx, s.Key("u1", "departments"), &got))
		assert.True(t, s.Get(ctx, s.Key("", "departments"), &got))
	})

	t.Run("HitMigrates", func(t *testing.T) {
		s, medium, _ := newTestStore(t, testConfig())
		require.NoError(t, medium.Write(ctx, "departments_u1", []byte(`["D9"]`)))

		key := s.Key("u1", "departments")
		var got []string
		require.True(t, s.Get(ctx, key, &got))

		_, err := medium.Read(ctx, "departments_u1")
		assert.ErrorIs(t, err, ErrNotFound)
		data, err := medium.Read(ctx, key.String())
		require.NoError(t, err)
		assert.Contains(t, string(data), `"value":["D9"]`)
		assert.NotContains(t, string(data), `"expiresAt":null`)
	})

	t.Run("CurrentSchemeWins", func(t *testing.T) {
		s, medium, _ := newTestStore(t, testConfig())
		require.NoError(t, medium.Write(ctx, "departments_u1", []byte(`["OLD"]`)))
		s.Set(ctx, s.Key("u1", "departments"), []string{"NEW"}, time.Hour)

		var got []string
		assert.True(t, s.Get(ctx, s.Key("u1", "departments"), &got))
		assert.Equal(t, []string{"NEW"}, got)
	})

	t.Run("Disabled", func(t *testing.T) {
		cfg := testConfig()
		cfg.LegacyFallback = false
		s, medium, _ := newTestStore(t, cfg)
		require.NoError(t, medium.Write(ctx, "departments_u1", []byte(`["OLD"]`)))

		var got []string
		assert.False(t, s.Get(ctx, s.Key("u1", "departments"), &got))
	})

	t.Run("NeverWritten", func(t *testing.T) {
		s, medium, _ := newTestStore(t, testConfig())
		s.Set(ctx, s.Key("u1", "departments"), []string{"D1"}, time.Hour)

		_, err := medium.Read(ctx, "departments_u1")
		assert.ErrorIs(t, err, ErrNotFound)
		_, err = medium.Read(ctx, "departments")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestStore_LegacyEntriesStayGone(t *testing.T) {
	ctx := context.Background()

	t.Run("AfterMigratedExpiry", func(t *testing.T) {
		s, medium, clock := newTestStore(t, testConfig())
		require.NoError(t, medium.Write(ctx, "departments_u1", []byte(`["D9"]`)))

		key := s.Key("u1", "departments")
		var got []string
		require.True(t, s.Get(ctx, key, &got))

		clock.Advance(s.DefaultTTL() + time.Minute)
		assert.False(t, s.Get(ctx, key, &got))
		assert.False(t, s.Get(ctx, key, &got))
	})

	t.Run("AfterCurrentEntryExpires", func(t *testing.T) {
		s, medium, clock := newTestStore(t, testConfig())
		require.NoError(t, medium.Write(ctx, "departments_u1", []byte(`["OLD"]`)))

		key := s.Key("u1", "departments")
		s.Set(ctx, key, []string{"NEW"}, time.Minute)

		clock.Advance(2 * time.Minute)
		var got []string
		assert.False(t, s.Get(ctx, key, &got))
		assert.False(t, s.Get(ctx, key, &got))
	})

	t.Run("AfterInvalidate", func(t *testing.T) {
		s, medium, _ := newTestStore(t, testConfig())
		require.NoError(t, medium.Write(ctx, "departments_u1", []byte(`["D9"]`)))

		key := s.Key("u1", "departments")
		s.Invalidate(ctx, key)

		var got []string
		assert.False(t, s.Get(ctx, key, &got))
		assert.False(t, s.Get(ctx, key, &got))
	})

	t.Run("AfterResetScope", func(t *testing.T) {
		s, medium, _ := newTestStore(t, testConfig())
		require.NoError(t, medium.Write(ctx, "departments_u1", []byte(`["D9"]`)))
		require.NoError(t, medium.Write(ctx, "programs_u1:D1", []byte(`["P1"]`)))
		require.NoError(t, medium.Write(ctx, "departments_u10", []byte(`["D7"]`)))

		n, err := s.ResetScope(ctx, "u1")
		require.NoError(t, err)
		assert.Equal(t, 2, n)

		var got []string
		assert.False(t, s.Get(ctx, s.Key("u1", "departments"), &got))
		assert.False(t, s.Get(ctx, s.Key("u1:D1", "programs"), &got))
		assert.True(t, s.Get(ctx, s.Key("u10", "departments"), &got))
		assert.Equal(t, []string{"D7"}, got)
	})
}

func TestStore_ResetScope(t *testing.T) {
	ctx := context.Background()
	s, _, _ := newTestStore(t, testConfig())

	s.Set(ctx, s.Key("u1", "a"), 1, time.Hour)
	s.Set(ctx, s.Key("u1", "b"), 2, time.Hour)
	s.Set(ctx, s.Key("u10", "a"), 3, time.Hour)

	n, err := s.ResetScope(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var v int
	assert.False(t, s.Get(ctx, s.Key("u1", "a"), &v))
	assert.False(t, s.Get(ctx, s.Key("u1", "b"), &v))
	assert.True(t, s.Get(ctx, s.Key("u10", "a"), &v))
	assert.Equal(t, 3, v)
}

// failingMedium fails every operation.
type failingMedium struct{}

var errMedium = errors.New("quota exceeded")

func (failingMedium) Read(context.Context, string) ([]byte, error)      { return nil, errMedium }
func (failingMedium) Write(context.Context, string, []byte) error       { return errMedium }
func (failingMedium) Delete(context.Context, string) error              { return errMedium }
func (failingMedium) DeletePrefix(context.Context, string) (int, error) { return 0, errMedium }
func (failingMedium) DeleteMatching(context.Context, string, func(string) bool) (int, error) {
	return 0, errMedium
}

func TestStore_FailuresNeverPropagate(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.HotCapacity = 0
	s := New(failingMedium{}, cfg, nil)

	key := s.Key("u1", "colleges")
	assert.NotPanics(t, func() { s.Set(ctx, key, []string{"C1"}, time.Hour) })
	assert.NotPanics(t, func() { s.Set(ctx, key, make(chan int), time.Hour) })

	var got []string
	assert.False(t, s.Get(ctx, key, &got))
	assert.NotPanics(t, func() { s.Invalidate(ctx, key) })

	_, err := s.ResetScope(ctx, "u1")
	assert.ErrorIs(t, err, errMedium)
}

func TestStore_HotTierSeesForeignResetWithinBound(t *testing.T) {
	ctx := context.Background()
	server, medium, clock := newTestStore(t, testConfig())

	cliCfg := testConfig()
	cliCfg.HotCapacity = 0
	cli := New(medium, cliCfg, nil).WithClock(clock.Now)

	key := server.Key("u1", "colleges")
	server.Set(ctx, key, []string{"C1"}, time.Hour)

	_, err := cli.ResetScope(ctx, "u1")
	require.NoError(t, err)

	var got []string
	assert.True(t, server.Get(ctx, key, &got), "hot tier answers inside its bound")
	assert.Equal(t, []string{"C1"}, got)

	clock.Advance(testConfig().HotTTL())
	got = nil
	assert.False(t, server.Get(ctx, key, &got), "reset is visible once the hot bound lapses")
}
