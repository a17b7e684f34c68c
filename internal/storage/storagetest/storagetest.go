// Package storagetest holds the behaviour every storage.Backend must share.
package storagetest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/radar"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/storage"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/internal/waypoint"
	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

// Run exercises a backend created by newBackend. The backend is
// initialized by Run and closed on cleanup.
func Run(t *testing.T, newBackend func(t *testing.T) storage.Backend) {
	open := func(t *testing.T) storage.Backend {
		b := newBackend(t)
		require.NoError(t, b.Init())
		t.Cleanup(func() { _ = b.Close() })
		return b
	}

	t.Run("settings missing", func(t *testing.T) {
		b := open(t)
		_, found, err := b.LoadSettings("nowhere")
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("settings round trip", func(t *testing.T) {
		b := open(t)

		s := radar.DefaultSettings()
		s.X, s.Y = 100, 40
		s.Scale = 7
		s.Size = radar.SizeForScale(7)
		s.PointSize = 5
		s.Colors[core.CategoryPlayer] = core.NewColor(1, 2, 3, 200)
		s.Visible[core.CategoryItem] = false
		s.UseWaypointColor = false
		require.NoError(t, b.SaveSettings("world:alpha", s))

		got, found, err := b.LoadSettings("world:alpha")
		require.NoError(t, err)
		require.True(t, found)
		assert.Equal(t, s, got)
	})

	t.Run("settings overwrite", func(t *testing.T) {
		b := open(t)
		s := radar.DefaultSettings()
		require.NoError(t, b.SaveSettings("k", s))
		s.X = 9
		s.UseWaypointColor = false
		s.Visible[core.CategoryPlayer] = false
		require.NoError(t, b.SaveSettings("k", s))

		got, _, err := b.LoadSettings("k")
		require.NoError(t, err)
		assert.Equal(t, 9, got.X)
		assert.False(t, got.UseWaypointColor)
		assert.False(t, got.Visible[core.CategoryPlayer])

		s.UseWaypointColor = true
		require.NoError(t, b.SaveSettings("k", s))
		got, _, err = b.LoadSettings("k")
		require.NoError(t, err)
		assert.True(t, got.UseWaypointColor)
	})

	t.Run("waypoints missing", func(t *testing.T) {
		b := open(t)
		items, err := b.LoadWaypoints("nowhere")
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("waypoints round trip keeps order", func(t *testing.T) {
		b := open(t)

		home := waypoint.Named(10, 64, -5, "home", core.Gold)
		home.Toggle()
		items := []waypoint.Waypoint{
			home,
			waypoint.New(-300, 12, 4000),
			waypoint.Named(0, 0, 0, "", core.Blue),
		}
		require.NoError(t, b.SaveWaypoints("world:alpha", items))

		got, err := b.LoadWaypoints("world:alpha")
		require.NoError(t, err)
		assert.Equal(t, items, got)
	})

	t.Run("waypoints replace and isolate keys", func(t *testing.T) {
		b := open(t)
		require.NoError(t, b.SaveWaypoints("a", []waypoint.Waypoint{waypoint.New(1, 1, 1), waypoint.New(2, 2, 2)}))
		require.NoError(t, b.SaveWaypoints("b", []waypoint.Waypoint{waypoint.New(3, 3, 3)}))
		require.NoError(t, b.SaveWaypoints("a", []waypoint.Waypoint{waypoint.New(4, 4, 4)}))

		a, err := b.LoadWaypoints("a")
		require.NoError(t, err)
		require.Len(t, a, 1)
		assert.True(t, a[0].EqualsXYZ(4, 4, 4))

		bb, err := b.LoadWaypoints("b")
		require.NoError(t, err)
		require.Len(t, bb, 1)
		assert.True(t, bb[0].EqualsXYZ(3, 3, 3))

		require.NoError(t, b.SaveWaypoints("a", nil))
		a, err = b.LoadWaypoints("a")
		require.NoError(t, err)
		assert.Empty(t, a)
	})
}
