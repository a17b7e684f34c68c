package core

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		in   string
		want Category
	}{
		{"player", CategoryPlayer},
		{" Players ", CategoryPlayer},
		{"mob", CategoryHostileMob},
		{"HOSTILE", CategoryHostileMob},
		{"animal", CategoryPeacefulMob},
		{"item_drop", CategoryItem},
		{"waypoints", CategoryWaypoint},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCategory(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseCategory_NameRoundTrip(t *testing.T) {
	for _, c := range Categories {
		parsed, err := ParseCategory(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, parsed)
	}
}

func TestParseCategory_Unknown(t *testing.T) {
	_, err := ParseCategory("vehicle")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestCategory_String(t *testing.T) {
	assert.Equal(t, "hostile", CategoryHostileMob.String())
	assert.Equal(t, "category(42)", Category(42).String())
}

func TestCategory_JSON(t *testing.T) {
	data, err := json.Marshal(Entity{ID: 7, Category: CategoryItem})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"category":"item"`)

	var e Entity
	require.NoError(t, json.Unmarshal([]byte(`{"id":3,"category":"mob"}`), &e))
	assert.Equal(t, CategoryHostileMob, e.Category)

	assert.Error(t, json.Unmarshal([]byte(`{"category":"boat"}`), &e))
}
