package streaming

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gavinsmod/gavinsextensiblemod-sub001/pkg/core"
)

func TestFrameEnvelope(t *testing.T) {
	data, err := Marshal(TypeFrame, FramePayload{
		Seq:      7,
		Bounds:   core.NewBox2D(core.Pt(0, 12), 65, 65),
		Backdrop: core.Black,
		Points:   []PointPayload{{X: 1, Y: 2, Color: core.Red, Size: 3}},
	})
	require.NoError(t, err)

	var env Envelope
	require.NoError(t, json.Unmarshal(data, &env))
	assert.Equal(t, TypeFrame, env.Type)
	assert.JSONEq(t, `{
		"seq": 7,
		"bounds": {"x": 0, "y": 12, "width": 65, "height": 65},
		"backdrop": "#000000FF",
		"points": [{"x": 1, "y": 2, "color": "#FF0000FF", "size": 3}]
	}`, string(env.Payload))

	var fp FramePayload
	require.NoError(t, json.Unmarshal(env.Payload, &fp))
	assert.Equal(t, core.Pt(65, 77), fp.Bounds.BottomRight())
}
