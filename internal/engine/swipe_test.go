package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fanspark/discovery/internal/engine"
)

func TestGestureClassify(t *testing.T) {
	cases := []struct {
		name    string
		gesture engine.Gesture
		dir     engine.Direction
		ok      bool
	}{
		{"right past threshold is like", engine.Gesture{DX: 120}, engine.DirectionLike, true},
		{"left past threshold is pass", engine.Gesture{DX: -150}, engine.DirectionPass, true},
		{"up past threshold is super like", engine.Gesture{DY: -200}, engine.DirectionSuperLike, true},
		{"super like beats horizontal when both cross", engine.Gesture{DX: 300, DY: -250}, engine.DirectionSuperLike, true},
		{"short drag decides nothing", engine.Gesture{DX: 40, DY: -30}, "", false},
		{"exact horizontal threshold decides", engine.Gesture{DX: 100}, engine.DirectionLike, true},
		{"downward drag decides nothing", engine.Gesture{DY: 300}, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dir, ok := tc.gesture.Classify()
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.dir, dir)
		})
	}
}

func TestDecisionStateString(t *testing.T) {
	assert.Equal(t, "presenting", engine.StatePresenting.String())
	assert.Equal(t, "committing", engine.StateCommitting.String())
	assert.Equal(t, "resolved", engine.StateResolved.String())
	assert.Equal(t, "rejected", engine.StateRejected.String())
}
