package surface

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMerge(t *testing.T) {
	base := Class("active", true).Merge(Width("10%"))
	merged := base.Merge(Class("active", false)).Merge(Text("hi")).Merge(Disabled(true))

	assert.False(t, merged.Classes["active"])
	assert.Equal(t, "10%", merged.Style["width"])
	require.NotNil(t, merged.Text)
	assert.Equal(t, "hi", *merged.Text)
	require.NotNil(t, merged.Disabled)
	assert.True(t, *merged.Disabled)

	// base is not mutated
	assert.True(t, base.Classes["active"])
	assert.Nil(t, base.Text)
}

func TestStateClassNames(t *testing.T) {
	s := Class("b", true).Merge(Class("a", true)).Merge(Class("c", false))
	assert.Equal(t, []string{"a", "b"}, s.ClassNames())
	assert.True(t, State{}.IsZero())
	assert.False(t, Show().IsZero())
}

func TestRecorder_Lifecycle(t *testing.T) {
	r := NewRecorder()

	require.NoError(t, r.Render(Node{ID: "t1", Role: "toast"}))
	assert.True(t, r.Has("t1"))
	assert.Len(t, r.Present("toast"), 1)

	require.NoError(t, r.SetVisualState("t1", Show()))
	assert.True(t, r.HasClass("t1", "show"))

	require.NoError(t, r.Remove("t1"))
	assert.False(t, r.Has("t1"))
	assert.Empty(t, r.Errors())

	err := r.Remove("t1")
	assert.ErrorIs(t, err, ErrUnknownNode)
	assert.Len(t, r.Errors(), 1)
}

func TestRecorder_DoubleRender(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.Render(Node{ID: "x"}))
	assert.Error(t, r.Render(Node{ID: "x"}))
	assert.Len(t, r.Errors(), 1)
}

func TestRecorder_StaticElements(t *testing.T) {
	r := NewRecorder()
	require.NoError(t, r.SetVisualState("next", Disabled(true)))
	require.NoError(t, r.SetVisualState("count", Text("5+")))
	require.NoError(t, r.ScrollIntoView("form"))

	assert.True(t, r.IsDisabled("next"))
	assert.Equal(t, "5+", r.TextOf("count"))
	assert.Equal(t, []NodeID{"form"}, r.Scrolls())
	assert.Len(t, r.CallsFor("next"), 1)
}
