package render_pass

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-deferred/engine/renderer/device"
	"github.com/stretchr/testify/assert"
)

type stubPass struct {
	id PassID
}

func (s stubPass) ID() PassID                      { return s.id }
func (s stubPass) Setup()                          {}
func (s stubPass) Update(Context)                  {}
func (s stubPass) Draw(Context)                    {}
func (s stubPass) GlobalBind(device.RenderEncoder) {}
func (s stubPass) Release()                        {}

func ids(passes []RenderPass) []PassID {
	out := make([]PassID, len(passes))
	for i, p := range passes {
		out[i] = p.ID()
	}
	return out
}

func TestSortOrdersByIdentifier(t *testing.T) {
	in := []RenderPass{stubPass{PassDisplay}, stubPass{PassUI}, stubPass{PassClear}, stubPass{PassGBuffer}, stubPass{PassLighting}}
	out := Sort(in)

	assert.Equal(t, []PassID{PassClear, PassGBuffer, PassLighting, PassUI, PassDisplay}, ids(out))
	assert.Equal(t, PassDisplay, in[0].ID(), "input slice must not be reordered")
}

func TestSortPanicsOnDuplicate(t *testing.T) {
	assert.Panics(t, func() {
		Sort([]RenderPass{stubPass{PassGBuffer}, stubPass{PassGBuffer}})
	})
}

func TestSortPanicsOnInvalidIdentifier(t *testing.T) {
	assert.Panics(t, func() { Sort([]RenderPass{stubPass{PassCount}}) })
	assert.Panics(t, func() { Sort([]RenderPass{stubPass{-1}}) })
}

func TestPassIDOrder(t *testing.T) {
	assert.Equal(t, PassID(0), PassClear)
	assert.Equal(t, PassID(3), PassGBuffer)
	assert.Equal(t, PassID(8), PassUI)
	assert.Equal(t, PassID(9), PassDisplay)
	assert.Equal(t, "Lighting", PassLighting.String())
	assert.Equal(t, "PassID(42)", PassID(42).String())
}
