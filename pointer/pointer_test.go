package pointer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestButton(t *testing.T) {
	assert.Equal(t, "left", ButtonLeft.String())
	assert.Equal(t, "task", ButtonTask.String())
	assert.Equal(t, "unknown", Button(0).String())
	assert.Equal(t, "unknown", Button(0x200).String())
}

func TestScrollDelta(t *testing.T) {
	var d ScrollDelta

	_, ok := d.Take()
	assert.False(t, ok)

	d.AddPixels(false, 12.5)
	d.AddPixels(true, -3)
	delta, ok := d.Take()
	assert.True(t, ok)
	assert.Equal(t, ScrollDelta{X: -3, Y: 12.5}, delta)

	d.AddPixels(false, 10)
	d.AddLines(false, 1)
	d.AddPixels(false, 10)
	delta, ok = d.Take()
	assert.True(t, ok)
	assert.Equal(t, ScrollDelta{Lines: true, Y: 1}, delta)

	_, ok = d.Take()
	assert.False(t, ok)
}
