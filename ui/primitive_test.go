package ui

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

var (
	red   = color.NRGBA{255, 0, 0, 255}
	green = color.NRGBA{0, 255, 0, 255}
	blue  = color.NRGBA{0, 0, 255, 255}
)

func TestDamage(t *testing.T) {
	r1 := image.Rect(0, 0, 10, 10)
	r2 := image.Rect(20, 0, 30, 10)
	prev := Group(Quad(r1, red, 0), Quad(r2, blue, 0))

	tests := []struct {
		name     string
		next     Primitive
		expected []image.Rectangle
	}{
		{
			name: "Identical",
			next: Group(Quad(r1, red, 0), Quad(r2, blue, 0)),
		},
		{
			name:     "Recolored",
			next:     Group(Quad(r1, red, 0), Quad(r2, green, 0)),
			expected: []image.Rectangle{r2},
		},
		{
			name:     "Moved",
			next:     Group(Quad(r1.Add(image.Pt(5, 0)), red, 0), Quad(r2, blue, 0)),
			expected: []image.Rectangle{image.Rect(0, 0, 15, 10)},
		},
		{
			name:     "Restructured",
			next:     Group(Quad(r1, red, 0)),
			expected: []image.Rectangle{image.Rect(0, 0, 30, 10)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			damage := Damage(prev, tt.next)
			if tt.expected == nil {
				assert.Empty(t, damage)
				return
			}
			assert.ElementsMatch(t, tt.expected, damage)
		})
	}
}

func TestDamageIdempotent(t *testing.T) {
	p := Group(
		Quad(image.Rect(0, 0, 100, 20), red, 3),
		Primitive{Kind: KindText, Bounds: image.Rect(4, 4, 40, 16), Text: "hi", TextSize: 12, Color: green},
	)
	assert.Empty(t, Damage(p, p))
}

func TestMerge(t *testing.T) {
	rects := merge([]image.Rectangle{
		image.Rect(0, 0, 10, 10),
		image.Rect(20, 20, 30, 30),
		image.Rect(5, 5, 15, 15),
		image.Rect(14, 14, 21, 21),
	})
	assert.Equal(t, []image.Rectangle{image.Rect(0, 0, 30, 30)}, rects)
}

func TestGroupDropsEmpty(t *testing.T) {
	g := Group(Primitive{}, Quad(image.Rect(1, 1, 2, 2), red, 0), Group())
	assert.Len(t, g.Children, 1)
	assert.Equal(t, image.Rect(1, 1, 2, 2), g.Bounds)
}

func TestImageEqualByIdentity(t *testing.T) {
	a := ImageFromPath("/icon.png")
	b := ImageFromPath("/icon.png")
	r := image.Rect(0, 0, 48, 48)

	assert.True(t, Primitive{Kind: KindImage, Bounds: r, Image: a}.Equal(Primitive{Kind: KindImage, Bounds: r, Image: a}))
	assert.False(t, Primitive{Kind: KindImage, Bounds: r, Image: a}.Equal(Primitive{Kind: KindImage, Bounds: r, Image: b}))
	assert.NotEqual(t, a.ID(), b.ID())
}
