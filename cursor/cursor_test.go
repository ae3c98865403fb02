package cursor

import (
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
)

func testImage(w, h int, hot image.Point) *Image {
	return &Image{
		Pix:    make([]byte, w*4*h),
		Size:   image.Pt(w, h),
		Stride: w * 4,
		Hot:    hot,
	}
}

func TestCrop(t *testing.T) {
	tests := []struct {
		name  string
		img   *Image
		scale int
		size  image.Point
		hot   image.Point
	}{
		{name: "Multiple", img: testImage(48, 48, image.Pt(4, 4)), scale: 2, size: image.Pt(48, 48), hot: image.Pt(4, 4)},
		{name: "Odd", img: testImage(49, 47, image.Pt(3, 5)), scale: 2, size: image.Pt(48, 46), hot: image.Pt(3, 5)},
		{name: "Triple", img: testImage(50, 50, image.Pt(10, 10)), scale: 3, size: image.Pt(48, 48), hot: image.Pt(10, 10)},
		{name: "Hot clamped", img: testImage(25, 25, image.Pt(24, 24)), scale: 2, size: image.Pt(24, 24), hot: image.Pt(23, 23)},
		{name: "Too small", img: testImage(1, 1, image.Point{}), scale: 2, size: image.Pt(1, 1)},
		{name: "Unscaled", img: testImage(25, 25, image.Pt(1, 1)), scale: 1, size: image.Pt(25, 25), hot: image.Pt(1, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := tt.img.crop(tt.scale)
			assert.Equal(t, tt.size, img.Size)
			assert.Equal(t, tt.hot, img.Hot)
			assert.Equal(t, tt.img.Stride, img.Stride)
			assert.Len(t, img.Pix, img.Stride*img.Size.Y)
		})
	}
}

func TestFitsScale(t *testing.T) {
	img := testImage(49, 47, image.Point{})
	assert.False(t, img.fitsScale(2))
	assert.True(t, img.crop(2).fitsScale(2))
	assert.True(t, img.fitsScale(1))
	assert.False(t, testImage(1, 1, image.Point{}).crop(2).fitsScale(2))
}
