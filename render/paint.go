package render

import (
	"errors"
	"image"

	"deedles.dev/waysmoke/internal/logger"
	"deedles.dev/waysmoke/ui"
	"github.com/gogpu/gg"
)

// Paint clears dc and draws prim into it. Primitive coordinates are
// logical and are multiplied by scale.
func Paint(dc *gg.Context, prim ui.Primitive, scale float64, images *ImageCache) error {
	dc.Clear()
	dc.Identity()
	dc.Scale(scale, scale)

	return paint(dc, prim, images)
}

func paint(dc *gg.Context, p ui.Primitive, images *ImageCache) error {
	switch p.Kind {
	case ui.KindGroup:
		var errs []error
		for _, c := range p.Children {
			errs = append(errs, paint(dc, c, images))
		}
		return errors.Join(errs...)

	case ui.KindQuad:
		return paintQuad(dc, p)

	case ui.KindImage:
		buf, err := images.Image(p.Image)
		if err != nil {
			logger.Debug("skipping image", "err", err)
			return nil
		}
		drawImage(dc, buf, p.Bounds)
		return nil

	case ui.KindText:
		if p.Text == "" {
			return nil
		}
		drawImage(dc, images.Text(p.Text, p.Color), p.Bounds)
		return nil
	}

	return nil
}

func paintQuad(dc *gg.Context, p ui.Primitive) error {
	x, y := float64(p.Bounds.Min.X), float64(p.Bounds.Min.Y)
	w, h := float64(p.Bounds.Dx()), float64(p.Bounds.Dy())
	shape := func() {
		if p.Radius > 0 {
			dc.DrawRoundedRectangle(x, y, w, h, p.Radius)
			return
		}
		dc.DrawRectangle(x, y, w, h)
	}

	if p.Color.A > 0 {
		shape()
		dc.SetColor(p.Color)
		err := dc.Fill()
		if err != nil {
			return err
		}
	}

	if p.BorderWidth > 0 && p.BorderColor.A > 0 {
		shape()
		dc.SetColor(p.BorderColor)
		dc.SetLineWidth(p.BorderWidth)
		err := dc.Stroke()
		if err != nil {
			return err
		}
	}

	return nil
}

func drawImage(dc *gg.Context, buf *gg.ImageBuf, r image.Rectangle) {
	if r.Empty() {
		return
	}

	dc.DrawImageEx(buf, gg.DrawImageOptions{
		X:         float64(r.Min.X),
		Y:         float64(r.Min.Y),
		DstWidth:  float64(r.Dx()),
		DstHeight: float64(r.Dy()),
	})
}
