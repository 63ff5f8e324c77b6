package slabview

import (
	"image"
	"image/draw"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

const labelGlyphSize = 64

// renderLabelGlyph rasterizes a one-letter axis label into a square RGBA
// image: a filled disc in the alpha channel with the letter in the red
// channel. The shader tints the disc with the axis color and lights up the
// letter pixels.
func renderLabelGlyph(letter string) *image.RGBA {
	const size = labelGlyphSize

	// The bitmap face is tiny; draw at native size and upscale by an integer
	// factor so the letter stays crisp.
	face := basicfont.Face7x13
	bounds, advance := font.BoundString(face, letter)
	glyphW := advance.Ceil()
	glyphH := (bounds.Max.Y - bounds.Min.Y).Ceil()

	mask := image.NewRGBA(image.Rect(0, 0, glyphW+2, glyphH+2))
	d := font.Drawer{
		Dst:  mask,
		Src:  image.White,
		Face: face,
		Dot:  fixed.P(1, glyphH+1),
	}
	d.DrawString(letter)

	const scale = 3
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.Draw(img, img.Bounds(), image.Transparent, image.Point{}, draw.Src)

	center := float64(size) / 2
	radius := float64(size)/2 - 1
	for y := 0; y < size; y++ {
		for x := 0; x < size; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			if dx*dx+dy*dy > radius*radius {
				continue
			}
			i := img.PixOffset(x, y)
			img.Pix[i+3] = 0xff

			// Map back into the small glyph mask, centered.
			mx := (x-size/2)/scale + mask.Bounds().Dx()/2
			my := (y-size/2)/scale + mask.Bounds().Dy()/2
			if mx >= 0 && my >= 0 && mx < mask.Bounds().Dx() && my < mask.Bounds().Dy() {
				img.Pix[i] = mask.Pix[mask.PixOffset(mx, my)+3]
			}
		}
	}
	return img
}
