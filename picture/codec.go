package picture

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// Load decodes an image file in any registered format into grayscale.
func Load(path string) (*Gray, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	return FromImage(img), nil
}

// FromImage converts with the luma weights 0.3 R + 0.59 G + 0.11 B.
// Pixels that are already gray keep their exact value.
func FromImage(img image.Image) *Gray {
	b := img.Bounds()
	out := NewGray(b.Dx(), b.Dy())
	if src, ok := img.(*image.Gray); ok {
		for y := 0; y < out.Height; y++ {
			start := src.PixOffset(b.Min.X, b.Min.Y+y)
			copy(out.Pix[y*out.Width:(y+1)*out.Width], src.Pix[start:start+out.Width])
		}
		return out
	}
	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			r, g, bl, _ := img.At(x, y).RGBA()
			r, g, bl = r>>8, g>>8, bl>>8
			if r == g && g == bl {
				out.Pix[i] = uint8(r)
			} else {
				out.Pix[i] = uint8(0.3*float32(r) + 0.59*float32(g) + 0.11*float32(bl))
			}
			i++
		}
	}
	return out
}

// Image exposes g as a standard library image sharing the same pixels.
func (g *Gray) Image() *image.Gray {
	return &image.Gray{
		Pix:    g.Pix,
		Stride: g.Width,
		Rect:   image.Rect(0, 0, g.Width, g.Height),
	}
}

// Downscale shrinks g by an integer factor with Catmull-Rom resampling.
// Factors below 2 return g unchanged.
func Downscale(g *Gray, factor int) *Gray {
	if factor < 2 {
		return g
	}
	w, h := g.Width/factor, g.Height/factor
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	out := NewGray(w, h)
	draw.CatmullRom.Scale(out.Image(), out.Image().Rect, g.Image(), g.Image().Rect, draw.Src, nil)
	return out
}

func SavePNG(path string, g *Gray) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, g.Image()); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
