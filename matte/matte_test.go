package matte

import (
	"image"
	"image/color"
	"testing"
)

// newImage builds an NRGBA image of the given width from pixels in
// row-major order.
func newImage(t *testing.T, width int, pixels ...color.NRGBA) *image.NRGBA {
	t.Helper()
	height := 0
	if width > 0 {
		height = len(pixels) / width
	}
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i, c := range pixels {
		img.SetNRGBA(i%width, i/width, c)
	}
	return img
}

func assertPixels(t *testing.T, img *image.NRGBA, want ...color.NRGBA) {
	t.Helper()
	width := img.Rect.Dx()
	for i, w := range want {
		x, y := img.Rect.Min.X+i%width, img.Rect.Min.Y+i/width
		if got := img.NRGBAAt(x, y); got != w {
			t.Errorf("pixel (%d,%d): got %v, want %v", x, y, got, w)
		}
	}
}

func TestApply_Scenario2x2(t *testing.T) {
	src := newImage(t, 2,
		color.NRGBA{0, 0, 0, 255}, color.NRGBA{20, 0, 0, 255},
		color.NRGBA{0, 20, 0, 0}, color.NRGBA{10, 10, 10, 0},
	)

	got := Apply(src, DefaultOptions())

	if got.Rect != image.Rect(0, 0, 2, 2) {
		t.Fatalf("bounds: got %v, want 2x2", got.Rect)
	}
	assertPixels(t, got, Transparent, Opaque, Opaque, Transparent)
}

func TestApply_Boundaries(t *testing.T) {
	tests := []struct {
		name string
		in   color.NRGBA
		want color.NRGBA
	}{
		{"all channels at threshold", color.NRGBA{10, 10, 10, 255}, Transparent},
		{"red just above", color.NRGBA{11, 0, 0, 255}, Opaque},
		{"green just above", color.NRGBA{0, 11, 0, 255}, Opaque},
		{"blue just above", color.NRGBA{0, 0, 11, 255}, Opaque},
		{"white", color.NRGBA{255, 255, 255, 255}, Opaque},
		{"black", color.NRGBA{0, 0, 0, 255}, Transparent},
		{"bright but transparent", color.NRGBA{200, 200, 200, 0}, Opaque},
		{"dark and transparent", color.NRGBA{5, 5, 5, 0}, Transparent},
		{"alpha alone is ignored", color.NRGBA{0, 0, 0, 200}, Transparent},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Apply(newImage(t, 1, tt.in), DefaultOptions())
			assertPixels(t, got, tt.want)
		})
	}
}

func TestApply_EmptyImage(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 0, 0),
		image.Rect(0, 0, 5, 0),
		image.Rect(0, 0, 0, 5),
	} {
		got := Apply(image.NewNRGBA(r), Options{Threshold: Threshold, Workers: 4})
		if got == nil {
			t.Fatalf("%v: Apply returned nil", r)
		}
		if got.Rect.Dx() != r.Dx() || got.Rect.Dy() != r.Dy() {
			t.Errorf("%v: got bounds %v", r, got.Rect)
		}
	}
}

func TestApply_OffsetBounds(t *testing.T) {
	src := image.NewNRGBA(image.Rect(10, 20, 13, 22))
	src.SetNRGBA(12, 21, color.NRGBA{0, 0, 255, 255})

	got := Apply(src, DefaultOptions())

	if got.Rect != image.Rect(0, 0, 3, 2) {
		t.Fatalf("bounds: got %v, want (0,0)-(3,2)", got.Rect)
	}
	assertPixels(t, got,
		Transparent, Transparent, Transparent,
		Transparent, Transparent, Opaque,
	)
}

func TestApply_WorkersGiveSameResult(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 37, 53))
	for y := 0; y < 53; y++ {
		for x := 0; x < 37; x++ {
			src.SetNRGBA(x, y, color.NRGBA{uint8(x * 7), uint8(y * 3), uint8(x ^ y), uint8(x + y)})
		}
	}

	want := Apply(src, DefaultOptions())
	for _, workers := range []int{0, 2, 3, 16, 100} {
		got := Apply(src, Options{Threshold: Threshold, Workers: workers})
		if string(got.Pix) != string(want.Pix) {
			t.Errorf("workers=%d: output differs from single worker", workers)
		}
	}
}

func TestApply_OnlyTwoColors(t *testing.T) {
	src := image.NewNRGBA(image.Rect(0, 0, 16, 16))
	for i := range src.Pix {
		src.Pix[i] = uint8(i * 13)
	}

	got := Apply(src, DefaultOptions())
	for y := 0; y < 16; y++ {
		for x := 0; x < 16; x++ {
			in := src.NRGBAAt(x, y)
			c := got.NRGBAAt(x, y)
			want := Transparent
			if Bright(in, Threshold) {
				want = Opaque
			}
			if c != want {
				t.Errorf("pixel (%d,%d) from %v: got %v, want %v", x, y, in, c, want)
			}
		}
	}
}

func TestApply_RGBASource(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 1))
	src.SetRGBA(0, 0, color.RGBA{255, 255, 255, 255})
	src.SetRGBA(1, 0, color.RGBA{3, 3, 3, 255})

	assertPixels(t, Apply(src, DefaultOptions()), Opaque, Transparent)
}

func TestApply_GraySource(t *testing.T) {
	src := image.NewGray(image.Rect(0, 0, 2, 1))
	src.SetGray(0, 0, color.Gray{Y: 10})
	src.SetGray(1, 0, color.Gray{Y: 11})

	assertPixels(t, Apply(src, DefaultOptions()), Transparent, Opaque)
}

func TestApply_NotIdempotent(t *testing.T) {
	src := newImage(t, 2, color.NRGBA{255, 255, 255, 255}, color.NRGBA{0, 0, 0, 0})

	once := Apply(src, DefaultOptions())
	assertPixels(t, once, Opaque, Transparent)

	twice := Apply(once, DefaultOptions())
	assertPixels(t, twice, Transparent, Transparent)
}

func TestApply_CustomThreshold(t *testing.T) {
	src := newImage(t, 2, color.NRGBA{100, 0, 0, 255}, color.NRGBA{101, 0, 0, 255})

	got := Apply(src, Options{Threshold: 100, Workers: 1})
	assertPixels(t, got, Transparent, Opaque)
}

func TestApply_DoesNotModifySource(t *testing.T) {
	src := newImage(t, 1, color.NRGBA{50, 60, 70, 80})
	Apply(src, DefaultOptions())
	assertPixels(t, src, color.NRGBA{50, 60, 70, 80})
}
