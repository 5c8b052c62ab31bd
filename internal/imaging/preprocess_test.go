package imaging

import (
	"errors"
	"image"
	"image/color"
	"math"
	"testing"
)

func solidImage(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPrepareAtTargetSize(t *testing.T) {
	// Already 224x224, so no resampling happens and values are exact.
	img := solidImage(Width, Height, color.RGBA{R: 255, G: 0, B: 51, A: 255})

	tensor, err := Prepare(img)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	if tensor.N != 1 {
		t.Errorf("Expected batch of 1, got %d", tensor.N)
	}
	if len(tensor.Data) != Height*Width*Channels {
		t.Fatalf("Expected %d values, got %d", Height*Width*Channels, len(tensor.Data))
	}

	wantB := float32(51) / 255
	for i := 0; i < len(tensor.Data); i += Channels {
		if tensor.Data[i] != 1 || tensor.Data[i+1] != 0 {
			t.Fatalf("Pixel %d: expected (1, 0, ...), got (%g, %g, %g)",
				i/Channels, tensor.Data[i], tensor.Data[i+1], tensor.Data[i+2])
		}
		if math.Abs(float64(tensor.Data[i+2]-wantB)) > 1e-6 {
			t.Fatalf("Pixel %d: expected blue %g, got %g", i/Channels, wantB, tensor.Data[i+2])
		}
	}
}

func TestPrepareResizesToFixedShape(t *testing.T) {
	// Aspect ratio is not preserved; any geometry lands on 224x224.
	for _, size := range []image.Point{{10, 10}, {640, 480}, {100, 300}} {
		tensor, err := Prepare(solidImage(size.X, size.Y, color.RGBA{R: 128, G: 128, B: 128, A: 255}))
		if err != nil {
			t.Fatalf("Prepare failed for %v: %v", size, err)
		}
		if len(tensor.Data) != Height*Width*Channels {
			t.Errorf("Size %v: expected %d values, got %d", size, Height*Width*Channels, len(tensor.Data))
		}
		for i, v := range tensor.Data {
			if v < 0 || v > 1 {
				t.Fatalf("Size %v: value %g at index %d outside [0,1]", size, v, i)
			}
		}
	}
}

func TestPrepareExpandsGrayscale(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, Width, Height))
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			img.SetGray(x, y, color.Gray{Y: 100})
		}
	}

	tensor, err := Prepare(img)
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	want := float32(100) / 255
	for i := 0; i < len(tensor.Data); i += Channels {
		r, g, b := tensor.Data[i], tensor.Data[i+1], tensor.Data[i+2]
		if r != g || g != b {
			t.Fatalf("Pixel %d: grayscale should expand to equal channels, got (%g, %g, %g)", i/Channels, r, g, b)
		}
		if math.Abs(float64(r-want)) > 1e-6 {
			t.Fatalf("Pixel %d: expected %g, got %g", i/Channels, want, r)
		}
	}
}

func TestPrepareDropsAlpha(t *testing.T) {
	// A half-transparent pixel still yields three channels in range.
	tensor, err := Prepare(solidImage(Width, Height, color.NRGBA{R: 200, G: 100, B: 50, A: 128}))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	if len(tensor.Data) != Height*Width*Channels {
		t.Errorf("Expected %d values, got %d", Height*Width*Channels, len(tensor.Data))
	}
}

func TestPrepareRejectsZeroSize(t *testing.T) {
	for _, r := range []image.Rectangle{
		image.Rect(0, 0, 0, 0),
		image.Rect(0, 0, 0, 10),
		image.Rect(0, 0, 10, 0),
	} {
		if _, err := Prepare(image.NewRGBA(r)); !errors.Is(err, ErrPreprocess) {
			t.Errorf("Bounds %v: expected ErrPreprocess, got %v", r, err)
		}
	}
}

func TestStackPreservesOrder(t *testing.T) {
	first, err := Prepare(solidImage(Width, Height, color.RGBA{R: 255, A: 255}))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}
	second, err := Prepare(solidImage(Width, Height, color.RGBA{G: 255, A: 255}))
	if err != nil {
		t.Fatalf("Prepare failed: %v", err)
	}

	batch := Stack([]*Tensor{first, second})
	if batch.N != 2 {
		t.Fatalf("Expected batch of 2, got %d", batch.N)
	}
	if len(batch.Data) != 2*Height*Width*Channels {
		t.Fatalf("Expected %d values, got %d", 2*Height*Width*Channels, len(batch.Data))
	}

	// First image is red, second is green.
	if batch.Data[0] != 1 || batch.Data[1] != 0 {
		t.Errorf("Batch item 0 should be red, got (%g, %g)", batch.Data[0], batch.Data[1])
	}
	off := Height * Width * Channels
	if batch.Data[off] != 0 || batch.Data[off+1] != 1 {
		t.Errorf("Batch item 1 should be green, got (%g, %g)", batch.Data[off], batch.Data[off+1])
	}

	shape := batch.Shape()
	want := []int64{2, Height, Width, Channels}
	for i := range want {
		if shape[i] != want[i] {
			t.Errorf("Shape index %d: expected %d, got %d", i, want[i], shape[i])
		}
	}
}
