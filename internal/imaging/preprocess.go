package imaging

import (
	"errors"
	"fmt"
	"image"

	"github.com/nfnt/resize"
)

// Model input geometry. The model was trained on 224x224 RGB frames and its
// behavior on any other shape is undefined.
const (
	Height   = 224
	Width    = 224
	Channels = 3
)

// ErrPreprocess marks images that cannot be normalized into model input.
var ErrPreprocess = errors.New("image preprocessing failed")

// Tensor is a batch of N preprocessed images in NHWC layout, values in [0,1].
type Tensor struct {
	Data []float32
	N    int
}

// Shape returns the tensor dimensions as the ONNX runtime expects them.
func (t *Tensor) Shape() []int64 {
	return []int64{int64(t.N), Height, Width, Channels}
}

// Prepare converts a decoded image into a single-image input tensor: Lanczos
// resize to exactly 224x224 (aspect ratio is not preserved), RGB channel
// extraction (alpha dropped, grayscale expanded), and scaling to [0,1].
func Prepare(img image.Image) (*Tensor, error) {
	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return nil, fmt.Errorf("%w: image has zero width or height", ErrPreprocess)
	}

	resized := resize.Resize(Width, Height, img, resize.Lanczos3)
	// resize returns the source image untouched when it already matches the
	// target size, so bounds may not start at the origin.
	min := resized.Bounds().Min

	data := make([]float32, Height*Width*Channels)
	i := 0
	for y := 0; y < Height; y++ {
		for x := 0; x < Width; x++ {
			r, g, b, _ := resized.At(min.X+x, min.Y+y).RGBA()

			// RGBA returns 16-bit channels; 65535 maps back to 255/255.
			data[i] = float32(r) / 65535.0
			data[i+1] = float32(g) / 65535.0
			data[i+2] = float32(b) / 65535.0
			i += Channels
		}
	}

	return &Tensor{Data: data, N: 1}, nil
}

// Stack concatenates single-image tensors into one batch of N, preserving
// input order.
func Stack(tensors []*Tensor) *Tensor {
	total := 0
	for _, t := range tensors {
		total += t.N
	}
	data := make([]float32, 0, total*Height*Width*Channels)
	for _, t := range tensors {
		data = append(data, t.Data...)
	}
	return &Tensor{Data: data, N: total}
}
