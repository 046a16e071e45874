package classifier

import (
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/nfnt/resize"
	_ "golang.org/x/image/webp"
)

// Model input geometry. EfficientNet-B0 takes a 3x224x224 CHW tensor.
const (
	ImageSize  = 224
	Channels   = 3
	TensorSize = Channels * ImageSize * ImageSize
)

// ImageNet normalization constants, matching the statistics the network
// was trained with.
var (
	imagenetMean = [Channels]float32{0.485, 0.456, 0.406}
	imagenetStd  = [Channels]float32{0.229, 0.224, 0.225}
)

// Preprocess decodes arbitrary image bytes and converts them into a
// normalized CHW tensor. Any decode failure means the payload is not a
// supported image.
func Preprocess(r io.Reader) ([]float32, error) {
	img, _, err := image.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image (supported: JPEG, PNG, GIF, WebP): %w", err)
	}
	return PreprocessImage(img), nil
}

// PreprocessImage resizes an already-decoded image to 224x224, scales
// pixels to [0,1] and applies per-channel ImageNet normalization. The
// output is always exactly 3*224*224 values regardless of the input
// resolution or aspect ratio.
func PreprocessImage(img image.Image) []float32 {
	resized := resize.Resize(ImageSize, ImageSize, img, resize.Lanczos3)

	bounds := resized.Bounds()
	data := make([]float32, TensorSize)
	plane := ImageSize * ImageSize

	for y := 0; y < ImageSize; y++ {
		for x := 0; x < ImageSize; x++ {
			r, g, b, _ := resized.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()

			// RGBA returns 16-bit channel values
			rNorm := float32(r) / 65535.0
			gNorm := float32(g) / 65535.0
			bNorm := float32(b) / 65535.0

			idx := y*ImageSize + x
			data[idx] = (rNorm - imagenetMean[0]) / imagenetStd[0]
			data[plane+idx] = (gNorm - imagenetMean[1]) / imagenetStd[1]
			data[2*plane+idx] = (bNorm - imagenetMean[2]) / imagenetStd[2]
		}
	}

	return data
}
