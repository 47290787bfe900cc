package classify

import (
	"fmt"
	"image"

	"golang.org/x/image/draw"

	"hypernasality-server-go/internal/domain/features"
	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// InputSpec is the classifier's input contract: spatial resolution and the
// per-channel normalization constants the backbone was pretrained with.
type InputSpec struct {
	Size int
	Mean [3]float32
	Std  [3]float32
}

// TensorLen is the number of float32 values in one input tensor (3 channels,
// Size x Size).
func (s InputSpec) TensorLen() int {
	return 3 * s.Size * s.Size
}

// BuildInput converts a normalized frame set into the model input tensor:
// the [0,1] spectrogram becomes an 8-bit grayscale image (mel bands as rows,
// frames as columns), is bilinearly resized to Size x Size, replicated across
// three channels, and normalized per channel. CHW layout.
func BuildInput(fs *features.FrameSet, spec InputSpec) ([]float32, error) {
	mels, frames := fs.Shape()
	if mels == 0 || frames == 0 {
		return nil, platformerrors.New(platformerrors.KindShape,
			"tensor build", "empty frame set")
	}
	if spec.Size <= 0 {
		return nil, platformerrors.New(platformerrors.KindShape,
			"tensor build", fmt.Sprintf("invalid input size %d", spec.Size))
	}

	// 8-bit quantization mirrors the training pipeline, which rendered the
	// spectrogram to an image before feeding the network.
	src := image.NewGray(image.Rect(0, 0, frames, mels))
	for y := 0; y < mels; y++ {
		row := fs.Values[y]
		for x := 0; x < frames; x++ {
			src.Pix[y*src.Stride+x] = uint8(row[x] * 255)
		}
	}

	dst := image.NewGray(image.Rect(0, 0, spec.Size, spec.Size))
	draw.BiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	plane := spec.Size * spec.Size
	tensor := make([]float32, 3*plane)
	for i := 0; i < plane; i++ {
		v := float32(dst.Pix[i]) / 255
		for c := 0; c < 3; c++ {
			tensor[c*plane+i] = (v - spec.Mean[c]) / spec.Std[c]
		}
	}
	return tensor, nil
}
