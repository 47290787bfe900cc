// Package classify wraps the frozen binary image classifier: tensor
// construction, inference, and softmax post-processing.
package classify

import (
	"fmt"
	"math"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

// Labels for the two classes, indexed by class ID.
var Labels = [2]string{"Control", "Hypernasal"}

// Prediction is the final, immutable classification outcome.
type Prediction struct {
	ClassID       int
	Label         string
	Confidence    float64
	Probabilities [2]float64
}

// Backend produces two class logits for a prepared input tensor. The ONNX
// session is the production implementation; tests substitute fixed logits.
type Backend interface {
	Logits(input []float32) ([2]float32, error)
	Close() error
}

// Classifier validates the input contract, runs the backend, and converts
// logits into a calibrated prediction. Stateless per call: safe for
// concurrent use against the same loaded weights.
type Classifier struct {
	backend Backend
	spec    InputSpec
}

func NewClassifier(backend Backend, spec InputSpec) *Classifier {
	return &Classifier{backend: backend, spec: spec}
}

// Classify runs inference on a prepared input tensor.
func (c *Classifier) Classify(input []float32) (*Prediction, error) {
	if len(input) != c.spec.TensorLen() {
		return nil, platformerrors.New(platformerrors.KindShape, "classify",
			fmt.Sprintf("input tensor has %d values, model expects %d",
				len(input), c.spec.TensorLen()))
	}

	logits, err := c.backend.Logits(input)
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindUnknown,
			"classify", "inference failed", err)
	}

	probs := softmax2(logits)
	classID := 0
	if probs[1] > probs[0] {
		classID = 1
	}

	return &Prediction{
		ClassID:       classID,
		Label:         Labels[classID],
		Confidence:    probs[classID],
		Probabilities: probs,
	}, nil
}

// Close releases the inference backend.
func (c *Classifier) Close() error {
	return c.backend.Close()
}

// softmax2 maps two logits onto a probability simplex. Shifted by the max
// logit for numerical stability.
func softmax2(logits [2]float32) [2]float64 {
	a, b := float64(logits[0]), float64(logits[1])
	m := math.Max(a, b)
	ea := math.Exp(a - m)
	eb := math.Exp(b - m)
	sum := ea + eb
	return [2]float64{ea / sum, eb / sum}
}
