package classify

import (
	"math"
	"testing"

	"hypernasality-server-go/internal/domain/features"
	platformerrors "hypernasality-server-go/internal/platform/errors"
)

type fixedBackend struct {
	logits [2]float32
	calls  int
}

func (f *fixedBackend) Logits(input []float32) ([2]float32, error) {
	f.calls++
	return f.logits, nil
}

func (f *fixedBackend) Close() error { return nil }

func testSpec() InputSpec {
	return InputSpec{
		Size: 224,
		Mean: [3]float32{0.485, 0.456, 0.406},
		Std:  [3]float32{0.229, 0.224, 0.225},
	}
}

func TestClassify_ProbabilitiesFormASimplex(t *testing.T) {
	tests := []struct {
		name      string
		logits    [2]float32
		wantClass int
	}{
		{"hypernasal wins", [2]float32{-1.2, 2.3}, 1},
		{"control wins", [2]float32{4.0, -0.5}, 0},
		{"near tie", [2]float32{0.01, 0.0}, 0},
		{"large magnitudes stay finite", [2]float32{500, -500}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewClassifier(&fixedBackend{logits: tt.logits}, testSpec())
			pred, err := c.Classify(make([]float32, testSpec().TensorLen()))
			if err != nil {
				t.Fatalf("Classify() error: %v", err)
			}

			sum := pred.Probabilities[0] + pred.Probabilities[1]
			if math.Abs(sum-1) > 1e-4 {
				t.Errorf("probabilities sum = %g, want 1", sum)
			}
			if pred.ClassID != tt.wantClass {
				t.Errorf("class = %d, want %d", pred.ClassID, tt.wantClass)
			}
			if pred.Label != Labels[tt.wantClass] {
				t.Errorf("label = %q, want %q", pred.Label, Labels[tt.wantClass])
			}
			maxProb := math.Max(pred.Probabilities[0], pred.Probabilities[1])
			if pred.Confidence != maxProb {
				t.Errorf("confidence %g != max probability %g", pred.Confidence, maxProb)
			}
		})
	}
}

func TestClassify_RejectsWrongTensorLength(t *testing.T) {
	c := NewClassifier(&fixedBackend{}, testSpec())

	_, err := c.Classify(make([]float32, 100))
	if err == nil {
		t.Fatal("Classify() should reject a mis-shaped tensor")
	}
	if !platformerrors.IsKind(err, platformerrors.KindShape) {
		t.Errorf("expected a shape-kind error, got %v", err)
	}
}

func TestClassify_DeterministicOnRepeatedCalls(t *testing.T) {
	backend := &fixedBackend{logits: [2]float32{0.7, -1.1}}
	c := NewClassifier(backend, testSpec())
	input := make([]float32, testSpec().TensorLen())

	first, err := c.Classify(input)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		next, err := c.Classify(input)
		if err != nil {
			t.Fatal(err)
		}
		if *next != *first {
			t.Fatalf("call %d produced %+v, first call produced %+v", i+2, next, first)
		}
	}
}

func TestBuildInput_ShapeAndNormalization(t *testing.T) {
	spec := testSpec()

	// all-zero frame set at the training shape
	values := make([][]float64, 128)
	for i := range values {
		values[i] = make([]float64, 301)
	}
	fs := &features.FrameSet{Values: values}

	tensor, err := BuildInput(fs, spec)
	if err != nil {
		t.Fatalf("BuildInput() error: %v", err)
	}
	if len(tensor) != spec.TensorLen() {
		t.Fatalf("tensor length = %d, want %d", len(tensor), spec.TensorLen())
	}

	// zero input: every channel is the constant (0 - mean) / std
	plane := spec.Size * spec.Size
	for c := 0; c < 3; c++ {
		want := (0 - spec.Mean[c]) / spec.Std[c]
		for i := 0; i < plane; i++ {
			if tensor[c*plane+i] != want {
				t.Fatalf("channel %d value = %g, want %g", c, tensor[c*plane+i], want)
			}
		}
	}
}

func TestBuildInput_ChannelsReplicateGrayscale(t *testing.T) {
	spec := testSpec()

	values := make([][]float64, 128)
	for i := range values {
		values[i] = make([]float64, 301)
		for j := range values[i] {
			values[i][j] = float64((i+j)%256) / 255
		}
	}
	tensor, err := BuildInput(&features.FrameSet{Values: values}, spec)
	if err != nil {
		t.Fatal(err)
	}

	plane := spec.Size * spec.Size
	for i := 0; i < plane; i++ {
		gray := tensor[i]*spec.Std[0] + spec.Mean[0]
		for c := 1; c < 3; c++ {
			got := tensor[c*plane+i]*spec.Std[c] + spec.Mean[c]
			if math.Abs(float64(got-gray)) > 1e-5 {
				t.Fatalf("channel %d diverges from grayscale at %d: %g vs %g", c, i, got, gray)
			}
		}
	}
}

func TestBuildInput_RejectsEmptyFrameSet(t *testing.T) {
	_, err := BuildInput(&features.FrameSet{}, testSpec())
	if !platformerrors.IsKind(err, platformerrors.KindShape) {
		t.Errorf("expected a shape-kind error, got %v", err)
	}
}
