package classify

import (
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	platformerrors "hypernasality-server-go/internal/platform/errors"
)

var ortInit sync.Once

// ONNXBackend runs the exported ResNet-18 graph: input "input" of shape
// (1, 3, size, size) float32, output "logits" of shape (1, 2). The session
// and its tensors are allocated once; Logits serializes calls because the
// session writes into the preallocated buffers.
type ONNXBackend struct {
	mu      sync.Mutex
	session *ort.AdvancedSession
	input   *ort.Tensor[float32]
	output  *ort.Tensor[float32]
}

// NewONNXBackend loads the model weights. A missing or incompatible model
// file is a config-kind error: the caller must refuse to serve.
func NewONNXBackend(modelPath string, spec InputSpec) (*ONNXBackend, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindConfig,
			"model load", fmt.Sprintf("model weights not found at %s", modelPath), err)
	}

	var initErr error
	ortInit.Do(func() {
		if lib := os.Getenv("ONNXRUNTIME_SHARED_LIBRARY_PATH"); lib != "" {
			ort.SetSharedLibraryPath(lib)
		}
		initErr = ort.InitializeEnvironment()
	})
	if initErr != nil {
		return nil, platformerrors.Wrap(platformerrors.KindConfig,
			"model load", "initialize onnxruntime", initErr)
	}

	inputShape := ort.NewShape(1, 3, int64(spec.Size), int64(spec.Size))
	inputTensor, err := ort.NewTensor(inputShape, make([]float32, spec.TensorLen()))
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindConfig,
			"model load", "allocate input tensor", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(1, 2))
	if err != nil {
		inputTensor.Destroy()
		return nil, platformerrors.Wrap(platformerrors.KindConfig,
			"model load", "allocate output tensor", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"},
		[]string{"logits"},
		[]ort.Value{inputTensor},
		[]ort.Value{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, platformerrors.Wrap(platformerrors.KindConfig,
			"model load", "create inference session (weights incompatible?)", err)
	}

	return &ONNXBackend{
		session: session,
		input:   inputTensor,
		output:  outputTensor,
	}, nil
}

// Logits runs one forward pass. Deterministic: the graph is frozen in
// inference mode, so repeated calls on the same input return the same logits.
func (b *ONNXBackend) Logits(input []float32) ([2]float32, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	copy(b.input.GetData(), input)
	if err := b.session.Run(); err != nil {
		return [2]float32{}, fmt.Errorf("run inference session: %w", err)
	}

	out := b.output.GetData()
	if len(out) != 2 {
		return [2]float32{}, fmt.Errorf("model returned %d logits, expected 2", len(out))
	}
	return [2]float32{out[0], out[1]}, nil
}

// Close destroys the session and its tensors.
func (b *ONNXBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	err := b.session.Destroy()
	b.input.Destroy()
	b.output.Destroy()
	return err
}
