// Package model owns the ONNX inference session for the engagement
// classifier. The session is created once at startup and is read-only
// afterwards, so concurrent predictions need no locking.
package model

import (
	"fmt"

	ort "github.com/yalue/onnxruntime_go"

	"github.com/engagelens/engage-api/internal/engagement"
	"github.com/engagelens/engage-api/internal/imaging"
)

type Model struct {
	session  *ort.DynamicAdvancedSession
	Metadata Metadata
}

// Load initializes the ONNX runtime and opens the model. Any failure here is
// fatal for prediction traffic; the caller decides whether the process keeps
// serving liveness or exits.
func Load(modelPath, metadataPath string) (*Model, error) {
	meta, err := LoadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	// A dynamic session allocates tensors per Run call, so it is safe to
	// share across concurrent requests and accepts any batch size.
	session, err := ort.NewDynamicAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"}, nil)
	if err != nil {
		ort.DestroyEnvironment()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Model{session: session, Metadata: *meta}, nil
}

// Predict runs the model over a preprocessed batch and returns one
// probability vector per image, in batch order. A per-image output width
// other than six means the artifact does not match the taxonomy and the
// error should be treated as a configuration fault, not bad input.
func (m *Model) Predict(batch *imaging.Tensor) ([][]float32, error) {
	input, err := ort.NewTensor(ort.NewShape(batch.Shape()...), batch.Data)
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}
	defer input.Destroy()

	outputs := []ort.Value{nil}
	if err := m.session.Run([]ort.Value{input}, outputs); err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	defer outputs[0].Destroy()

	out, ok := outputs[0].(*ort.Tensor[float32])
	if !ok {
		return nil, fmt.Errorf("model returned unexpected output type %T", outputs[0])
	}

	data := out.GetData()
	if len(data) != batch.N*engagement.NumClasses {
		return nil, fmt.Errorf("model returned %d values for %d images, expected %d",
			len(data), batch.N, batch.N*engagement.NumClasses)
	}

	probs := make([][]float32, batch.N)
	for i := range probs {
		row := make([]float32, engagement.NumClasses)
		copy(row, data[i*engagement.NumClasses:(i+1)*engagement.NumClasses])
		probs[i] = row
	}
	return probs, nil
}

func (m *Model) Close() {
	if m.session != nil {
		m.session.Destroy()
	}
	ort.DestroyEnvironment()
}
