package classifier

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	ort "github.com/yalue/onnxruntime_go"

	"go-deepfake-detector/pkg/models"
)

// Metadata describes the exported model: tensor shapes and the class
// order of the output logits. It lives in a JSON file next to the weights.
type Metadata struct {
	ModelName   string   `json:"model_name"`
	InputShape  []int64  `json:"input_shape"`
	OutputShape []int64  `json:"output_shape"`
	Classes     []string `json:"classes"`
	ImageSize   int      `json:"image_size"`
}

// Session wraps a single ONNX runtime session holding the pretrained
// network. Weights are loaded once, never mutated, and shared by all
// requests. The session reuses its input/output tensors, so forward
// passes are serialized with a mutex.
type Session struct {
	mu           sync.Mutex
	session      *ort.AdvancedSession
	inputTensor  *ort.Tensor[float32]
	outputTensor *ort.Tensor[float32]

	meta    Metadata
	realIdx int
	fakeIdx int
}

// NewSession loads the model weights and metadata and prepares the
// runtime for evaluation. Call Close to release the runtime resources.
func NewSession(modelPath, metadataPath string) (*Session, error) {
	meta, err := loadMetadata(metadataPath)
	if err != nil {
		return nil, err
	}

	realIdx, fakeIdx, err := classIndexes(meta.Classes)
	if err != nil {
		return nil, err
	}

	if err := ort.InitializeEnvironment(); err != nil {
		return nil, fmt.Errorf("failed to initialize ONNX environment: %w", err)
	}

	inputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.InputShape...))
	if err != nil {
		return nil, fmt.Errorf("failed to create input tensor: %w", err)
	}

	outputTensor, err := ort.NewEmptyTensor[float32](ort.NewShape(meta.OutputShape...))
	if err != nil {
		inputTensor.Destroy()
		return nil, fmt.Errorf("failed to create output tensor: %w", err)
	}

	session, err := ort.NewAdvancedSession(modelPath,
		[]string{"input"}, []string{"output"},
		[]ort.ArbitraryTensor{inputTensor}, []ort.ArbitraryTensor{outputTensor},
		nil)
	if err != nil {
		inputTensor.Destroy()
		outputTensor.Destroy()
		return nil, fmt.Errorf("failed to create ONNX session: %w", err)
	}

	return &Session{
		session:      session,
		inputTensor:  inputTensor,
		outputTensor: outputTensor,
		meta:         meta,
		realIdx:      realIdx,
		fakeIdx:      fakeIdx,
	}, nil
}

func loadMetadata(path string) (Metadata, error) {
	var meta Metadata

	raw, err := os.ReadFile(path)
	if err != nil {
		return meta, fmt.Errorf("failed to read model metadata: %w", err)
	}
	if err := json.Unmarshal(raw, &meta); err != nil {
		return meta, fmt.Errorf("failed to parse model metadata: %w", err)
	}

	if len(meta.Classes) != 2 {
		return meta, fmt.Errorf("expected 2 classes in metadata, got %d", len(meta.Classes))
	}
	if len(meta.InputShape) == 0 || len(meta.OutputShape) == 0 {
		return meta, fmt.Errorf("metadata is missing tensor shapes")
	}
	return meta, nil
}

// classIndexes locates the "real" and "fake" logits in the output vector
func classIndexes(classes []string) (int, int, error) {
	realIdx, fakeIdx := -1, -1
	for i, c := range classes {
		switch c {
		case "real":
			realIdx = i
		case "fake":
			fakeIdx = i
		}
	}
	if realIdx < 0 || fakeIdx < 0 {
		return 0, 0, fmt.Errorf("metadata classes must contain \"real\" and \"fake\", got %v", classes)
	}
	return realIdx, fakeIdx, nil
}

// ModelName returns a human-readable model identifier for service metadata
func (s *Session) ModelName() string {
	if s.meta.ModelName != "" {
		return s.meta.ModelName
	}
	return "efficientnet_b0"
}

// Ready reports whether the network is loaded and able to serve
func (s *Session) Ready() bool {
	return s != nil && s.session != nil
}

// Predict runs one forward pass over a normalized tensor and derives the
// structured prediction. Evaluation is read-only: identical input always
// yields identical output.
func (s *Session) Predict(input []float32) (*models.PredictionResponse, error) {
	if !s.Ready() {
		return nil, fmt.Errorf("model session is not loaded")
	}
	if len(input) != TensorSize {
		return nil, fmt.Errorf("expected tensor of %d values, got %d", TensorSize, len(input))
	}

	s.mu.Lock()
	copy(s.inputTensor.GetData(), input)

	if err := s.session.Run(); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("inference failed: %w", err)
	}

	output := s.outputTensor.GetData()
	if len(output) <= s.realIdx || len(output) <= s.fakeIdx {
		s.mu.Unlock()
		return nil, fmt.Errorf("unexpected output size %d", len(output))
	}
	realScore := output[s.realIdx]
	fakeScore := output[s.fakeIdx]
	s.mu.Unlock()

	return derivePrediction(realScore, fakeScore), nil
}

// Close releases the ONNX runtime resources
func (s *Session) Close() {
	if s.inputTensor != nil {
		s.inputTensor.Destroy()
	}
	if s.outputTensor != nil {
		s.outputTensor.Destroy()
	}
	if s.session != nil {
		s.session.Destroy()
		s.session = nil
	}
	ort.DestroyEnvironment()
}
