// Package classifier maps a normalized hand canvas to letter scores.
package classifier

import (
	"errors"
	"fmt"
	"image"
	"os"
	"sync"

	"go.uber.org/zap"
	"gocv.io/x/gocv"

	"github.com/ayusman/signbridge/internal/alphabet"
)

// DefaultInputSize is the square input edge the network expects.
const DefaultInputSize = 224

// ErrNoModel is returned when the model file cannot be found.
var ErrNoModel = errors.New("classifier model not found")

// Classifier scores a canvas. index is the argmax of scores.
type Classifier interface {
	Classify(canvas gocv.Mat) (scores []float32, index int, err error)
	Close() error
}

// Config holds classifier settings.
type Config struct {
	// Model is the path to an ONNX (or any OpenCV DNN readable) model.
	Model string
	// InputSize is the edge of the square network input.
	InputSize int
}

// DefaultConfig returns the default classifier configuration.
func DefaultConfig() Config {
	return Config{
		Model:     "model/keras_model.onnx",
		InputSize: DefaultInputSize,
	}
}

// NetClassifier runs an OpenCV DNN network.
type NetClassifier struct {
	net    gocv.Net
	size   int
	logger *zap.Logger

	mu     sync.Mutex
	closed bool
}

// NewNetClassifier loads the network described by config.
func NewNetClassifier(config Config, logger *zap.Logger) (*NetClassifier, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.InputSize <= 0 {
		config.InputSize = DefaultInputSize
	}
	if _, err := os.Stat(config.Model); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrNoModel, config.Model)
	}

	net := gocv.ReadNet(config.Model, "")
	if net.Empty() {
		net.Close()
		return nil, fmt.Errorf("classifier: could not read model %s", config.Model)
	}

	logger.Info("classifier loaded",
		zap.String("model", config.Model),
		zap.Int("input_size", config.InputSize),
	)

	return &NetClassifier{
		net:    net,
		size:   config.InputSize,
		logger: logger,
	}, nil
}

// Classify resizes canvas to the network input, scales pixels to [-1, 1]
// in RGB order and returns the output row and its argmax.
func (c *NetClassifier) Classify(canvas gocv.Mat) ([]float32, int, error) {
	if canvas.Empty() {
		return nil, -1, errors.New("classifier: empty canvas")
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, -1, errors.New("classifier: closed")
	}

	blob := gocv.BlobFromImage(
		canvas,
		1.0/127.5,
		image.Pt(c.size, c.size),
		gocv.NewScalar(127.5, 127.5, 127.5, 0),
		true,
		false,
	)
	defer blob.Close()

	c.net.SetInput(blob, "")
	out := c.net.Forward("")
	defer out.Close()

	if out.Empty() {
		return nil, -1, errors.New("classifier: empty network output")
	}

	data, err := out.DataPtrFloat32()
	if err != nil {
		return nil, -1, fmt.Errorf("classifier: read output: %w", err)
	}

	scores := make([]float32, len(data))
	copy(scores, data)
	return scores, Argmax(scores), nil
}

// Close releases the network.
func (c *NetClassifier) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true
	return c.net.Close()
}

// Argmax returns the index of the largest score, or -1 for no scores.
func Argmax(scores []float32) int {
	best := -1
	for i, s := range scores {
		if best < 0 || s > scores[best] {
			best = i
		}
	}
	return best
}

// Letter classifies canvas and maps the result into the alphabet. An
// out-of-range index yields alphabet.None.
func Letter(c Classifier, canvas gocv.Mat) (alphabet.Letter, error) {
	_, index, err := c.Classify(canvas)
	if err != nil {
		return alphabet.None, err
	}
	return alphabet.FromIndex(index), nil
}
