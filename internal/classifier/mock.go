package classifier

import (
	"sync"

	"gocv.io/x/gocv"
)

// MockClassifier returns a scripted index for testing.
type MockClassifier struct {
	mu     sync.Mutex
	index  int
	err    error
	calls  int
	closed bool
}

// NewMockClassifier returns a mock that always answers index.
func NewMockClassifier(index int) *MockClassifier {
	return &MockClassifier{index: index}
}

// SetIndex changes the answer.
func (m *MockClassifier) SetIndex(index int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.index = index
}

// SetError makes subsequent calls fail with err.
func (m *MockClassifier) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockClassifier) Classify(canvas gocv.Mat) ([]float32, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, -1, m.err
	}

	n := m.index + 1
	if n < 1 {
		n = 1
	}
	scores := make([]float32, n)
	if m.index >= 0 {
		scores[m.index] = 1
	}
	return scores, m.index, nil
}

// Calls returns how many times Classify ran.
func (m *MockClassifier) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

func (m *MockClassifier) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// Closed reports whether Close was called.
func (m *MockClassifier) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}
