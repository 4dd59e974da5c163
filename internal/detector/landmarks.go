package detector

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// Point3D is a landmark in normalized image coordinates (x, y in 0..1).
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Bounds converts the landmarks into a pixel bounding box for a frame of the
// given size. The box spans the min/max landmark positions and is clamped to
// the frame. A box that ends up with no area is returned as-is; callers check
// Empty.
func (h *HandLandmarks) Bounds(width, height int) BoundingBox {
	if h == nil || width <= 0 || height <= 0 {
		return BoundingBox{}
	}

	minX, minY := width, height
	maxX, maxY := 0, 0
	for i := 0; i < NumLandmarks; i++ {
		px := clamp(int(h.Points[i].X*float64(width)), 0, width)
		py := clamp(int(h.Points[i].Y*float64(height)), 0, height)
		minX = min(minX, px)
		minY = min(minY, py)
		maxX = max(maxX, px)
		maxY = max(maxY, py)
	}

	return BoundingBox{
		X:      minX,
		Y:      minY,
		Width:  maxX - minX,
		Height: maxY - minY,
	}
}

// mostConfident returns the highest scoring hand, or nil for an empty slice.
func mostConfident(hands []HandLandmarks) *HandLandmarks {
	var best *HandLandmarks
	for i := range hands {
		if best == nil || hands[i].Score > best.Score {
			best = &hands[i]
		}
	}
	return best
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
