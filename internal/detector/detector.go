// Package detector provides the hand detector collaborator: given a frame it
// reports the bounding box of at most one hand.
package detector

import (
	"image"

	"gocv.io/x/gocv"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the bounding box of the most
	// confident hand, or nil if no hand is present.
	Detect(frame *gocv.Mat) (*BoundingBox, error)

	// Close releases any resources held by the detector.
	Close() error
}

// BoundingBox is an integer rectangle in source-frame pixel coordinates.
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect returns the box as an image.Rectangle.
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Empty reports whether the box has no area.
func (b BoundingBox) Empty() bool {
	return b.Width <= 0 || b.Height <= 0
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands the service reports (default: 1).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64

	// Script overrides the location of mediapipe_service.py.
	Script string

	// Python overrides the interpreter used to run the service.
	Python string
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        1,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}
