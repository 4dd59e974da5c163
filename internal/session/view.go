package session

import (
	"image"

	"github.com/ayusman/signbridge/internal/alphabet"
	"github.com/ayusman/signbridge/internal/interact"
	"github.com/ayusman/signbridge/internal/suggest"
)

// View is everything the surface needs to paint one frame.
type View struct {
	Letter alphabet.Letter
	// Box is the detected hand in frame coordinates; empty when none.
	Box image.Rectangle

	Text        string
	Ghost       string
	Suggestions []string
	Mode        suggest.Mode

	AutoInput bool
	// Progress is the hold fraction toward the next auto commit. It is only
	// meaningful when ShowProgress is set.
	Progress     float64
	ShowProgress bool

	Dark    bool
	Buttons []interact.Button
	Hover   int
}
