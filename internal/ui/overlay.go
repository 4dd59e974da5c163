// Package ui paints the session view onto camera frames and shows them in
// an OpenCV window.
package ui

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/signbridge/internal/interact"
	"github.com/ayusman/signbridge/internal/session"
)

// Theme holds the sidebar colours.
type Theme struct {
	Panel  color.RGBA
	Text   color.RGBA
	Muted  color.RGBA
	Accent color.RGBA
	Button color.RGBA
	Hover  color.RGBA
}

var (
	darkTheme = Theme{
		Panel:  color.RGBA{R: 30, G: 30, B: 30, A: 255},
		Text:   color.RGBA{R: 240, G: 240, B: 240, A: 255},
		Muted:  color.RGBA{R: 130, G: 130, B: 130, A: 255},
		Accent: color.RGBA{R: 0, G: 200, B: 120, A: 255},
		Button: color.RGBA{R: 60, G: 60, B: 60, A: 255},
		Hover:  color.RGBA{R: 90, G: 90, B: 90, A: 255},
	}
	lightTheme = Theme{
		Panel:  color.RGBA{R: 240, G: 240, B: 240, A: 255},
		Text:   color.RGBA{R: 20, G: 20, B: 20, A: 255},
		Muted:  color.RGBA{R: 140, G: 140, B: 140, A: 255},
		Accent: color.RGBA{R: 0, G: 140, B: 80, A: 255},
		Button: color.RGBA{R: 210, G: 210, B: 210, A: 255},
		Hover:  color.RGBA{R: 180, G: 180, B: 180, A: 255},
	}
)

// ThemeFor returns the dark or light theme.
func ThemeFor(dark bool) Theme {
	if dark {
		return darkTheme
	}
	return lightTheme
}

const (
	font      = gocv.FontHersheySimplex
	fontScale = 0.6
	thickness = 1
	margin    = 16
	lineGap   = 26
)

func measure(s string) int {
	return gocv.GetTextSize(s, font, fontScale, thickness).X
}

// Paint draws view onto frame in place.
func Paint(frame *gocv.Mat, view session.View) {
	theme := ThemeFor(view.Dark)
	w, h := frame.Cols(), frame.Rows()
	left := w - interact.SidebarWidth

	if !view.Box.Empty() {
		gocv.Rectangle(frame, view.Box, theme.Accent, 2)
		if view.Letter.Valid() {
			org := image.Pt(view.Box.Min.X, max(view.Box.Min.Y-10, 20))
			gocv.PutText(frame, view.Letter.String(), org, font, 1.2, theme.Accent, 2)
		}
	}

	gocv.Rectangle(frame, image.Rect(left, 0, w, h), theme.Panel, -1)

	y := margin + 14
	text := func(s string, c color.RGBA) {
		gocv.PutText(frame, s, image.Pt(left+margin, y), font, fontScale, c, thickness)
		y += lineGap
	}

	detected := "Detected: -"
	if view.Letter.Valid() {
		detected = "Detected: " + view.Letter.String()
	}
	text(detected, theme.Text)

	if view.ShowProgress {
		barW := interact.SidebarWidth - 2*margin
		bar := image.Rect(left+margin, y-14, left+margin+barW, y-4)
		gocv.Rectangle(frame, bar, theme.Muted, 1)
		fill := bar
		fill.Max.X = bar.Min.X + int(float64(barW)*view.Progress)
		if fill.Dx() > 0 {
			gocv.Rectangle(frame, fill, theme.Accent, -1)
		}
		y += lineGap / 2
	}

	text(ModeLabel(view.Mode), theme.Muted)
	for _, label := range SuggestionLabels(view.Suggestions) {
		text(label, theme.Accent)
	}

	y += lineGap / 2
	text("Text:", theme.Muted)
	lines := Tail(Wrap(view.Text, interact.SidebarWidth-2*margin, measure), MaxTextLines)
	for i, line := range lines {
		gocv.PutText(frame, line, image.Pt(left+margin, y), font, fontScale, theme.Text, thickness)
		if i == len(lines)-1 && view.Ghost != "" {
			x := left + margin + measure(line)
			gocv.PutText(frame, view.Ghost, image.Pt(x, y), font, fontScale, theme.Muted, thickness)
		}
		y += lineGap
	}

	for i, b := range view.Buttons {
		fill := theme.Button
		if i == view.Hover {
			fill = theme.Hover
		}
		gocv.Circle(frame, b.Center, interact.ButtonRadius, fill, -1)
		gocv.Circle(frame, b.Center, interact.ButtonRadius, theme.Muted, 1)

		size := gocv.GetTextSize(b.Label, font, fontScale, thickness)
		org := image.Pt(b.Center.X-size.X/2, b.Center.Y+size.Y/2)
		gocv.PutText(frame, b.Label, org, font, fontScale, theme.Text, thickness)
	}
}
