package interact

import "image"

// SidebarWidth is the width of the text panel on the right of the frame.
const SidebarWidth = 320

// Button offsets from the center of the video area, in iteration order.
var buttonOffsets = [...]struct {
	name   string
	label  string
	action Action
	dx     int
}{
	{"back", "<", ActionBackspace, -110},
	{"space", "_", ActionSpace, -35},
	{"end", "X", ActionEnd, 35},
	{"clear", "C", ActionClear, 110},
}

// buttonBarInset is how far above the bottom edge the button row sits.
const buttonBarInset = 60

// LayoutButtons places the Back, Space, End and Clear buttons along the
// bottom of the video area of a frame of the given size.
func LayoutButtons(frame image.Point) []Button {
	center := (frame.X - SidebarWidth) / 2
	y := frame.Y - buttonBarInset

	buttons := make([]Button, 0, len(buttonOffsets))
	for _, o := range buttonOffsets {
		buttons = append(buttons, Button{
			Name:   o.name,
			Label:  o.label,
			Action: o.action,
			Center: image.Pt(center+o.dx, y),
		})
	}
	return buttons
}
