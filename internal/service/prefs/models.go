package prefs

const (
	SideTop    = "top"
	SideBottom = "bottom"
	SideLeft   = "left"
	SideRight  = "right"
)

// PartTimer is the primary part: load-time conflict repair always moves the
// point part, never the timer.
const (
	PartTimer = "timer"
	PartPoint = "point"
)

var sides = []string{SideTop, SideBottom, SideLeft, SideRight}

const (
	minScale = 0.5
	maxScale = 2.0

	maxNameLength = 24
	maxIconLength = 6
	// data-URI icons (uploaded images) get a byte bound instead of the
	// short emoji bound
	maxIconDataURILength = 128 * 1024
)

type LayoutPart struct {
	Visible bool    `json:"visible"`
	Side    string  `json:"side"`
	Scale   float64 `json:"scale"`
}

type Layout struct {
	Timer LayoutPart `json:"timer"`
	Point LayoutPart `json:"point"`
}

type Profile struct {
	Name  string `json:"name"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

func DefaultLayout() Layout {
	return Layout{
		Timer: LayoutPart{Visible: true, Side: SideTop, Scale: 1.0},
		Point: LayoutPart{Visible: true, Side: SideRight, Scale: 1.0},
	}
}

func DefaultProfile() Profile {
	return Profile{
		Name:  "サンプル名",
		Color: "#7c5cff",
		Icon:  "⭐",
	}
}

// DisabledSides reports, per part, the side choice the UI must grey out:
// each part may not select the other part's current side.
func (l Layout) DisabledSides() map[string]string {
	return map[string]string{
		PartTimer: l.Point.Side,
		PartPoint: l.Timer.Side,
	}
}

func isSide(s string) bool {
	for _, side := range sides {
		if s == side {
			return true
		}
	}

	return false
}
