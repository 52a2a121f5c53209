package prefs

import (
	"encoding/json"
	"math"
	"strings"
)

// LoadLayout merges persisted JSON over the defaults field by field. The
// stored shape is never trusted: wrong types fall back per field, sides are
// checked against the known set, scales are clamped. A side collision in the
// stored data is repaired silently by moving the point part.
func LoadLayout(raw []byte) Layout {
	layout := DefaultLayout()

	var parsed map[string]json.RawMessage
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &parsed); err == nil {
			layout.Timer = mergePart(layout.Timer, parsed[PartTimer])
			layout.Point = mergePart(layout.Point, parsed[PartPoint])
		}
	}

	return repairSideConflict(layout)
}

func mergePart(def LayoutPart, raw json.RawMessage) LayoutPart {
	if len(raw) == 0 {
		return def
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return def
	}

	part := def
	if v, ok := fields["visible"]; ok {
		part.Visible = coerceBool(v)
	}
	if v, ok := fields["side"].(string); ok && isSide(v) {
		part.Side = v
	}
	if v, ok := fields["scale"].(float64); ok {
		part.Scale = clampScale(v)
	}

	return part
}

// repairSideConflict reassigns the point part to the first side not taken
// by the timer. Silent: load-time repair must not surprise the user with a
// warning about data they did not just edit.
func repairSideConflict(layout Layout) Layout {
	if layout.Timer.Side != layout.Point.Side {
		return layout
	}

	for _, side := range sides {
		if side != layout.Timer.Side {
			layout.Point.Side = side
			break
		}
	}

	return layout
}

// LoadProfile bounds every field regardless of what was stored: non-string
// values fall back to defaults, the name is trimmed and truncated, icons are
// truncated by rune unless they are a data URI.
func LoadProfile(raw []byte) Profile {
	def := DefaultProfile()
	profile := def

	var fields map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &fields); err == nil {
			if v, ok := fields["name"].(string); ok {
				profile.Name = v
			}
			if v, ok := fields["color"].(string); ok {
				profile.Color = v
			}
			if v, ok := fields["icon"].(string); ok {
				profile.Icon = v
			}
		}
	}

	return BoundProfile(profile)
}

// BoundProfile applies the shape limits and default fallbacks to a profile
// from any source, stored or submitted.
func BoundProfile(profile Profile) Profile {
	def := DefaultProfile()

	profile.Name = truncateRunes(strings.TrimSpace(profile.Name), maxNameLength)
	if profile.Name == "" {
		profile.Name = def.Name
	}

	if strings.TrimSpace(profile.Color) == "" {
		profile.Color = def.Color
	}

	if strings.HasPrefix(profile.Icon, "data:image/") {
		if len(profile.Icon) > maxIconDataURILength {
			profile.Icon = def.Icon
		}
	} else {
		profile.Icon = truncateRunes(profile.Icon, maxIconLength)
		if profile.Icon == "" {
			profile.Icon = def.Icon
		}
	}

	return profile
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}

func clampScale(v float64) float64 {
	if math.IsNaN(v) {
		return 1.0
	}

	return math.Max(minScale, math.Min(maxScale, v))
}

func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return false
	}
}
