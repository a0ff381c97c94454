package enrich

import "strings"

// Surface display classes the web map colors by.
const (
	SurfaceAsphalt = "Asphalt"
	SurfaceStone   = "Stone/Paving"
	SurfaceNatural = "Unpaved/Natural"
	SurfaceOther   = "Other"
	SurfaceUnknown = "Unknown"
)

// SimplifySurface collapses a raw OSM surface tag into one of five display
// classes. Matching is substring-based and ordered: "unpaved" matches the
// "paved" substring and classifies as Stone/Paving, not Unpaved/Natural.
func SimplifySurface(surface string) string {
	if surface == "" || surface == "unknown" {
		return SurfaceUnknown
	}
	s := strings.ToLower(surface)
	switch {
	case containsAny(s, "asphalt", "chipseal"):
		return SurfaceAsphalt
	case containsAny(s, "paving_stones", "sett", "cobblestone", "stone", "rock", "concrete", "paved"):
		return SurfaceStone
	case containsAny(s, "dirt", "earth", "ground", "grass", "mud", "sand",
		"unpaved", "gravel", "compacted", "pebblestone"):
		return SurfaceNatural
	}
	return SurfaceOther
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
