package chunk

import (
	"fmt"
	"unicode/utf8"
)

const (
	DefaultBudget         = 4000
	DefaultHardLimit      = 4096
	DefaultMarkerHeadroom = 40
	DefaultLabel          = "Part"
)

// DefaultSectionMarkers are the glyphs the report uses as section headers.
// "⚡" also covers "⚡️" (same glyph followed by a variation selector).
var DefaultSectionMarkers = []string{"📊", "🚀", "📉", "₿", "📰", "🗣", "🤔", "⚡", "🔍", "📈", "🧠", "→"}

// Config carries every tunable of the chunking pipeline. Budget is the payload
// ceiling for a segment; HardLimit is the transport's absolute maximum.
type Config struct {
	Budget         int
	HardLimit      int
	MarkerHeadroom int
	Label          string
	SectionMarkers []string
}

func DefaultConfig() Config {
	return Config{
		Budget:         DefaultBudget,
		HardLimit:      DefaultHardLimit,
		MarkerHeadroom: DefaultMarkerHeadroom,
		Label:          DefaultLabel,
		SectionMarkers: DefaultSectionMarkers,
	}
}

// Validate reports configurations under which framed segments could exceed
// the hard limit or the splitter could not make progress.
func (c Config) Validate() error {
	if c.Budget <= 0 {
		return fmt.Errorf("chunk budget must be positive, got %d", c.Budget)
	}

	if c.Budget > c.HardLimit {
		return fmt.Errorf("chunk budget %d exceeds hard limit %d", c.Budget, c.HardLimit)
	}

	if c.MarkerHeadroom < 0 {
		return fmt.Errorf("marker headroom must not be negative, got %d", c.MarkerHeadroom)
	}

	if c.Budget-c.MarkerHeadroom < utf8.UTFMax {
		return fmt.Errorf("effective budget %d is smaller than one rune", c.Budget-c.MarkerHeadroom)
	}

	if widest := len(Marker(c.Label, 99, 99)); c.MarkerHeadroom < widest {
		return fmt.Errorf("marker headroom %d is smaller than widest marker (%d bytes)", c.MarkerHeadroom, widest)
	}

	return nil
}
