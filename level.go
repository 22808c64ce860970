package palq

import (
	"fmt"
	"math"
	"strings"

	"github.com/hupe1980/palq/optimizer"
)

// Level selects the k-means refinement used while the palette grows.
//
// Step is 0 for no refinement, otherwise 1 to 3. Higher steps refine more
// often and take longer.
type Level struct {
	Optimizer optimizer.Kind
	Step      int
}

// LevelNone disables k-means refinement.
var LevelNone = Level{Optimizer: optimizer.None}

// ParseLevel parses "0", "s1".."s3" or "c1".."c3".
//
// The "s" levels use plain k-means, the "c" levels occurrence-weighted
// k-means.
func ParseLevel(s string) (Level, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "0" {
		return LevelNone, nil
	}
	if len(s) != 2 || s[1] < '1' || s[1] > '3' {
		return Level{}, &ConfigError{Field: "level", Value: s}
	}

	step := int(s[1] - '0')
	switch s[0] {
	case 's':
		return Level{Optimizer: optimizer.KMeans, Step: step}, nil
	case 'c':
		return Level{Optimizer: optimizer.WeightedKMeans, Step: step}, nil
	default:
		return Level{}, &ConfigError{Field: "level", Value: s}
	}
}

// DefaultLevel returns the level used when none is configured: s1 above 128
// colors, s2 above 64, c2 from 32 and c3 below.
func DefaultLevel(colors int) Level {
	switch {
	case colors > 128:
		return Level{Optimizer: optimizer.KMeans, Step: 1}
	case colors > 64:
		return Level{Optimizer: optimizer.KMeans, Step: 2}
	case colors >= 32:
		return Level{Optimizer: optimizer.WeightedKMeans, Step: 2}
	default:
		return Level{Optimizer: optimizer.WeightedKMeans, Step: 3}
	}
}

// KMeansStep returns how many colors are added between two refinement
// passes when growing a palette of the given size.
func (l Level) KMeansStep(colors int) int {
	switch {
	case l.Step < 2:
		return max(colors, 1)
	case l.Step == 2:
		return max(int(math.Round(math.Sqrt(float64(colors)))), 1)
	default:
		return 1
	}
}

// String returns the textual form accepted by ParseLevel.
func (l Level) String() string {
	switch l.Optimizer {
	case optimizer.None:
		return "0"
	case optimizer.KMeans:
		return fmt.Sprintf("s%d", l.Step)
	case optimizer.WeightedKMeans:
		return fmt.Sprintf("c%d", l.Step)
	default:
		return fmt.Sprintf("Unknown(%d,%d)", l.Optimizer, l.Step)
	}
}

func (l Level) validate() error {
	switch l.Optimizer {
	case optimizer.None:
		return nil
	case optimizer.KMeans, optimizer.WeightedKMeans:
		if l.Step < 1 || l.Step > 3 {
			return &ConfigError{Field: "level", Value: l}
		}
		return nil
	default:
		return &ConfigError{Field: "level", Value: l}
	}
}
