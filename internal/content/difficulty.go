package content

import (
	"fmt"
	"strings"
)

// Difficulty is the declared level of a unit
type Difficulty string

const (
	Beginner     Difficulty = "Beginner"
	Intermediate Difficulty = "Intermediate"
	Advanced     Difficulty = "Advanced"
)

// Rank orders difficulties; unknown values rank 0
func (d Difficulty) Rank() int {
	switch d {
	case Beginner:
		return 1
	case Intermediate:
		return 2
	case Advanced:
		return 3
	default:
		return 0
	}
}

// ParseDifficulty converts a level name, ignoring case
func ParseDifficulty(s string) (Difficulty, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "beginner":
		return Beginner, nil
	case "intermediate":
		return Intermediate, nil
	case "advanced":
		return Advanced, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q (expected Beginner, Intermediate or Advanced)", s)
	}
}

// UnmarshalText implements encoding.TextUnmarshaler, which yaml.v3 and
// encoding/json both honor.
func (d *Difficulty) UnmarshalText(text []byte) error {
	parsed, err := ParseDifficulty(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
