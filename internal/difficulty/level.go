// Package difficulty defines the three practice levels and the operand
// range, operator set and time limit each one uses.
package difficulty

import (
	"database/sql/driver"
	"fmt"
	"strings"
)

// Level is an ordinal difficulty rank. The zero value is not a valid level.
type Level int

const (
	Easy Level = iota + 1
	Medium
	Hard
)

// Lowest and Highest bound every transition.
const (
	Lowest  = Easy
	Highest = Hard
)

func (l Level) String() string {
	switch l {
	case Easy:
		return "Easy"
	case Medium:
		return "Medium"
	case Hard:
		return "Hard"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Valid reports whether l is one of the defined levels.
func (l Level) Valid() bool {
	return l >= Lowest && l <= Highest
}

// Next returns the next harder level, or l itself at the top.
func (l Level) Next() Level {
	if l >= Highest {
		return Highest
	}
	return l + 1
}

// Prev returns the next easier level, or l itself at the bottom.
func (l Level) Prev() Level {
	if l <= Lowest {
		return Lowest
	}
	return l - 1
}

// ParseLevel accepts a level name in any case or its menu number (1, 2, 3).
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "easy", "1":
		return Easy, nil
	case "medium", "2":
		return Medium, nil
	case "hard", "3":
		return Hard, nil
	default:
		return 0, fmt.Errorf("unknown difficulty %q", s)
	}
}

// Levels returns every level in ascending order.
func Levels() []Level {
	return []Level{Easy, Medium, Hard}
}

func (l Level) MarshalText() ([]byte, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid difficulty level %d", int(l))
	}
	return []byte(l.String()), nil
}

func (l *Level) UnmarshalText(b []byte) error {
	parsed, err := ParseLevel(string(b))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}

// Value stores a level by name.
func (l Level) Value() (driver.Value, error) {
	if !l.Valid() {
		return nil, fmt.Errorf("invalid difficulty level %d", int(l))
	}
	return l.String(), nil
}

func (l *Level) Scan(src any) error {
	switch v := src.(type) {
	case string:
		return l.UnmarshalText([]byte(v))
	case []byte:
		return l.UnmarshalText(v)
	case nil:
		return fmt.Errorf("difficulty level is NULL")
	default:
		return fmt.Errorf("cannot scan %T into difficulty level", src)
	}
}
