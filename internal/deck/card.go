package deck

import (
	"fmt"
	"strings"
)

// Color represents a card color
type Color int

const (
	NoColor Color = iota
	Red
	Green
	Blue
	Yellow
)

// Colors lists the four playable colors in composition order
var Colors = []Color{Red, Green, Blue, Yellow}

// String returns the upper-case name of a color
func (c Color) String() string {
	switch c {
	case Red:
		return "RED"
	case Green:
		return "GREEN"
	case Blue:
		return "BLUE"
	case Yellow:
		return "YELLOW"
	default:
		return "NONE"
	}
}

// ParseColor parses a color name ("red", "R", "GREEN"...)
func ParseColor(s string) (Color, error) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "RED", "R":
		return Red, nil
	case "GREEN", "G":
		return Green, nil
	case "BLUE", "B":
		return Blue, nil
	case "YELLOW", "Y":
		return Yellow, nil
	default:
		return NoColor, fmt.Errorf("invalid color %q", s)
	}
}

// Value represents the face value of a card
type Value int

const (
	NoValue Value = iota - 1
	Zero
	One
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Skip
	Reverse
	DrawTwo
	DrawFour
	Wild
)

// String returns the printed face of a value
func (v Value) String() string {
	switch {
	case v >= Zero && v <= Nine:
		return fmt.Sprintf("%d", int(v))
	case v == Skip:
		return "SKIP"
	case v == Reverse:
		return "REVERSE"
	case v == DrawTwo:
		return "+2"
	case v == DrawFour:
		return "+4"
	case v == Wild:
		return "WILD"
	default:
		return "?"
	}
}

// IsWild reports whether the value can be played over anything
func (v Value) IsWild() bool {
	return v == Wild || v == DrawFour
}

// IsNumber reports whether the value is 0-9
func (v Value) IsNumber() bool {
	return v >= Zero && v <= Nine
}

// Card represents a single UNO card. ID is unique within a deck and is the
// card's identity; Color only changes for a wild card once it is on the table.
type Card struct {
	ID      int
	Value   Value
	Color   Color
	Artwork string
}

// NewCard creates a card and derives its artwork reference
func NewCard(id int, value Value, color Color) Card {
	return Card{ID: id, Value: value, Color: color, Artwork: artworkFor(value, color)}
}

// String returns the string representation of a card (e.g., "7 RED", "+4")
func (c Card) String() string {
	if c.Color == NoColor {
		return c.Value.String()
	}
	return fmt.Sprintf("%s %s", c.Value, c.Color)
}

// IsWild reports whether the card is WILD or +4
func (c Card) IsWild() bool {
	return c.Value.IsWild()
}

// IsSpecial reports whether the card may not seed the table: any action
// card, any wild, or a card with an unset color or value.
func (c Card) IsSpecial() bool {
	return !c.Value.IsNumber() || c.Color == NoColor
}

// Same reports whether two cards are the same physical card
func (c Card) Same(other Card) bool {
	return c.ID == other.ID
}

// CanPlayOver reports whether candidate may be played on top of top. Wilds
// always play; otherwise color or value must match and neither card may have
// an unset color or value.
func CanPlayOver(candidate, top Card) bool {
	if candidate.IsWild() {
		return true
	}
	if candidate.Color == NoColor || top.Color == NoColor ||
		candidate.Value == NoValue || top.Value == NoValue {
		return false
	}
	return candidate.Color == top.Color || candidate.Value == top.Value
}

func artworkFor(value Value, color Color) string {
	switch value {
	case Wild:
		return "cards-uno/wild.png"
	case DrawFour:
		return "cards-uno/4_wild_draw.png"
	case DrawTwo:
		return fmt.Sprintf("cards-uno/2_wild_draw_%s.png", strings.ToLower(color.String()))
	case Skip:
		return fmt.Sprintf("cards-uno/skip_%s.png", strings.ToLower(color.String()))
	case Reverse:
		return fmt.Sprintf("cards-uno/reserve_%s.png", strings.ToLower(color.String()))
	default:
		return fmt.Sprintf("cards-uno/%s_%s.png", value, strings.ToLower(color.String()))
	}
}
