package deck

import (
	"errors"
	"testing"

	"github.com/lox/unoduel/internal/randutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComposition(t *testing.T) {
	cards := Composition()
	require.Len(t, cards, Size)

	counts := make(map[Value]int)
	perColor := make(map[Color]int)
	ids := make(map[int]bool)
	for _, c := range cards {
		counts[c.Value]++
		perColor[c.Color]++
		assert.False(t, ids[c.ID], "duplicate id %d", c.ID)
		ids[c.ID] = true
		assert.NotEmpty(t, c.Artwork)
	}

	for v := Zero; v <= DrawTwo; v++ {
		assert.Equal(t, 4, counts[v], "value %s", v)
	}
	assert.Equal(t, 1, counts[Wild])
	assert.Equal(t, 1, counts[DrawFour])
	for _, color := range Colors {
		assert.Equal(t, 13, perColor[color], "color %s", color)
	}
	assert.Equal(t, 2, perColor[NoColor])
}

func TestNewDeckIsPermutation(t *testing.T) {
	d := New(randutil.New(42))
	require.Equal(t, Size, d.Len())
	assert.False(t, d.IsEmpty())
	require.ElementsMatch(t, Composition(), d.Cards())
}

func TestShuffleDeterministic(t *testing.T) {
	a := New(randutil.New(7)).Cards()
	b := New(randutil.New(7)).Cards()
	c := New(randutil.New(8)).Cards()

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func TestTakeCardUntilEmpty(t *testing.T) {
	d := New(randutil.New(1))
	seen := make(map[int]bool)
	for i := 0; i < Size; i++ {
		card, err := d.TakeCard()
		require.NoError(t, err)
		seen[card.ID] = true
	}
	assert.Len(t, seen, Size)
	assert.True(t, d.IsEmpty())

	_, err := d.TakeCard()
	assert.True(t, errors.Is(err, ErrDeckEmpty))
}

func TestFromCardsTakesFromTop(t *testing.T) {
	bottom := NewCard(0, Three, Red)
	top := NewCard(1, Seven, Blue)
	d := FromCards([]Card{bottom, top})

	card, err := d.TakeCard()
	require.NoError(t, err)
	assert.Equal(t, top, card)
	assert.Equal(t, 1, d.Len())
}

func TestCanPlayOver(t *testing.T) {
	red5 := NewCard(0, Five, Red)
	tests := []struct {
		name      string
		candidate Card
		top       Card
		want      bool
	}{
		{"same color", NewCard(1, Nine, Red), red5, true},
		{"same value", NewCard(2, Five, Blue), red5, true},
		{"no match", NewCard(3, Two, Green), red5, false},
		{"wild over anything", NewCard(4, Wild, NoColor), red5, true},
		{"draw four over anything", NewCard(5, DrawFour, NoColor), red5, true},
		{"skip over same color", NewCard(6, Skip, Red), red5, true},
		{"skip over skip", NewCard(7, Skip, Green), NewCard(8, Skip, Blue), true},
		{"over unresolved wild", NewCard(9, Five, Red), NewCard(10, Wild, NoColor), false},
		{"over resolved wild", NewCard(11, Two, Yellow), Card{ID: 12, Value: Wild, Color: Yellow}, true},
		{"unset value", Card{ID: 13, Value: NoValue, Color: Red}, red5, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanPlayOver(tt.candidate, tt.top))
		})
	}
}

func TestIsSpecial(t *testing.T) {
	assert.False(t, NewCard(0, Zero, Green).IsSpecial())
	assert.False(t, NewCard(0, Nine, Yellow).IsSpecial())
	for _, v := range []Value{Skip, Reverse, DrawTwo} {
		assert.True(t, NewCard(0, v, Red).IsSpecial(), v.String())
	}
	assert.True(t, NewCard(0, Wild, NoColor).IsSpecial())
	assert.True(t, NewCard(0, DrawFour, NoColor).IsSpecial())
}

func TestCardString(t *testing.T) {
	assert.Equal(t, "7 RED", NewCard(0, Seven, Red).String())
	assert.Equal(t, "+2 BLUE", NewCard(0, DrawTwo, Blue).String())
	assert.Equal(t, "+4", NewCard(0, DrawFour, NoColor).String())
	assert.Equal(t, "WILD", NewCard(0, Wild, NoColor).String())
	assert.Equal(t, "cards-uno/5_blue.png", NewCard(0, Five, Blue).Artwork)
}

func TestParseColor(t *testing.T) {
	for in, want := range map[string]Color{"red": Red, "G": Green, " blue ": Blue, "YELLOW": Yellow} {
		got, err := ParseColor(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseColor("purple")
	assert.Error(t, err)
}
