package deck

import (
	"errors"
	"math/rand/v2"
	"time"

	"github.com/lox/unoduel/internal/randutil"
)

// Size is the number of cards in a fresh deck
const Size = 54

// ErrDeckEmpty is returned when a card is requested from an empty deck
var ErrDeckEmpty = errors.New("deck is empty")

// Deck is the draw pile. The top of the deck is the end of the slice.
type Deck struct {
	cards []Card
	rng   *rand.Rand
}

// New creates a shuffled 54-card deck. A nil rng falls back to a
// time-seeded source.
func New(rng *rand.Rand) *Deck {
	if rng == nil {
		rng = randutil.New(time.Now().UnixNano())
	}
	d := &Deck{
		cards: Composition(),
		rng:   rng,
	}
	d.Shuffle()
	return d
}

// FromCards creates a deck holding exactly the given cards, top last. Used
// to restore a saved game and to build scenarios in tests.
func FromCards(cards []Card) *Deck {
	c := make([]Card, len(cards))
	copy(c, cards)
	return &Deck{cards: c}
}

// Composition returns the unshuffled deck: for each color 0-9, SKIP,
// REVERSE and +2, followed by one WILD and one +4.
func Composition() []Card {
	cards := make([]Card, 0, Size)
	id := 0
	for _, color := range Colors {
		for value := Zero; value <= DrawTwo; value++ {
			cards = append(cards, NewCard(id, value, color))
			id++
		}
	}
	cards = append(cards, NewCard(id, Wild, NoColor))
	cards = append(cards, NewCard(id+1, DrawFour, NoColor))
	return cards
}

// Shuffle randomizes the order of cards in the deck using Fisher-Yates
func (d *Deck) Shuffle() {
	if d.rng == nil {
		d.rng = randutil.New(time.Now().UnixNano())
	}
	for i := len(d.cards) - 1; i > 0; i-- {
		j := d.rng.IntN(i + 1)
		d.cards[i], d.cards[j] = d.cards[j], d.cards[i]
	}
}

// TakeCard removes and returns the top card
func (d *Deck) TakeCard() (Card, error) {
	if len(d.cards) == 0 {
		return Card{}, ErrDeckEmpty
	}
	card := d.cards[len(d.cards)-1]
	d.cards = d.cards[:len(d.cards)-1]
	return card, nil
}

// IsEmpty returns true if the deck has no cards left
func (d *Deck) IsEmpty() bool {
	return len(d.cards) == 0
}

// Len returns the number of cards left in the deck
func (d *Deck) Len() int {
	return len(d.cards)
}

// Cards returns a copy of the remaining cards, top last
func (d *Deck) Cards() []Card {
	c := make([]Card, len(d.cards))
	copy(c, d.cards)
	return c
}
