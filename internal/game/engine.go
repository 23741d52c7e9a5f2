package game

import (
	"fmt"
	"io"
	"math/rand/v2"
	"sync"

	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/gameid"
)

const (
	// InitialHandSize is the number of cards dealt to each side
	InitialHandSize = 5

	DefaultHumanName   = "You"
	DefaultMachineName = "Machine"
)

// Phase is the lifecycle state of a game
type Phase int

const (
	PhaseNotStarted Phase = iota
	PhaseInProgress
	PhaseGameOver
)

// String returns the string representation of a phase
func (p Phase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not_started"
	case PhaseInProgress:
		return "in_progress"
	case PhaseGameOver:
		return "game_over"
	default:
		return "unknown"
	}
}

// EndReason records how a game finished
type EndReason int

const (
	EndNone EndReason = iota
	EndEmptyHand
	EndDeckExhausted
)

// String returns the string representation of an end reason
func (r EndReason) String() string {
	switch r {
	case EndEmptyHand:
		return "empty_hand"
	case EndDeckExhausted:
		return "deck_exhausted"
	default:
		return "none"
	}
}

// Result is the outcome of a finished game. Winner is only meaningful when
// HasWinner is true.
type Result struct {
	Winner Side
	Reason EndReason
}

// HasWinner reports whether the game ended with an empty hand
func (r Result) HasWinner() bool {
	return r.Reason == EndEmptyHand
}

// Option configures an Engine during creation.
type Option func(*engineConfig)

type engineConfig struct {
	humanName   string
	machineName string
	deck        *deck.Deck
	effects     *EffectRegistry
	bus         EventBus
	gameID      string
}

// WithPlayerNames sets the display names of both sides
func WithPlayerNames(human, machine string) Option {
	return func(c *engineConfig) {
		if human != "" {
			c.humanName = human
		}
		if machine != "" {
			c.machineName = machine
		}
	}
}

// WithDeck uses the given deck instead of shuffling a new one
func WithDeck(d *deck.Deck) Option {
	return func(c *engineConfig) { c.deck = d }
}

// WithEffects replaces the default effect registry
func WithEffects(r *EffectRegistry) Option {
	return func(c *engineConfig) { c.effects = r }
}

// WithEventBus publishes events on an existing bus
func WithEventBus(bus EventBus) Option {
	return func(c *engineConfig) { c.bus = bus }
}

// WithGameID overrides the generated game ID
func WithGameID(id string) Option {
	return func(c *engineConfig) { c.gameID = id }
}

// Engine owns the deck, the table and both hands. Every public method is
// atomic with respect to the others; events raised by a call are published
// after the lock is released.
type Engine struct {
	mu sync.Mutex

	id      string
	deck    *deck.Deck
	table   *Table
	players [2]*Player

	phase        Phase
	result       Result
	humanTurn    bool
	skip         [2]bool
	pendingColor bool
	pendingSide  Side

	effects *EffectRegistry
	bus     EventBus
	logger  *log.Logger
	queued  []GameEvent
}

// NewEngine creates a game that has not been dealt yet. The rng shuffles the
// deck unless WithDeck is given.
//
//	e := game.NewEngine(randutil.New(42), logger, game.WithPlayerNames("Ana", ""))
//	if err := e.StartGame(); err != nil { ... }
func NewEngine(rng *rand.Rand, logger *log.Logger, opts ...Option) *Engine {
	cfg := engineConfig{
		humanName:   DefaultHumanName,
		machineName: DefaultMachineName,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.deck == nil {
		cfg.deck = deck.New(rng)
	}
	return newEngine(cfg, logger)
}

func newEngine(cfg engineConfig, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	if cfg.effects == nil {
		cfg.effects = DefaultEffects()
	}
	if cfg.bus == nil {
		cfg.bus = NewEventBus()
	}
	if cfg.gameID == "" {
		cfg.gameID = gameid.Generate()
	}

	e := &Engine{
		id:        cfg.gameID,
		deck:      cfg.deck,
		table:     newTable(),
		phase:     PhaseNotStarted,
		humanTurn: true,
		effects:   cfg.effects,
		bus:       cfg.bus,
		logger:    logger.WithPrefix("engine").With("game_id", cfg.gameID),
	}
	e.players[Human] = newPlayer(Human, cfg.humanName)
	e.players[Machine] = newPlayer(Machine, cfg.machineName)
	return e
}

// unlock releases the lock and then publishes the events queued under it.
func (e *Engine) unlock() {
	events := e.queued
	e.queued = nil
	e.mu.Unlock()

	for _, ev := range events {
		e.bus.Publish(ev)
	}
}

func (e *Engine) emit(ev GameEvent) {
	e.queued = append(e.queued, ev)
}

// handChanged queues the notifications for a hand that moved from before
// cards to its current size.
func (e *Engine) handChanged(side Side, before int) {
	n := e.players[side].Len()
	e.emit(NewHandChangedEvent(side, n))
	if n == 1 && before != 1 {
		e.emit(NewOneCardLeftEvent(side))
	}
}

// StartGame deals five cards to each side and seeds the table with the
// first non-special card. Special cards turned up while seeding stay on the
// table underneath the seed.
func (e *Engine) StartGame() error {
	e.mu.Lock()
	defer e.unlock()

	if e.phase != PhaseNotStarted {
		return fmt.Errorf("%w: game already started", ErrIllegalState)
	}

	for i := 0; i < 2*InitialHandSize; i++ {
		side := Human
		if i >= InitialHandSize {
			side = Machine
		}
		card, err := e.deck.TakeCard()
		if err != nil {
			e.logger.Error("Could not deal initial hands", "error", err)
			return fmt.Errorf("dealing: %w", err)
		}
		e.players[side].add(card)
	}

	for {
		card, err := e.deck.TakeCard()
		if err != nil {
			e.logger.Error("Could not seed the table", "error", err)
			return fmt.Errorf("seeding table: %w", err)
		}
		e.table.place(card)
		if !card.IsSpecial() {
			break
		}
		e.logger.Debug("Special card buried under the seed", "card", card)
	}

	e.phase = PhaseInProgress
	e.humanTurn = true
	top, _ := e.table.Top()
	e.logger.Info("Game started", "top", top, "deck", e.deck.Len())

	for _, side := range Sides {
		e.emit(NewHandChangedEvent(side, e.players[side].Len()))
	}
	e.emit(NewTurnChangedEvent(true))
	return nil
}

// CanPlay reports whether card may be played on the current table
func (e *Engine) CanPlay(card deck.Card) bool {
	e.mu.Lock()
	defer e.unlock()
	return e.canPlayLocked(card)
}

func (e *Engine) canPlayLocked(card deck.Card) bool {
	if card.IsWild() {
		return true
	}
	top, ok := e.table.Top()
	if !ok {
		return !card.IsSpecial()
	}
	return deck.CanPlayOver(card, top)
}

// PlayCard moves card from whichever hand holds it onto the table and runs
// its effect. A wild leaves a color choice pending for the side that played
// it; see ChooseColor.
func (e *Engine) PlayCard(card deck.Card) error {
	e.mu.Lock()
	defer e.unlock()
	return e.playLocked(card, deck.NoColor)
}

// PlayCardWithColor plays a card and, for wilds, resolves its color in the
// same step. The color is ignored for colored cards.
func (e *Engine) PlayCardWithColor(card deck.Card, color deck.Color) error {
	e.mu.Lock()
	defer e.unlock()
	if card.IsWild() && !validColor(color) {
		return fmt.Errorf("%w: %s needs a color, got %s", ErrInvalidPlay, card, color)
	}
	return e.playLocked(card, color)
}

func (e *Engine) playLocked(card deck.Card, color deck.Color) error {
	if err := e.activeLocked("play"); err != nil {
		return err
	}
	if e.pendingColor {
		return fmt.Errorf("%w: %s must choose a color first", ErrInvalidPlay, e.pendingSide)
	}

	holder, idx, ok := e.holderLocked(card)
	if !ok {
		return fmt.Errorf("%w: %s is not in any hand", ErrInvalidPlay, card)
	}
	held := e.players[holder].hand[idx]
	if !e.canPlayLocked(held) {
		top, _ := e.table.Top()
		return fmt.Errorf("%w: %s cannot be played over %s", ErrInvalidPlay, held, top)
	}

	before := e.players[holder].Len()
	e.players[holder].removeAt(idx)
	e.table.place(held)
	e.emit(NewCardPlayedEvent(holder, held))
	e.handChanged(holder, before)
	e.logger.Debug("Card played", "side", holder, "card", held)

	if held.IsWild() {
		e.pendingColor = true
		e.pendingSide = holder
	}
	e.effects.Apply((*engineMutator)(e), held, holder, holder.Opponent())

	if held.IsWild() && color != deck.NoColor {
		e.chooseColorLocked(holder, color)
	}
	return nil
}

func (e *Engine) holderLocked(card deck.Card) (Side, int, bool) {
	for _, side := range Sides {
		if i := e.players[side].find(card); i >= 0 {
			return side, i, true
		}
	}
	return Human, -1, false
}

// ChooseColor resolves the color of the wild side just played
func (e *Engine) ChooseColor(side Side, color deck.Color) error {
	e.mu.Lock()
	defer e.unlock()

	if e.phase != PhaseInProgress {
		return fmt.Errorf("%w: cannot choose a color while %s", ErrIllegalState, e.phase)
	}
	if !e.pendingColor || e.pendingSide != side {
		return fmt.Errorf("%w: no color choice pending for %s", ErrIllegalState, side)
	}
	if !validColor(color) {
		return fmt.Errorf("%w: %s is not a playable color", ErrInvalidPlay, color)
	}
	e.chooseColorLocked(side, color)
	return nil
}

func (e *Engine) chooseColorLocked(side Side, color deck.Color) {
	e.table.setTopColor(color)
	e.pendingColor = false
	e.emit(NewColorChosenEvent(side, color))
	e.logger.Debug("Color chosen", "side", side, "color", color)
}

func validColor(c deck.Color) bool {
	return c >= deck.Red && c <= deck.Yellow
}

// DrawCard moves the top card of the deck into side's hand. When the deck is
// empty and neither side can play, the game ends without a winner.
func (e *Engine) DrawCard(side Side) (deck.Card, error) {
	e.mu.Lock()
	defer e.unlock()
	return e.drawLocked(side)
}

// Penalize is DrawCard for a missed declaration; it also publishes a
// PenaltyEvent.
func (e *Engine) Penalize(side Side, reason string) (deck.Card, error) {
	e.mu.Lock()
	defer e.unlock()

	card, err := e.drawLocked(side)
	if err != nil {
		return card, err
	}
	e.emit(NewPenaltyEvent(side, 1, reason))
	e.logger.Info("Penalty", "side", side, "reason", reason)
	return card, nil
}

func (e *Engine) drawLocked(side Side) (deck.Card, error) {
	if err := e.activeLocked("draw"); err != nil {
		return deck.Card{}, err
	}
	if e.deck.IsEmpty() {
		if !e.canAnyPlayLocked() {
			e.endLocked(Result{Reason: EndDeckExhausted})
		}
		return deck.Card{}, fmt.Errorf("%s cannot draw: %w", side, ErrDeckEmpty)
	}

	before := e.players[side].Len()
	card, err := e.deck.TakeCard()
	if err != nil {
		return deck.Card{}, err
	}
	e.players[side].add(card)
	e.emit(NewCardDrawnEvent(side, card, e.deck.Len()))
	e.handChanged(side, before)
	return card, nil
}

// EatCard draws up to n cards into side's hand, stopping quietly when the
// deck runs out, and returns how many were drawn.
func (e *Engine) EatCard(side Side, n int) int {
	e.mu.Lock()
	defer e.unlock()
	if err := e.activeLocked("eat"); err != nil {
		return 0
	}
	return e.eatLocked(side, n)
}

func (e *Engine) eatLocked(side Side, n int) int {
	before := e.players[side].Len()
	drawn := 0
	for drawn < n {
		card, err := e.deck.TakeCard()
		if err != nil {
			e.logger.Debug("Deck ran out while drawing", "side", side, "wanted", n, "drawn", drawn)
			break
		}
		e.players[side].add(card)
		e.emit(NewCardDrawnEvent(side, card, e.deck.Len()))
		drawn++
	}
	if drawn > 0 {
		e.handChanged(side, before)
	}
	return drawn
}

// HaveSungOne records that declarer called UNO: the opponent draws one card
// if the deck allows.
func (e *Engine) HaveSungOne(declarer Side) error {
	e.mu.Lock()
	defer e.unlock()

	if err := e.activeLocked("declare"); err != nil {
		return err
	}
	target := declarer.Opponent()
	n := e.eatLocked(target, 1)
	e.emit(NewPenaltyEvent(target, n, fmt.Sprintf("%s called UNO", declarer)))
	e.logger.Info("UNO called", "declarer", declarer, "target", target, "drawn", n)
	return nil
}

// SkipTurn marks side to lose its next turn
func (e *Engine) SkipTurn(side Side) {
	e.mu.Lock()
	defer e.unlock()
	e.skipLocked(side)
}

func (e *Engine) skipLocked(side Side) {
	e.skip[side] = true
	e.emit(NewSkipEvent(side))
}

// ClearSkip clears side's skip flag
func (e *Engine) ClearSkip(side Side) {
	e.mu.Lock()
	defer e.unlock()
	e.skip[side] = false
}

// IsSkipped reports side's skip flag
func (e *Engine) IsSkipped(side Side) bool {
	e.mu.Lock()
	defer e.unlock()
	return e.skip[side]
}

// ConsumeSkip clears side's skip flag and reports whether it was set
func (e *Engine) ConsumeSkip(side Side) bool {
	e.mu.Lock()
	defer e.unlock()
	was := e.skip[side]
	e.skip[side] = false
	return was
}

// CanAnyPlayerPlay reports whether either hand holds a playable card
func (e *Engine) CanAnyPlayerPlay() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.canAnyPlayLocked()
}

func (e *Engine) canAnyPlayLocked() bool {
	for _, side := range Sides {
		for _, card := range e.players[side].hand {
			if e.canPlayLocked(card) {
				return true
			}
		}
	}
	return false
}

// CheckWinner ends the game if a hand is empty, human first, and returns
// the winner. The GameOverEvent is published only once however often this
// is called.
func (e *Engine) CheckWinner() (Side, bool) {
	e.mu.Lock()
	defer e.unlock()
	e.settleLocked()
	if e.phase == PhaseGameOver && e.result.HasWinner() {
		return e.result.Winner, true
	}
	return Human, false
}

// settleLocked ends an in-progress game that already has an empty hand and
// reports whether the game is over.
func (e *Engine) settleLocked() bool {
	switch e.phase {
	case PhaseGameOver:
		return true
	case PhaseNotStarted:
		return false
	}
	for _, side := range Sides {
		if e.players[side].Len() == 0 {
			e.endLocked(Result{Winner: side, Reason: EndEmptyHand})
			return true
		}
	}
	return false
}

func (e *Engine) endLocked(r Result) {
	e.phase = PhaseGameOver
	e.result = r
	e.pendingColor = false
	if r.HasWinner() {
		e.logger.Info("Game over", "winner", r.Winner)
	} else {
		e.logger.Info("Game over", "reason", r.Reason)
	}
	e.emit(NewGameOverEvent(r))
}

// activeLocked returns ErrIllegalState unless the game is in progress. A
// game with an empty hand is settled first so the winner's hand can not be
// refilled.
func (e *Engine) activeLocked(op string) error {
	if e.settleLocked() {
		return fmt.Errorf("%w: cannot %s, game is over", ErrIllegalState, op)
	}
	if e.phase != PhaseInProgress {
		return fmt.Errorf("%w: cannot %s, game has not started", ErrIllegalState, op)
	}
	return nil
}

// SetHumanTurn flips the turn flag
func (e *Engine) SetHumanTurn(humanTurn bool) {
	e.mu.Lock()
	defer e.unlock()
	if e.humanTurn == humanTurn {
		return
	}
	e.humanTurn = humanTurn
	e.emit(NewTurnChangedEvent(humanTurn))
}

// HumanTurn reports whether the human may act
func (e *Engine) HumanTurn() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.humanTurn
}

// GameOver reports whether the game has ended. Once true it stays true.
func (e *Engine) GameOver() bool {
	e.mu.Lock()
	defer e.unlock()
	return e.phase == PhaseGameOver
}

func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.unlock()
	return e.phase
}

func (e *Engine) Result() Result {
	e.mu.Lock()
	defer e.unlock()
	return e.result
}

// Top returns the card in play
func (e *Engine) Top() (deck.Card, bool) {
	e.mu.Lock()
	defer e.unlock()
	return e.table.Top()
}

// Hand returns a copy of side's cards
func (e *Engine) Hand(side Side) []deck.Card {
	e.mu.Lock()
	defer e.unlock()
	return e.players[side].Cards()
}

func (e *Engine) HandSize(side Side) int {
	e.mu.Lock()
	defer e.unlock()
	return e.players[side].Len()
}

func (e *Engine) DeckSize() int {
	e.mu.Lock()
	defer e.unlock()
	return e.deck.Len()
}

// Discard returns the table history, oldest first
func (e *Engine) Discard() []deck.Card {
	e.mu.Lock()
	defer e.unlock()
	return e.table.History()
}

// Name returns the display name of a side
func (e *Engine) Name(side Side) string {
	return e.players[side].Name
}

// ID returns the game ID
func (e *Engine) ID() string {
	return e.id
}

// EventBus returns the bus events are published on
func (e *Engine) EventBus() EventBus {
	return e.bus
}

// View returns a point-in-time copy of the game as side sees it
func (e *Engine) View(side Side) View {
	e.mu.Lock()
	defer e.unlock()

	hand := e.players[side].Cards()
	var playable []deck.Card
	if !e.pendingColor {
		for _, card := range hand {
			if e.canPlayLocked(card) {
				playable = append(playable, card)
			}
		}
	}
	top, ok := e.table.Top()
	return View{
		Side:          side,
		Hand:          hand,
		Playable:      playable,
		Top:           top,
		HasTop:        ok,
		OpponentCards: e.players[side.Opponent()].Len(),
		DeckSize:      e.deck.Len(),
		HumanTurn:     e.humanTurn,
		Phase:         e.phase,
		PendingColor:  e.pendingColor && e.pendingSide == side,
	}
}

// engineMutator is the lock-held view of an Engine handed to effects
type engineMutator Engine

func (m *engineMutator) EatCards(side Side, n int) int {
	return (*Engine)(m).eatLocked(side, n)
}

func (m *engineMutator) SkipTurn(side Side) {
	(*Engine)(m).skipLocked(side)
}

func (m *engineMutator) Logger() *log.Logger {
	return m.logger
}
