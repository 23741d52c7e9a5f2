// Package tui is the terminal front end for a human playing the machine.
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/lox/unoduel/internal/deck"
	"github.com/lox/unoduel/internal/game"
	"github.com/lox/unoduel/internal/session"
)

const sidebarWidth = 28

// Model is the bubbletea model for one game. All game state is read from
// the engine when rendering; events only feed the log.
type Model struct {
	session   *session.Session
	engine    *game.Engine
	formatter *game.EventFormatter
	logger    *log.Logger

	logViewport viewport.Model
	input       textinput.Model

	gameLog     []string
	status      string
	quitting    bool
	focusedPane int // 0 = log, 1 = input

	width       int
	height      int
	initialized bool
}

// NewModel creates the model for s
func NewModel(s *session.Session, logger *log.Logger) *Model {
	vp := viewport.New(10, 5)
	vp.SetContent("")

	ti := textinput.New()
	ti.Placeholder = helpText
	ti.Focus()
	ti.CharLimit = 40
	ti.Width = 60
	ti.PromptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#04B575")).Bold(true)
	ti.Prompt = "> "

	e := s.Engine()
	m := &Model{
		session: s,
		engine:  e,
		formatter: game.NewEventFormatter(game.FormattingOptions{
			HumanName:   "You",
			MachineName: e.Name(game.Machine),
		}),
		logger:      logger.WithPrefix("tui"),
		logViewport: vp,
		input:       ti,
		focusedPane: 1,
	}
	if top, ok := e.Top(); ok {
		m.AddLogEntry(fmt.Sprintf("Game %s: %s vs %s, starting card %s",
			shortID(e.ID()), e.Name(game.Human), e.Name(game.Machine), top))
	}
	return m
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[len(id)-8:]
	}
	return id
}

func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case EventMsg:
		m.handleEvent(msg.Event)

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			m.quitting = true
			return m, tea.Quit
		case "tab":
			if m.focusedPane == 0 {
				m.focusedPane = 1
				m.input.Focus()
			} else {
				m.focusedPane = 0
				m.input.Blur()
			}
		case "enter":
			if m.focusedPane == 1 {
				line := m.input.Value()
				m.input.SetValue("")
				if quit := m.Submit(line); quit {
					m.quitting = true
					return m, tea.Quit
				}
			}
		case "up", "k":
			if m.focusedPane == 0 {
				m.logViewport.ScrollUp(1)
			}
		case "down", "j":
			if m.focusedPane == 0 {
				m.logViewport.ScrollDown(1)
			}
		case "home", "g":
			if m.focusedPane == 0 {
				m.logViewport.GotoTop()
			}
		case "end", "G":
			if m.focusedPane == 0 {
				m.logViewport.GotoBottom()
			}
		}
	}

	var cmd tea.Cmd
	if m.focusedPane == 1 {
		m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}
	m.logViewport, cmd = m.logViewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

func (m *Model) handleEvent(event game.GameEvent) {
	if text := m.formatter.Format(event); text != "" {
		if _, over := event.(game.GameOverEvent); over {
			m.AddLogEntry(WarningStyle.Render(text))
			m.status = "Game over. Type quit to leave."
			return
		}
		m.AddLogEntry(text)
	}
	if e, ok := event.(game.PenaltyEvent); ok && e.Side == game.Human {
		m.status = ErrorStyle.Render("You forgot to call UNO!")
	}
}

// Submit runs one line of input and reports whether the player asked to quit
func (m *Model) Submit(line string) bool {
	cmd, err := ParseCommand(line)
	if err != nil {
		m.status = ErrorStyle.Render(err.Error())
		return false
	}
	m.status = ""

	switch cmd.Kind {
	case CmdNone:
	case CmdQuit:
		return true
	case CmdHelp:
		m.status = InfoStyle.Render(helpText)
	case CmdPlay:
		m.play(cmd)
	case CmdDraw:
		if _, err := m.session.HumanDraw(); err != nil {
			m.showError(err)
		}
	case CmdPass:
		if err := m.session.Pass(); err != nil {
			m.showError(err)
		}
	case CmdUno:
		side, err := m.session.Declare()
		switch {
		case err != nil:
			m.showError(err)
		case side == game.Human:
			m.status = SuccessStyle.Render("UNO!")
			m.AddLogEntry("You called UNO")
		default:
			m.status = SuccessStyle.Render("Caught! The machine draws a card.")
			m.AddLogEntry(fmt.Sprintf("You caught %s without UNO", m.engine.Name(game.Machine)))
		}
	}
	return false
}

func (m *Model) play(cmd Command) {
	hand := m.engine.Hand(game.Human)
	if cmd.Index > len(hand) {
		m.status = ErrorStyle.Render(fmt.Sprintf("You only have %d cards", len(hand)))
		return
	}
	card := hand[cmd.Index-1]
	if err := m.session.HumanPlay(card, cmd.Color); err != nil {
		m.showError(err)
	}
}

func (m *Model) showError(err error) {
	var text string
	switch {
	case errors.Is(err, session.ErrNotYourTurn):
		text = "Wait for your turn"
	case errors.Is(err, session.ErrColorRequired):
		text = "Choose a color: play N red|green|blue|yellow"
	case errors.Is(err, session.ErrNothingToDeclare):
		text = "Nobody needs to call UNO"
	case errors.Is(err, session.ErrCannotPass):
		text = "You can only pass when the deck is empty and nothing plays"
	case errors.Is(err, game.ErrDeckEmpty):
		text = "The deck is empty; play a card or pass"
	case errors.Is(err, game.ErrInvalidPlay):
		text = "That card does not play on the table"
	default:
		text = err.Error()
	}
	m.logger.Debug("Move rejected", "error", err)
	m.status = ErrorStyle.Render(text)
}

// AddLogEntry appends a line and scrolls to it
func (m *Model) AddLogEntry(entry string) {
	m.gameLog = append(m.gameLog, entry)
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if m.logViewport.Height > 0 && m.logViewport.Width > 0 {
		m.logViewport.GotoBottom()
	}
}

// Log returns the lines logged so far
func (m *Model) Log() []string {
	out := make([]string, len(m.gameLog))
	copy(out, m.gameLog)
	return out
}

// Status returns the message under the input line
func (m *Model) Status() string {
	return m.status
}

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := HeaderStyle.Width(m.width).Render(
		fmt.Sprintf(" UNO · %s vs %s", m.engine.Name(game.Human), m.engine.Name(game.Machine)))

	actionContent := m.renderActionPane()
	actionHeight := lipgloss.Height(actionContent)
	actionPane := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#04B575")).
		Width(max(m.width-2, 1)).
		Render(actionContent)

	paneHeight := max(m.height-actionHeight-5, 1)
	sidebar := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(sidebarWidth).
		Height(paneHeight).
		Render(m.renderSidebar())

	logWidth := max(m.width-sidebarWidth-4, 1)
	m.logViewport.Width = logWidth
	m.logViewport.Height = paneHeight
	m.logViewport.SetContent(strings.Join(m.gameLog, "\n"))
	if !m.initialized && logWidth > 1 && paneHeight > 1 {
		m.logViewport.GotoBottom()
		m.initialized = true
	}

	logStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#626262")).
		Width(logWidth).
		Height(paneHeight)
	if m.focusedPane == 0 {
		logStyle = logStyle.BorderForeground(lipgloss.Color("#04B575"))
	}

	top := lipgloss.JoinHorizontal(lipgloss.Top, logStyle.Render(m.logViewport.View()), sidebar)
	return lipgloss.JoinVertical(lipgloss.Left, header, top, actionPane)
}

func (m *Model) renderSidebar() string {
	v := m.engine.View(game.Human)
	var b strings.Builder

	b.WriteString(InfoStyle.Render("On the table"))
	b.WriteString("\n")
	if v.HasTop {
		b.WriteString("  " + renderCard(v.Top))
		if v.Top.IsWild() && v.Top.Color != deck.NoColor {
			b.WriteString(" (" + cardStyle(v.Top.Color).Render(v.Top.Color.String()) + ")")
		}
	}
	b.WriteString("\n\n")

	fmt.Fprintf(&b, "%s: %d cards\n", m.engine.Name(game.Machine), v.OpponentCards)
	fmt.Fprintf(&b, "Deck: %d cards\n\n", v.DeckSize)

	switch {
	case v.Phase == game.PhaseGameOver:
		b.WriteString(WarningStyle.Render(m.formatter.FormatResult(m.engine.Result())))
	case v.HumanTurn:
		b.WriteString(SuccessStyle.Render("Your turn"))
	default:
		b.WriteString(InfoStyle.Render(m.engine.Name(game.Machine) + " is thinking..."))
	}
	b.WriteString("\n")

	if r := m.session.Reminder(); r.Pending(game.Human) {
		b.WriteString(ErrorStyle.Render("Call UNO!") + "\n")
	} else if r.Pending(game.Machine) {
		b.WriteString(WarningStyle.Render("Machine has one card...") + "\n")
	}
	return b.String()
}

func (m *Model) renderActionPane() string {
	v := m.engine.View(game.Human)
	var b strings.Builder

	playable := make(map[int]bool, len(v.Playable))
	for _, c := range v.Playable {
		playable[c.ID] = true
	}

	cards := make([]string, 0, len(v.Hand))
	for i, c := range v.Hand {
		label := fmt.Sprintf("%d) %s", i+1, renderCard(c))
		if v.HumanTurn && !playable[c.ID] {
			label = InfoStyle.Render(fmt.Sprintf("%d) %s", i+1, c))
		}
		cards = append(cards, label)
	}
	b.WriteString(HandInfoStyle.Render("Your hand: "))
	b.WriteString(strings.Join(cards, "  "))
	b.WriteString("\n")

	b.WriteString(m.input.View())
	b.WriteString("\n")
	if m.status != "" {
		b.WriteString(m.status)
	} else if m.focusedPane == 0 {
		b.WriteString(InfoStyle.Render("Log focused: ↑↓ scroll, Home/End, Tab to input"))
	} else {
		b.WriteString(InfoStyle.Render("Tab to scroll log • Enter to submit • Ctrl+C to quit"))
	}
	return b.String()
}
