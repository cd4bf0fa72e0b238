package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/views/chat"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/views/documents"
	"github.com/custodia-labs/docuchat/internal/core/domain"
)

// App is the main TUI application following the Elm architecture.
// It implements tea.Model for use with Bubbletea.
type App struct {
	ports  *Ports
	ctx    context.Context
	styles *styles.Styles
	keymap *keymap.KeyMap

	documentsView *documents.View
	chatView      *chat.View

	// initial is opened in the chat view on start when set.
	initial *domain.Document

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:         ports,
		ctx:           context.Background(),
		styles:        s,
		keymap:        km,
		documentsView: documents.NewView(s, ports.Document),
		chatView:      chat.NewView(s, km, ports.Query, ports.Index),
		currentView:   messages.ViewDocuments,
	}, nil
}

// WithContext sets the context for the app and its service calls.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.documentsView.WithContext(ctx)
	a.chatView.WithContext(ctx)
	return a
}

// WithUserID restricts the document list to one user.
func (a *App) WithUserID(userID string) *App {
	a.documentsView.SetUserID(userID)
	return a
}

// WithDocument opens the chat for doc as soon as the program starts.
func (a *App) WithDocument(doc domain.Document) *App {
	a.initial = &doc
	a.currentView = messages.ViewChat
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("docuchat"),
		a.documentsView.Load(),
		a.chatView.Init(),
	}
	if a.initial != nil {
		cmds = append(cmds, a.chatView.SetDocument(*a.initial))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		return a.handleKeyMsg(msg)

	case messages.Quit:
		return a, tea.Quit

	case messages.ViewChanged:
		a.currentView = msg.View
		if msg.View == messages.ViewDocuments {
			return a, a.documentsView.Load()
		}
		return a, nil

	case messages.DocumentSelected:
		a.currentView = messages.ViewChat
		return a, a.chatView.SetDocument(msg.Document)

	case messages.DocumentsLoaded, messages.DocumentDeleted:
		a.documentsView, cmd = a.documentsView.Update(msg)
		a.err = a.documentsView.Err()
		return a, cmd

	case messages.IndexWarmed, messages.AnswerReceived:
		a.chatView, cmd = a.chatView.Update(msg)
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
	}

	return a, a.forward(msg)
}

func (a *App) handleKeyMsg(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Global quit with ctrl+c
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	// q quits from the list; in chat it is just a letter
	if a.currentView == messages.ViewDocuments &&
		!a.documentsView.IsConfirmingDelete() &&
		msg.String() == "q" {
		return a, tea.Quit
	}

	return a, a.forward(msg)
}

// forward routes msg to the active view.
func (a *App) forward(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch a.currentView {
	case messages.ViewChat:
		a.chatView, cmd = a.chatView.Update(msg)
	default:
		a.documentsView, cmd = a.documentsView.Update(msg)
	}
	return cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewChat:
		return a.chatView.View()
	default:
		return a.documentsView.View()
	}
}

// Run starts the TUI application and blocks until it exits.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Documents returns the documents currently listed.
func (a *App) Documents() []domain.Document {
	return a.documentsView.Documents()
}

// ChatDocument returns the document open in the chat view, or the one
// it will open on start.
func (a *App) ChatDocument() *domain.Document {
	if doc := a.chatView.Document(); doc != nil {
		return doc
	}
	return a.initial
}

// Exchanges returns the questions and answers of the open chat.
func (a *App) Exchanges() []chat.Exchange {
	return a.chatView.Exchanges()
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.documentsView.SetDimensions(width, height)
	a.chatView.SetDimensions(width, height)
}
