// Package chat provides the question and answer view for a single document.
package chat

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/docuchat/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/docuchat/internal/core/domain"
	"github.com/custodia-labs/docuchat/internal/core/ports/driving"
)

var errQueryUnavailable = errors.New("query service not available")

// Exchange is one question and its answer.
type Exchange struct {
	Question string
	Answer   *domain.Answer
	Err      error
}

// Pending reports whether the answer has not arrived yet.
func (e Exchange) Pending() bool {
	return e.Answer == nil && e.Err == nil
}

// View is the chat view.
type View struct {
	styles     *styles.Styles
	keymap     *keymap.KeyMap
	input      *input.QuestionInput
	statusbar  *status.Bar
	transcript viewport.Model

	queryService driving.QueryService
	indexService driving.IndexService
	ctx          context.Context

	document  *domain.Document
	exchanges []Exchange
	indexNote string
	width     int
	height    int
	ready     bool
}

// NewView creates a new chat view. indexService may be nil.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	queryService driving.QueryService,
	indexService driving.IndexService,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	bar := status.NewBar(s, km)
	bar.SetBindings(km.ChatHelp())

	return &View{
		styles:       s,
		keymap:       km,
		input:        input.NewQuestionInput(s),
		statusbar:    bar,
		transcript:   viewport.New(80, 14),
		queryService: queryService,
		indexService: indexService,
		ctx:          context.Background(),
		width:        80,
		height:       24,
	}
}

// WithContext sets the context used for service calls.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// SetDocument starts a fresh conversation about doc and returns a
// command that warms its index when an index service is available.
func (v *View) SetDocument(doc domain.Document) tea.Cmd {
	v.document = &doc
	v.exchanges = nil
	v.indexNote = ""
	v.input.Reset()
	v.input.Focus()
	v.statusbar.Clear()
	v.refreshTranscript()

	if v.indexService == nil {
		return nil
	}
	v.indexNote = "Preparing index..."
	v.statusbar.SetState(status.StateLoading)

	ctx, svc, id := v.ctx, v.indexService, doc.ID
	return func() tea.Msg {
		info, err := svc.Warm(ctx, id)
		return messages.IndexWarmed{DocumentID: id, Info: info, Err: err}
	}
}

// Update handles messages for the chat view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.IndexWarmed:
		v.handleIndexWarmed(msg)
		return v, nil

	case messages.AnswerReceived:
		v.handleAnswer(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(msg.Err.Error())
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	//nolint:exhaustive // handling only relevant key types
	switch msg.Type {
	case tea.KeyEsc:
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewDocuments}
		}
	case tea.KeyEnter:
		return v, v.submit()
	case tea.KeyPgUp, tea.KeyPgDown:
		var cmd tea.Cmd
		v.transcript, cmd = v.transcript.Update(msg)
		return v, cmd
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

// submit sends the current question. Only one question is in flight at a time.
func (v *View) submit() tea.Cmd {
	question := v.input.Question()
	if question == "" || v.document == nil || v.Waiting() {
		return nil
	}

	v.exchanges = append(v.exchanges, Exchange{Question: question})
	v.input.Reset()
	v.statusbar.SetState(status.StateThinking)
	v.refreshTranscript()

	ctx, svc, id := v.ctx, v.queryService, v.document.ID
	return func() tea.Msg {
		if svc == nil {
			return messages.AnswerReceived{DocumentID: id, Question: question, Err: errQueryUnavailable}
		}
		answer, err := svc.Answer(ctx, id, question)
		return messages.AnswerReceived{DocumentID: id, Question: question, Answer: answer, Err: err}
	}
}

func (v *View) handleIndexWarmed(msg messages.IndexWarmed) {
	if v.document == nil || msg.DocumentID != v.document.ID {
		return
	}
	v.statusbar.Clear()
	switch {
	case msg.Err != nil:
		v.indexNote = DescribeError(msg.Err)
		if !errors.Is(msg.Err, domain.ErrNotReady) {
			v.statusbar.SetState(status.StateError)
			v.statusbar.SetMessage(msg.Err.Error())
		}
	case msg.Info != nil && msg.Info.State == domain.IndexStateReady:
		v.indexNote = fmt.Sprintf("Index ready (%d chunks)", msg.Info.Vectors)
	default:
		v.indexNote = DescribeError(domain.ErrNotReady)
	}
}

func (v *View) handleAnswer(msg messages.AnswerReceived) {
	if v.document == nil || msg.DocumentID != v.document.ID {
		return
	}
	for i := len(v.exchanges) - 1; i >= 0; i-- {
		if v.exchanges[i].Pending() {
			v.exchanges[i].Answer = msg.Answer
			v.exchanges[i].Err = msg.Err
			if msg.Answer == nil && msg.Err == nil {
				v.exchanges[i].Answer = &domain.Answer{}
			}
			break
		}
	}

	v.statusbar.Clear()
	if msg.Err != nil {
		v.statusbar.SetState(status.StateError)
		v.statusbar.SetMessage(DescribeError(msg.Err))
	}
	v.refreshTranscript()
}

// DescribeError turns a query error into a message for the user.
func DescribeError(err error) string {
	switch {
	case errors.Is(err, domain.ErrNotReady):
		return "document is still processing, try again later"
	case errors.Is(err, domain.ErrNoRelevantContent):
		return "no relevant content found in this document"
	case errors.Is(err, domain.ErrInvalidInput):
		return "question must not be empty"
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		return "model service unavailable, try again later"
	default:
		return err.Error()
	}
}

// FormatSpan renders a time span as mm:ss-mm:ss.
func FormatSpan(span domain.TimeSpan) string {
	return formatSeconds(span.Start) + "-" + formatSeconds(span.End)
}

func formatSeconds(sec float64) string {
	total := int(sec)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}

func (v *View) refreshTranscript() {
	v.transcript.SetContent(v.renderTranscript())
	v.transcript.GotoBottom()
}

func (v *View) renderTranscript() string {
	if len(v.exchanges) == 0 {
		return v.styles.Muted.Render("No questions yet.")
	}

	wrap := v.styles.Answer.Width(max(v.width-4, 20))
	var b strings.Builder
	for i, ex := range v.exchanges {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(v.styles.Question.Render("You: " + ex.Question))
		b.WriteString("\n")

		switch {
		case ex.Err != nil:
			b.WriteString(v.styles.Error.Render("  " + DescribeError(ex.Err)))
			b.WriteString("\n")
		case ex.Pending():
			b.WriteString(v.styles.Muted.Render("  thinking..."))
			b.WriteString("\n")
		default:
			b.WriteString(wrap.Render(ex.Answer.Text))
			b.WriteString("\n")
			if len(ex.Answer.Sources) > 0 {
				spans := make([]string, len(ex.Answer.Sources))
				for j, s := range ex.Answer.Sources {
					spans[j] = FormatSpan(s)
				}
				b.WriteString(v.styles.Source.Render("Sources: " + strings.Join(spans, ", ")))
				b.WriteString("\n")
			}
		}
	}
	return b.String()
}

// View renders the chat view.
func (v *View) View() string {
	var b strings.Builder

	title := "Chat"
	if v.document != nil {
		title = fmt.Sprintf("Chat - %s (%s)", v.document.Filename, v.document.MediaType)
	}
	b.WriteString(v.styles.Title.Render(title))
	b.WriteString("\n")
	if v.indexNote != "" {
		b.WriteString(v.styles.Muted.Render(v.indexNote))
	}
	b.WriteString("\n\n")

	b.WriteString(v.transcript.View())
	b.WriteString("\n\n")
	b.WriteString(v.input.View())
	b.WriteString("\n")
	b.WriteString(v.statusbar.View())

	return b.String()
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	// Title, index note, input box and status bar
	reserved := 9
	v.transcript.Width = width
	v.transcript.Height = max(height-reserved, 3)
	v.input.SetWidth(width)
	v.statusbar.SetWidth(width)
	v.refreshTranscript()
}

// Document returns the document being discussed.
func (v *View) Document() *domain.Document {
	return v.document
}

// Exchanges returns the conversation so far.
func (v *View) Exchanges() []Exchange {
	return v.exchanges
}

// Waiting reports whether a question is awaiting its answer.
func (v *View) Waiting() bool {
	n := len(v.exchanges)
	return n > 0 && v.exchanges[n-1].Pending()
}

// IndexNote returns the index status line.
func (v *View) IndexNote() string {
	return v.indexNote
}

// Input returns the question input.
func (v *View) Input() *input.QuestionInput {
	return v.input
}

// Status returns the status bar.
func (v *View) Status() *status.Bar {
	return v.statusbar
}
