package ui

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/msx/internal/authors"
	"github.com/desertthunder/msx/internal/display"
	"github.com/desertthunder/msx/internal/shared"
	"github.com/desertthunder/msx/internal/upload"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	FormView ViewState = iota
	UploadView
	ResultView
)

// Form field names posted alongside the file.
const (
	authorsField      = "authors"
	affiliationsField = "author_affiliations"
	titleField        = "title"
)

// fixed focus slots ahead of the author rows
const (
	focusFile = iota
	focusTitle
	fixedFields
)

// Options configures the upload sessions started by the TUI.
type Options struct {
	Client     *upload.Client
	Path       string
	Timeout    time.Duration
	ProgressHz float64
	Logger     *log.Logger
	FilePath   string // prefilled manuscript path
}

// rowInputs holds the text inputs of one author row.
type rowInputs struct {
	author      textinput.Model
	affiliation textinput.Model
}

// Model represents the TUI application state.
type Model struct {
	ctx      context.Context
	opts     Options
	view     ViewState
	surface  *display.Buffer
	editor   *authors.Editor
	rows     map[int]*rowInputs
	file     textinput.Model
	title    textinput.Model
	focus    int
	session  *upload.Session
	progress progress.Model
	err      error
	width    int
	help     help.Model
	keys     keyMap
}

// NewModel creates a new TUI model with an empty form.
func NewModel(ctx context.Context, opts Options) *Model {
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(io.Discard)
	}

	m := &Model{
		ctx:      ctx,
		opts:     opts,
		progress: progress.New(progress.WithDefaultGradient()),
		help:     help.New(),
		keys:     newKeyMap(),
	}
	m.reset()
	return m
}

// reset puts the form back in its page-load state.
func (m *Model) reset() {
	m.view = FormView
	m.surface = display.NewBuffer()
	m.editor = authors.NewEditor(m.surface)
	m.rows = map[int]*rowInputs{}
	for _, row := range m.editor.Rows() {
		m.rows[row.ID] = newRowInputs()
	}

	m.file = textinput.New()
	m.file.Placeholder = "path/to/manuscript.docx"
	m.file.SetValue(m.opts.FilePath)
	m.title = textinput.New()
	m.title.Placeholder = "Title"

	m.session = nil
	m.err = nil
	m.showSelection()
	m.focus = focusFile
	m.setFocus(focusFile)
}

func newRowInputs() *rowInputs {
	author := textinput.New()
	author.Placeholder = "Last, First"
	affiliation := textinput.New()
	affiliation.Placeholder = "Department, Institution"
	return &rowInputs{author: author, affiliation: affiliation}
}

// Init starts the cursor blink.
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.progress.Width = max(msg.Width-8, 10)
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, m.keys.quit) {
			return m, tea.Quit
		}
		switch m.view {
		case FormView:
			return m.handleFormKeys(msg)
		case ResultView:
			return m.handleResultKeys(msg)
		}
		return m, nil

	case Msg:
		switch msg.kind {
		case MsgUploadEvent:
			ev := msg.data.(upload.Event)
			if err := m.session.Dispatch(ev); err != nil {
				m.opts.Logger.Warn("dropped upload event", "error", err)
			}
			return m, m.waitForEvent()
		case MsgUploadDone:
			m.view = ResultView
			return m, nil
		}
	}

	return m.updateFocused(msg)
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case FormView:
		return m.renderForm()
	case UploadView:
		return m.renderUpload()
	case ResultView:
		return m.renderResult()
	default:
		return ""
	}
}

// Surface exposes the display buffer the form renders into.
func (m *Model) Surface() *display.Buffer { return m.surface }

// Session returns the active upload session, if any.
func (m *Model) Session() *upload.Session { return m.session }

func (m *Model) handleFormKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.next):
		m.setFocus((m.focus + 1) % m.focusCount())
		return m, nil
	case key.Matches(msg, m.keys.prev):
		m.setFocus((m.focus - 1 + m.focusCount()) % m.focusCount())
		return m, nil
	case key.Matches(msg, m.keys.add):
		row := m.editor.AddRow()
		m.rows[row.ID] = newRowInputs()
		m.setFocus(fixedFields + 2*(m.editor.Len()-1))
		return m, nil
	case key.Matches(msg, m.keys.remove):
		m.removeFocusedRow()
		return m, nil
	case key.Matches(msg, m.keys.submit):
		return m, m.submit()
	}

	return m.updateFocused(msg)
}

func (m *Model) handleResultKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.restart):
		m.reset()
		return m, nil
	case key.Matches(msg, m.keys.back), msg.String() == "q":
		return m, tea.Quit
	}
	return m, nil
}

// removeFocusedRow removes the author row holding focus; focus elsewhere is a no-op.
func (m *Model) removeFocusedRow() {
	if m.focus < fixedFields {
		return
	}
	pos := (m.focus - fixedFields) / 2
	row, ok := m.editor.At(pos)
	if !ok || !m.editor.RemoveRow(row.ID) {
		return
	}
	delete(m.rows, row.ID)
	m.setFocus(min(m.focus, m.focusCount()-1))
}

func (m *Model) focusCount() int {
	return fixedFields + 2*m.editor.Len()
}

// input returns the text input at focus slot i, or nil.
func (m *Model) input(i int) *textinput.Model {
	switch i {
	case focusFile:
		return &m.file
	case focusTitle:
		return &m.title
	}
	row, ok := m.editor.At((i - fixedFields) / 2)
	if !ok {
		return nil
	}
	inputs := m.rows[row.ID]
	if (i-fixedFields)%2 == 0 {
		return &inputs.author
	}
	return &inputs.affiliation
}

func (m *Model) setFocus(i int) {
	if m.focus == focusFile && i != focusFile {
		m.showSelection()
	}
	if in := m.input(m.focus); in != nil {
		in.Blur()
	}
	m.focus = i
	if in := m.input(i); in != nil {
		in.Focus()
	}
}

func (m *Model) updateFocused(msg tea.Msg) (tea.Model, tea.Cmd) {
	if m.view != FormView {
		return m, nil
	}
	in := m.input(m.focus)
	if in == nil {
		return m, nil
	}
	var cmd tea.Cmd
	*in, cmd = in.Update(msg)
	return m, cmd
}

// showSelection mirrors the file input into the filename target.
func (m *Model) showSelection() {
	path := strings.TrimSpace(m.file.Value())
	if path == "" {
		upload.ShowSelection(m.surface, nil)
		return
	}
	f, err := upload.OpenFile(path)
	if err != nil {
		upload.ShowSelection(m.surface, nil)
		return
	}
	upload.ShowSelection(m.surface, f)
}

// submit validates the form and starts an upload session.
func (m *Model) submit() tea.Cmd {
	m.err = nil

	file, err := upload.OpenFile(strings.TrimSpace(m.file.Value()))
	if err != nil {
		m.err = err
		upload.ShowSelection(m.surface, nil)
		return nil
	}
	upload.ShowSelection(m.surface, file)

	names, affiliations := m.authorValues()
	if _, err := authors.Normalize(names, affiliations); err != nil {
		m.err = err
		return nil
	}

	fields := map[string][]string{
		authorsField:      names,
		affiliationsField: affiliations,
	}
	if title := strings.TrimSpace(m.title.Value()); title != "" {
		fields[titleField] = []string{title}
	}

	session, err := upload.New(file, upload.Options{
		Client:     m.opts.Client,
		Path:       m.opts.Path,
		Timeout:    m.opts.Timeout,
		Surface:    m.surface,
		Logger:     m.opts.Logger,
		ProgressHz: m.opts.ProgressHz,
		Fields:     fields,
	})
	if err != nil {
		m.err = err
		return nil
	}
	if err := session.Start(m.ctx); err != nil {
		m.err = err
		return nil
	}

	m.session = session
	m.view = UploadView
	return m.waitForEvent()
}

// authorValues returns author and affiliation values in row order.
func (m *Model) authorValues() ([]string, []string) {
	rows := m.editor.Rows()
	names := make([]string, 0, len(rows))
	affiliations := make([]string, 0, len(rows))
	for _, row := range rows {
		inputs := m.rows[row.ID]
		names = append(names, inputs.author.Value())
		affiliations = append(affiliations, inputs.affiliation.Value())
	}
	return names, affiliations
}

// waitForEvent blocks on the next session event; it is re-armed after each one.
func (m *Model) waitForEvent() tea.Cmd {
	events := m.session.Events()
	return func() tea.Msg {
		ev, ok := <-events
		if !ok {
			return uploadDoneMsg()
		}
		return uploadEventMsg(ev)
	}
}

func (m *Model) labelStyle(i int) func(...string) string {
	if i == m.focus {
		return styles.focused.Render
	}
	return styles.label.Render
}

func (m *Model) renderForm() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("Submit a manuscript"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("%s %s\n", m.labelStyle(focusFile)("Manuscript"), m.file.View()))
	b.WriteString(fmt.Sprintf("%s %s\n", styles.label.Render(""), styles.help.Render(m.surface.Text(upload.FilenameTarget))))
	b.WriteString(fmt.Sprintf("%s %s\n\n", m.labelStyle(focusTitle)("Title"), m.title.View()))

	for i, row := range m.editor.Rows() {
		inputs := m.rows[row.ID]
		slot := fixedFields + 2*i

		remove := ""
		if ctl, ok := m.surface.Control(row.ControlID); ok && ctl.Visible {
			remove = styles.help.Render("  ctrl+d remove")
		}

		b.WriteString(fmt.Sprintf("%s %s%s\n", m.labelStyle(slot)(m.surface.Text(row.AuthorTarget())), inputs.author.View(), remove))
		b.WriteString(fmt.Sprintf("%s %s\n", m.labelStyle(slot+1)(m.surface.Text(row.AffiliationTarget())), inputs.affiliation.View()))
	}

	if m.err != nil {
		b.WriteString("\n")
		b.WriteString(styles.err.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(m.help.FullHelpView(m.keys.FullHelp()))
	return b.String()
}

func (m *Model) renderUpload() string {
	title := styles.title.Render(fmt.Sprintf("Uploading %s", m.session.File().Name))
	status := m.surface.Last(upload.MessageTarget)
	return fmt.Sprintf("%s\n%s\n\n%s\n\n%s", title, m.progress.ViewAs(m.session.Progress()), status, m.help.ShortHelpView([]key.Binding{m.keys.quit}))
}

func (m *Model) renderResult() string {
	helpView := m.help.ShortHelpView([]key.Binding{m.keys.restart, m.keys.back, m.keys.quit})

	if m.session == nil || m.session.State() != upload.Completed {
		notice := m.surface.Last(upload.MessageTarget)
		if notice == "" {
			notice = upload.RetryMessage
		}
		detail := ""
		if m.session != nil && m.session.Err() != nil {
			detail = "\n" + styles.help.Render(m.session.Err().Error())
		}
		return fmt.Sprintf("%s%s\n\n%s", styles.err.Render(notice), detail, helpView)
	}

	title := styles.ok.Render("✓ Upload complete")
	info := fmt.Sprintf("\nFile: %s (%d bytes)", m.session.File().Name, m.session.File().Size)

	var result struct {
		ID string `json:"id"`
	}
	if resp := m.session.Response(); resp != nil && resp.IsJSON {
		if err := json.Unmarshal(resp.Body, &result); err == nil && result.ID != "" {
			info += fmt.Sprintf("\nSubmission: %s", result.ID)
		}
	}

	return fmt.Sprintf("%s\n%s\n\n%s", title, info, helpView)
}
