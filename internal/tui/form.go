// Package tui is a terminal rendition of the allocation form.
//
// It follows The Elm Architecture via bubbletea: key presses become messages,
// Update folds them into the Form, and View renders the Form to a string.
// Submissions run as commands, so the UI keeps redrawing while a request is
// in flight.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/couchcryptid/storm-relief-allocator/internal/domain"
	"github.com/couchcryptid/storm-relief-allocator/internal/session"
)

const (
	title              = "Weather Crisis Resource Allocation System"
	regionsPlaceholder = `[ {"name": "Region A", "need": 20, "urgency": 9} ]`
	formWidth          = 60
)

// Submitter runs one allocation submission to completion.
type Submitter interface {
	Submit(ctx context.Context, in session.Inputs) domain.Outcome
}

// StateReader exposes the current form and result state.
type StateReader interface {
	Snapshot() session.Snapshot
}

type field int

const (
	fieldRegions field = iota
	fieldSupplies
)

// submittedMsg reports that a submission command has returned.
type submittedMsg struct {
	outcome domain.Outcome
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#5B8DEF")).
			MarginBottom(1)
	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#AAAAAA"))
	resultBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#444444")).
			Padding(0, 1)
	errorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FF6B6B"))
	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			MarginTop(1)
)

// Form is the bubbletea model for the allocation form.
type Form struct {
	ctx       context.Context
	submitter Submitter
	state     StateReader

	regions  textarea.Model
	supplies textinput.Model
	focus    field
	capacity string

	snapshot session.Snapshot
}

// NewForm builds a form whose fields start from the store's current inputs.
func NewForm(ctx context.Context, submitter Submitter, state StateReader) *Form {
	snap := state.Snapshot()

	regions := textarea.New()
	regions.Placeholder = regionsPlaceholder
	regions.ShowLineNumbers = false
	regions.SetWidth(formWidth)
	regions.SetHeight(6)
	regions.SetValue(snap.Inputs.Regions)
	regions.Focus()

	supplies := textinput.New()
	supplies.Prompt = ""
	supplies.Placeholder = "50"
	supplies.Width = 12
	supplies.SetValue(snap.Inputs.Supplies)

	return &Form{
		ctx:       ctx,
		submitter: submitter,
		state:     state,
		regions:   regions,
		supplies:  supplies,
		focus:     fieldRegions,
		capacity:  snap.Inputs.Capacity,
		snapshot:  snap,
	}
}

func (f *Form) Init() tea.Cmd {
	return textarea.Blink
}

func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		f.regions.SetWidth(min(formWidth, max(20, msg.Width-4)))
		return f, nil

	case submittedMsg:
		f.snapshot = f.state.Snapshot()
		return f, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return f, tea.Quit
		case "tab", "shift+tab":
			return f, f.toggleFocus()
		case "ctrl+s":
			return f, f.submit()
		}
	}

	var cmd tea.Cmd
	if f.focus == fieldRegions {
		f.regions, cmd = f.regions.Update(msg)
	} else {
		f.supplies, cmd = f.supplies.Update(msg)
	}
	return f, cmd
}

func (f *Form) toggleFocus() tea.Cmd {
	if f.focus == fieldRegions {
		f.focus = fieldSupplies
		f.regions.Blur()
		return f.supplies.Focus()
	}
	f.focus = fieldRegions
	f.supplies.Blur()
	return f.regions.Focus()
}

// submit marks the form pending and returns a command that runs the submission.
func (f *Form) submit() tea.Cmd {
	in := session.Inputs{
		Regions:  f.regions.Value(),
		Supplies: f.supplies.Value(),
		Capacity: f.capacity,
	}
	f.snapshot.Pending = true

	ctx, submitter := f.ctx, f.submitter
	return func() tea.Msg {
		return submittedMsg{outcome: submitter.Submit(ctx, in)}
	}
}

func (f *Form) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render(title))
	b.WriteString("\n")
	b.WriteString(labelStyle.Render("Regions (JSON)"))
	b.WriteString("\n")
	b.WriteString(f.regions.View())
	b.WriteString("\n\n")
	b.WriteString(labelStyle.Render("Supplies: "))
	b.WriteString(f.supplies.View())
	b.WriteString("\n")
	if f.capacity != "" {
		b.WriteString(labelStyle.Render("Capacity: " + f.capacity))
		b.WriteString("\n")
	}

	switch f.snapshot.Status() {
	case session.StatusPending:
		b.WriteString("\nSubmitting...\n")
	case session.StatusError:
		o := f.snapshot.Outcome
		b.WriteString("\n")
		b.WriteString(errorStyle.Render(fmt.Sprintf("Submission failed (%s)", o.Category())))
		b.WriteString("\n")
		b.WriteString(o.Err.Err.Error())
		b.WriteString("\n")
	case session.StatusOK:
		if rendered, ok := domain.RenderResult(f.snapshot.Outcome.Result); ok {
			b.WriteString("\n")
			b.WriteString(labelStyle.Render("Results"))
			b.WriteString("\n")
			b.WriteString(resultBox.Render(rendered))
			b.WriteString("\n")
		}
	}

	b.WriteString(helpStyle.Render("tab switch field · ctrl+s submit · esc quit"))
	return b.String()
}

// Run starts the terminal form and blocks until the user quits.
func Run(ctx context.Context, submitter Submitter, state StateReader) error {
	_, err := tea.NewProgram(NewForm(ctx, submitter, state), tea.WithContext(ctx)).Run()
	return err
}
