package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	orchestration "github.com/koscakluka/ema-walkthrough/core"
	"github.com/koscakluka/ema-walkthrough/core/page"
	"github.com/muesli/reflow/wordwrap"
)

type statusMsg orchestration.Status

type warningMsg struct{ err error }

var (
	titleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	narrationStyle = lipgloss.NewStyle().PaddingLeft(2)
	hintStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	flashStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	warningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	elementStyle   = lipgloss.NewStyle().PaddingLeft(2)
	highlightStyle = lipgloss.NewStyle().PaddingLeft(1).Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("212")).Bold(true)
	toolbarStyle = lipgloss.NewStyle().MarginTop(1).Foreground(lipgloss.Color("245"))
)

const maxWarnings = 3

// model is the terminal toolbar. Walkthrough state lives on the session
// loop, so every action the user takes is posted there.
type model struct {
	session *session
	status  orchestration.Status

	spinner  spinner.Model
	input    textinput.Model
	warnings []string
	width    int
}

func newModel(s *session) model {
	input := textinput.New()
	input.Placeholder = "type what you would say"
	input.CharLimit = 200

	return model{
		session: s,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		input:   input,
		width:   80,
	}
}

func (m model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-6, 10)
		return m, nil

	case statusMsg:
		m.status = orchestration.Status(msg)
		return m, nil

	case warningMsg:
		m.warnings = append(m.warnings, msg.err.Error())
		if len(m.warnings) > maxWarnings {
			m.warnings = m.warnings[len(m.warnings)-maxWarnings:]
		}
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if m.input.Focused() {
			return m.updateInput(msg)
		}
		return m.updateControls(msg)
	}

	return m, nil
}

func (m model) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEnter:
		text := m.input.Value()
		m.input.SetValue("")
		m.session.post(func() { m.session.recognizer.SubmitText(text) })
		return m, nil
	case tea.KeyEsc:
		m.input.Blur()
		return m, nil
	case tea.KeyCtrlC:
		return m, tea.Quit
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m model) updateControls(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	controller := m.session.controller
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "n":
		m.session.post(controller.Next)
	case "c":
		m.session.post(controller.Cancel)
	case "p":
		m.session.post(controller.Previous)
	case "s":
		m.session.post(controller.StartAgain)
	case "r":
		ctx := m.session.ctx
		m.session.post(func() {
			if controller.Cursor().Playing {
				return
			}
			if err := controller.Play(ctx, 1); err != nil {
				m.session.warn(err)
			}
		})
	case "t", "/":
		cmd := m.input.Focus()
		return m, cmd
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	width := max(m.width-4, 20)

	if m.session.title != "" {
		b.WriteString(titleStyle.Render(m.session.title))
		b.WriteString("\n\n")
	}

	status := m.status
	switch {
	case status.Cursor.Playing:
		step := fmt.Sprintf("Step %d of %d", status.Cursor.StepID, len(m.session.controller.Steps()))
		b.WriteString(hintStyle.Render(step))
		b.WriteString("\n")
		b.WriteString(narrationStyle.Render(wordwrap.String(status.StepText, width)))
		b.WriteString("\n\n")
	case status.State == orchestration.StateFinished:
		b.WriteString(hintStyle.Render("Finished. Press r to read the script again."))
		b.WriteString("\n\n")
	default:
		b.WriteString(hintStyle.Render("Press r to read the script."))
		b.WriteString("\n\n")
	}

	switch {
	case status.State == orchestration.StateSpeaking:
		b.WriteString(m.spinner.View() + " Speaking…\n")
	case status.Listening:
		b.WriteString(m.spinner.View() + " Listening…\n")
	}

	if status.TargetPhrase != "" {
		b.WriteString(fmt.Sprintf("Listening for: %s\n", titleStyle.Render(status.TargetPhrase)))
	}
	if status.Editing {
		b.WriteString(editorPrompt(status.Stage))
		b.WriteString("\n")
	}
	if transcript := status.Transcript.Latest(); transcript != "" {
		b.WriteString(fmt.Sprintf("Response: %s\n", wordwrap.String(transcript, width)))
	}
	if status.Cursor.Playing {
		b.WriteString(keywordHint(status.Detected))
		b.WriteString("\n")
	}

	if m.session.memory != nil {
		b.WriteString("\n")
		for _, el := range m.session.memory.Elements() {
			b.WriteString(renderElement(el))
			b.WriteString("\n")
		}
	}

	if m.input.Focused() {
		b.WriteString("\n")
		b.WriteString(m.input.View())
		b.WriteString("\n")
	}

	for _, warning := range m.warnings {
		b.WriteString(warningStyle.Render("! " + warning))
		b.WriteString("\n")
	}

	b.WriteString(toolbarStyle.Render("n next · c cancel · p previous · s start again · r read script · t type · q quit"))
	return b.String()
}

func editorPrompt(stage orchestration.InputStage) string {
	switch stage {
	case orchestration.FillInput:
		return "Listening for: your answer"
	case orchestration.IsThisCorrect:
		return "Is this correct? Yay or nay?"
	case orchestration.InputEditOptions:
		return "Listening for: a number of actions"
	case orchestration.FindWordToReplace, orchestration.FindWordToCapitalise:
		return "Listening for: a word in your answer"
	case orchestration.ReplaceWordWith:
		return "Listening for: the replacement"
	case orchestration.AddToAnswer:
		return "Listening for: what to add"
	case orchestration.CapitaliseWord:
		return "Listening for: which one"
	}
	return ""
}

func keywordHint(detected orchestration.Keyword) string {
	next, cancel := "next", "cancel"
	switch detected {
	case orchestration.KeywordNext:
		next = flashStyle.Render(next)
	case orchestration.KeywordCancel:
		cancel = flashStyle.Render(cancel)
	}
	return hintStyle.Render("Or say ") + next + hintStyle.Render(" / ") + cancel
}

func renderElement(el page.Element) string {
	line := el.Label
	if line == "" {
		line = el.ID
	}
	switch {
	case el.IsField:
		line = fmt.Sprintf("%s: [%s]", line, el.Value)
		if el.Focused {
			line += " ◂"
		}
	case el.IsControl:
		line = fmt.Sprintf("(%s)", line)
	}

	if el.Highlighted {
		return highlightStyle.Render(line)
	}
	return elementStyle.Render(line)
}
