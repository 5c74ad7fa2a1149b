package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/entrhq/sitac/pkg/flows"
)

var errPromptCanceled = errors.New("credential prompt canceled")

var (
	promptTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(salmonPink)
	promptHintStyle  = lipgloss.NewStyle().Foreground(mutedGray)
)

// credentialsModel asks for the portal username and password.
type credentialsModel struct {
	inputs   []textinput.Model
	focus    int
	done     bool
	canceled bool
}

func newCredentialsModel(username string) credentialsModel {
	user := textinput.New()
	user.Prompt = "Usuário: "
	user.Placeholder = "CPF ou login"
	user.SetValue(username)

	pass := textinput.New()
	pass.Prompt = "Senha:   "
	pass.EchoMode = textinput.EchoPassword
	pass.EchoCharacter = '•'

	m := credentialsModel{inputs: []textinput.Model{user, pass}}
	if username != "" {
		m.focus = 1
	}
	m.inputs[m.focus].Focus()
	return m
}

func (m credentialsModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m credentialsModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.canceled = true
			return m, tea.Quit
		case tea.KeyEnter:
			if m.focus == len(m.inputs)-1 && m.complete() {
				m.done = true
				return m, tea.Quit
			}
			return m.move(1), nil
		case tea.KeyTab, tea.KeyDown:
			return m.move(1), nil
		case tea.KeyShiftTab, tea.KeyUp:
			return m.move(-1), nil
		}
	}

	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m credentialsModel) move(delta int) credentialsModel {
	m.inputs[m.focus].Blur()
	m.focus = (m.focus + delta + len(m.inputs)) % len(m.inputs)
	m.inputs[m.focus].Focus()
	return m
}

func (m credentialsModel) complete() bool {
	for _, in := range m.inputs {
		if strings.TrimSpace(in.Value()) == "" {
			return false
		}
	}
	return true
}

func (m credentialsModel) View() string {
	if m.done || m.canceled {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(promptTitleStyle.Render("SITAC login"))
	sb.WriteString("\n\n")
	for _, in := range m.inputs {
		sb.WriteString(in.View())
		sb.WriteString("\n")
	}
	sb.WriteString("\n")
	sb.WriteString(promptHintStyle.Render("tab to switch • enter to confirm • esc to cancel"))
	return sb.String()
}

func (m credentialsModel) credentials() flows.Credentials {
	return flows.Credentials{
		Username: strings.TrimSpace(m.inputs[0].Value()),
		Password: m.inputs[1].Value(),
	}
}

// promptCredentials runs the prompt in the terminal.
func promptCredentials(ctx context.Context, username string) (flows.Credentials, error) {
	final, err := tea.NewProgram(newCredentialsModel(username), tea.WithContext(ctx)).Run()
	if err != nil {
		return flows.Credentials{}, fmt.Errorf("credential prompt: %w", err)
	}
	m, ok := final.(credentialsModel)
	if !ok || m.canceled || !m.done {
		return flows.Credentials{}, errPromptCanceled
	}
	return m.credentials(), nil
}
