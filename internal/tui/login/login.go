// ABOUTME: Credential login screen as a bubbletea model
// ABOUTME: Collects username and password, gates re-submission while a call runs

package login

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"newsterm/internal/client"
	"newsterm/internal/routes"
	"newsterm/internal/tui/icons"
	"newsterm/internal/tui/styles"
)

// SubmitMsg is sent when the user submits valid credentials
type SubmitMsg struct {
	Username string
	Password string
}

// NavigateMsg asks the app to switch to another public screen
type NavigateMsg struct {
	To routes.Route
}

const (
	fieldUsername = iota
	fieldPassword
	fieldCount
)

// Model is the login form
type Model struct {
	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
	fieldErrs  map[string]string
}

// New creates the login form with the username field focused
func New() *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &Model{
		inputs:    []textinput.Model{username, password},
		fieldErrs: map[string]string{},
	}
}

// SetSubmitting flips the re-submission gate while a login call is in flight
func (m *Model) SetSubmitting(v bool) {
	m.submitting = v
}

// Submitting reports whether a login call is in flight
func (m *Model) Submitting() bool {
	return m.submitting
}

// SetFailure surfaces a structured gateway failure on the form
func (m *Model) SetFailure(f *client.Failure) {
	m.submitting = false
	m.fieldErrs = map[string]string{}
	switch f.Kind {
	case client.KindFieldErrors:
		for _, fe := range f.Fields {
			m.fieldErrs[fe.Field] = fe.Message
		}
		m.errMsg = f.Message
	default:
		m.errMsg = f.Error()
	}
}

// SetError surfaces a plain message on the form
func (m *Model) SetError(msg string) {
	m.submitting = false
	m.errMsg = msg
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m.updateInputs(msg)
	}

	if m.submitting {
		// No duplicate submissions while a call is pending
		return m, nil
	}

	switch keyMsg.String() {
	case "tab", "down":
		m.setFocus((m.focus + 1) % fieldCount)
		return m, nil
	case "shift+tab", "up":
		m.setFocus((m.focus + fieldCount - 1) % fieldCount)
		return m, nil
	case "enter":
		return m.submit()
	case "ctrl+r":
		return m, func() tea.Msg { return NavigateMsg{To: routes.RouteRegister} }
	case "ctrl+f":
		return m, func() tea.Msg { return NavigateMsg{To: routes.RoutePasswordResetRequest} }
	}

	return m.updateInputs(msg)
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := make([]tea.Cmd, len(m.inputs))
	for i := range m.inputs {
		m.inputs[i], cmds[i] = m.inputs[i].Update(msg)
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) setFocus(i int) {
	m.focus = i
	for j := range m.inputs {
		if j == i {
			m.inputs[j].Focus()
		} else {
			m.inputs[j].Blur()
		}
	}
}

// submit validates locally before anything reaches the network
func (m *Model) submit() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	password := m.inputs[fieldPassword].Value()

	m.fieldErrs = map[string]string{}
	if username == "" {
		m.fieldErrs["username"] = "Username is required"
	}
	if password == "" {
		m.fieldErrs["password"] = "Password is required"
	}
	if len(m.fieldErrs) > 0 {
		return m, nil
	}

	m.errMsg = ""
	m.submitting = true
	return m, func() tea.Msg { return SubmitMsg{Username: username, Password: password} }
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Lock.String() + " Log in"))
	sb.WriteString("\n\n")

	labels := []string{"Username", "Password"}
	fields := []string{"username", "password"}
	for i, in := range m.inputs {
		label := styles.Label.Render(labels[i])
		if i == m.focus {
			label = styles.FocusedLabel.Render(labels[i])
		}
		sb.WriteString(label + "\n" + in.View() + "\n")
		if msg, ok := m.fieldErrs[fields[i]]; ok {
			sb.WriteString(styles.FieldError.Render(msg) + "\n")
		}
		sb.WriteString("\n")
	}

	if m.submitting {
		sb.WriteString(styles.Subtitle.Render("Logging in..."))
	} else if m.errMsg != "" {
		sb.WriteString(styles.StatusCritical.Render(m.errMsg))
	}

	sb.WriteString("\n" + styles.Help.Render(
		"enter Submit  tab Next field  ctrl+r Register  ctrl+f Forgot password"))

	return sb.String()
}
