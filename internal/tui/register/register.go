// ABOUTME: Account registration screen
// ABOUTME: Collects username, email, and password for the register endpoint

package register

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"newsterm/internal/client"
	"newsterm/internal/tui/icons"
	"newsterm/internal/tui/styles"
)

// SubmitMsg is sent when the user submits a valid registration form
type SubmitMsg struct {
	Username string
	Email    string
	Password string
}

// BackMsg returns to the login screen
type BackMsg struct{}

const (
	fieldUsername = iota
	fieldEmail
	fieldPassword
	fieldCount
)

// Model is the registration form
type Model struct {
	inputs     []textinput.Model
	focus      int
	submitting bool
	errMsg     string
	fieldErrs  map[string]string
}

// New creates the registration form
func New() *Model {
	username := textinput.New()
	username.Placeholder = "username"
	username.CharLimit = 64
	username.Focus()

	email := textinput.New()
	email.Placeholder = "email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	return &Model{
		inputs:    []textinput.Model{username, email, password},
		fieldErrs: map[string]string{},
	}
}

// SetSubmitting flips the re-submission gate
func (m *Model) SetSubmitting(v bool) {
	m.submitting = v
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
	case "esc":
		return m, func() tea.Msg { return BackMsg{} }
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

func (m *Model) submit() (tea.Model, tea.Cmd) {
	username := strings.TrimSpace(m.inputs[fieldUsername].Value())
	email := strings.TrimSpace(m.inputs[fieldEmail].Value())
	password := m.inputs[fieldPassword].Value()

	m.fieldErrs = map[string]string{}
	if username == "" {
		m.fieldErrs["username"] = "Username is required"
	}
	if email == "" || !strings.Contains(email, "@") {
		m.fieldErrs["email"] = "A valid email is required"
	}
	if len(password) < 8 {
		m.fieldErrs["password"] = "Password must be at least 8 characters"
	}
	if len(m.fieldErrs) > 0 {
		return m, nil
	}

	m.errMsg = ""
	m.submitting = true
	return m, func() tea.Msg {
		return SubmitMsg{Username: username, Email: email, Password: password}
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.User.String() + " Create account"))
	sb.WriteString("\n\n")

	labels := []string{"Username", "Email", "Password"}
	fields := []string{"username", "email", "password"}
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
		sb.WriteString(styles.Subtitle.Render("Creating account..."))
	} else if m.errMsg != "" {
		sb.WriteString(styles.StatusCritical.Render(m.errMsg))
	}

	sb.WriteString("\n" + styles.Help.Render("enter Submit  tab Next field  esc Back to login"))

	return sb.String()
}
