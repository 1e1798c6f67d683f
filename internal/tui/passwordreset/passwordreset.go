// ABOUTME: Password reset screens covering the request and verify phases
// ABOUTME: A rejected reset token invalidates the phase and forces a restart

package passwordreset

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"newsterm/internal/client"
	"newsterm/internal/tui/icons"
	"newsterm/internal/tui/styles"
)

// RequestMsg asks the app to mail out a reset token
type RequestMsg struct {
	Email string
}

// VerifyMsg asks the app to consume the reset token with the new password
type VerifyMsg struct {
	ResetToken  string
	NewPassword string
}

// BackMsg returns to the login screen
type BackMsg struct{}

// Phase of the reset flow
type Phase int

const (
	// PhaseRequest collects the account email
	PhaseRequest Phase = iota
	// PhaseVerify collects the mailed token and the new password
	PhaseVerify
)

// Model covers both phases of the password reset flow
type Model struct {
	phase      Phase
	email      textinput.Model
	token      textinput.Model
	password   textinput.Model
	focus      int
	submitting bool
	errMsg     string
	infoMsg    string
	fieldErrs  map[string]string
}

// New creates the reset flow in the given phase
func New(phase Phase) *Model {
	email := textinput.New()
	email.Placeholder = "account email"
	email.CharLimit = 128

	token := textinput.New()
	token.Placeholder = "reset token from email"
	token.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "new password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '•'

	m := &Model{
		phase:     phase,
		email:     email,
		token:     token,
		password:  password,
		fieldErrs: map[string]string{},
	}
	if phase == PhaseVerify {
		token.Focus()
		m.token = token
	} else {
		email.Focus()
		m.email = email
	}
	return m
}

// Phase returns the current phase
func (m *Model) Phase() Phase {
	return m.phase
}

// SetSubmitting flips the re-submission gate
func (m *Model) SetSubmitting(v bool) {
	m.submitting = v
}

// RequestAccepted advances to the verify phase after a token was mailed
func (m *Model) RequestAccepted() {
	m.submitting = false
	m.phase = PhaseVerify
	m.infoMsg = "If the address exists, a reset token has been emailed."
	m.errMsg = ""
	m.email.Blur()
	m.token.Focus()
	m.focus = 0
}

// SetFailure surfaces a structured gateway failure. A rejected reset token
// clears the token input so the flow restarts cleanly.
func (m *Model) SetFailure(f *client.Failure) {
	m.submitting = false
	m.infoMsg = ""
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
	if m.phase == PhaseVerify && f.Kind != client.KindNetwork {
		m.token.SetValue("")
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
	case "esc":
		return m, func() tea.Msg { return BackMsg{} }
	case "tab", "down":
		if m.phase == PhaseVerify {
			m.setVerifyFocus((m.focus + 1) % 2)
		}
		return m, nil
	case "shift+tab", "up":
		if m.phase == PhaseVerify {
			m.setVerifyFocus((m.focus + 1) % 2)
		}
		return m, nil
	case "enter":
		return m.submit()
	}

	return m.updateInputs(msg)
}

func (m *Model) setVerifyFocus(i int) {
	m.focus = i
	if i == 0 {
		m.token.Focus()
		m.password.Blur()
	} else {
		m.token.Blur()
		m.password.Focus()
	}
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.phase == PhaseRequest {
		m.email, cmd = m.email.Update(msg)
		return m, cmd
	}
	var cmds []tea.Cmd
	m.token, cmd = m.token.Update(msg)
	cmds = append(cmds, cmd)
	m.password, cmd = m.password.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	m.fieldErrs = map[string]string{}
	m.errMsg = ""

	if m.phase == PhaseRequest {
		email := strings.TrimSpace(m.email.Value())
		if email == "" || !strings.Contains(email, "@") {
			m.fieldErrs["email"] = "A valid email is required"
			return m, nil
		}
		m.submitting = true
		return m, func() tea.Msg { return RequestMsg{Email: email} }
	}

	token := strings.TrimSpace(m.token.Value())
	password := m.password.Value()
	if token == "" {
		m.fieldErrs["resetToken"] = "Reset token is required"
	}
	if len(password) < 8 {
		m.fieldErrs["newPassword"] = "Password must be at least 8 characters"
	}
	if len(m.fieldErrs) > 0 {
		return m, nil
	}

	m.submitting = true
	return m, func() tea.Msg { return VerifyMsg{ResetToken: token, NewPassword: password} }
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Key.String() + " Reset password"))
	sb.WriteString("\n\n")

	if m.phase == PhaseRequest {
		sb.WriteString(styles.FocusedLabel.Render("Email") + "\n" + m.email.View() + "\n")
		if msg, ok := m.fieldErrs["email"]; ok {
			sb.WriteString(styles.FieldError.Render(msg) + "\n")
		}
	} else {
		tokenLabel, pwLabel := styles.FocusedLabel, styles.Label
		if m.focus == 1 {
			tokenLabel, pwLabel = styles.Label, styles.FocusedLabel
		}
		sb.WriteString(tokenLabel.Render("Reset token") + "\n" + m.token.View() + "\n")
		if msg, ok := m.fieldErrs["resetToken"]; ok {
			sb.WriteString(styles.FieldError.Render(msg) + "\n")
		}
		sb.WriteString("\n" + pwLabel.Render("New password") + "\n" + m.password.View() + "\n")
		if msg, ok := m.fieldErrs["newPassword"]; ok {
			sb.WriteString(styles.FieldError.Render(msg) + "\n")
		}
	}
	sb.WriteString("\n")

	switch {
	case m.submitting:
		sb.WriteString(styles.Subtitle.Render("Submitting..."))
	case m.errMsg != "":
		sb.WriteString(styles.StatusCritical.Render(m.errMsg))
	case m.infoMsg != "":
		sb.WriteString(styles.StatusOK.Render(m.infoMsg))
	}

	sb.WriteString("\n" + styles.Help.Render("enter Submit  esc Back to login"))

	return sb.String()
}
