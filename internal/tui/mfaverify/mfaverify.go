// ABOUTME: MFA challenge screen driving the second-factor verification flow
// ABOUTME: Method selection, code entry, and the resend countdown live here

package mfaverify

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"newsterm/internal/client"
	"newsterm/internal/tui/icons"
	"newsterm/internal/tui/styles"
)

// ResendWindow is how long resend stays disabled after a dispatch
const ResendWindow = 60 * time.Second

// SendOTPMsg asks the app to dispatch a one-time code for the pending login
type SendOTPMsg struct {
	Method string
}

// VerifyMsg asks the app to verify the entered code against the backend
type VerifyMsg struct {
	Method     string
	Code       string
	BackupCode string
}

// AbandonMsg is sent when the user leaves the challenge and restarts login
type AbandonMsg struct{}

// tickMsg advances the resend countdown once per second. The sequence number
// ties a tick to the dispatch that started it, so a tick left over from a
// previous countdown cannot drive the current one.
type tickMsg struct {
	seq int
}

// methods in cycling order
var methods = []string{client.MethodTOTP, client.MethodEmail, client.MethodBackup}

// Model is the MFA challenge screen
type Model struct {
	method    string
	code      textinput.Model
	backup    textinput.Model
	countdown int // seconds until resend is allowed, 0 means allowed
	tickSeq   int // countdown generation; stale ticks are dropped
	sending   bool
	verifying bool
	otpSent   bool
	errMsg    string
	fieldErrs map[string]string
}

// New creates the challenge screen with the authenticator method selected
func New() *Model {
	code := textinput.New()
	code.Placeholder = "6-digit code"
	code.CharLimit = 6
	code.Focus()

	backup := textinput.New()
	backup.Placeholder = "backup code"
	backup.CharLimit = 8

	return &Model{
		method:    client.MethodTOTP,
		code:      code,
		backup:    backup,
		fieldErrs: map[string]string{},
	}
}

// Method returns the currently selected verification method
func (m *Model) Method() string {
	return m.method
}

// SetMethod preselects a verification method, e.g. when the app dispatches
// the first email code itself
func (m *Model) SetMethod(method string) {
	m.method = method
	if method == client.MethodBackup {
		m.code.Blur()
		m.backup.Focus()
	} else {
		m.backup.Blur()
		m.code.Focus()
	}
}

// Busy reports whether a dispatch or verification call is in flight
func (m *Model) Busy() bool {
	return m.sending || m.verifying
}

// MarkSending flips the dispatch gate while a send-otp call runs
func (m *Model) MarkSending() {
	m.sending = true
	m.errMsg = ""
}

// OTPDispatched records a successful code dispatch: the countdown restarts
// at its full window and any previously entered code is discarded.
func (m *Model) OTPDispatched() tea.Cmd {
	m.sending = false
	m.otpSent = true
	m.countdown = int(ResendWindow / time.Second)
	m.tickSeq++
	m.code.SetValue("")
	m.backup.SetValue("")
	return tick(m.tickSeq)
}

// DispatchFailed surfaces a failed send-otp call; resend stays available
func (m *Model) DispatchFailed(f *client.Failure) {
	m.sending = false
	m.errMsg = f.Error()
}

// VerifyFailed surfaces a failed verification. The pending login token is
// kept; the user may retry or resend within the same attempt.
func (m *Model) VerifyFailed(f *client.Failure) {
	m.verifying = false
	m.fieldErrs = map[string]string{}
	switch f.Kind {
	case client.KindFieldErrors:
		for _, fe := range f.Fields {
			m.fieldErrs[fe.Field] = fe.Message
		}
		m.errMsg = f.Message
	default:
		msg := f.Error()
		if msg == "" {
			msg = "MFA verification failed."
		}
		m.errMsg = msg
	}
}

func tick(seq int) tea.Cmd {
	return tea.Tick(time.Second, func(time.Time) tea.Msg {
		return tickMsg{seq: seq}
	})
}

// Init implements tea.Model
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		if msg.seq != m.tickSeq {
			return m, nil
		}
		if m.countdown > 0 {
			m.countdown--
			if m.countdown > 0 {
				return m, tick(m.tickSeq)
			}
		}
		return m, nil

	case tea.KeyMsg:
		if m.Busy() {
			return m, nil
		}
		switch msg.String() {
		case "esc":
			return m, func() tea.Msg { return AbandonMsg{} }
		case "ctrl+m", "left", "right":
			return m, m.cycleMethod(msg.String() != "left")
		case "ctrl+s":
			return m.resend()
		case "enter":
			return m.submit()
		}
		return m.updateInputs(msg)
	}

	return m.updateInputs(msg)
}

func (m *Model) updateInputs(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	if m.method == client.MethodBackup {
		m.backup, cmd = m.backup.Update(msg)
	} else {
		m.code, cmd = m.code.Update(msg)
	}
	return m, cmd
}

// cycleMethod switches the verification method. Switching resets the
// countdown and clears any entered input; switching to email dispatches a
// fresh code.
func (m *Model) cycleMethod(forward bool) tea.Cmd {
	idx := 0
	for i, method := range methods {
		if method == m.method {
			idx = i
			break
		}
	}
	if forward {
		idx = (idx + 1) % len(methods)
	} else {
		idx = (idx + len(methods) - 1) % len(methods)
	}
	m.method = methods[idx]

	m.countdown = 0
	m.tickSeq++
	m.otpSent = false
	m.code.SetValue("")
	m.backup.SetValue("")
	m.fieldErrs = map[string]string{}
	m.errMsg = ""

	if m.method == client.MethodBackup {
		m.code.Blur()
		m.backup.Focus()
	} else {
		m.backup.Blur()
		m.code.Focus()
	}

	if m.method == client.MethodEmail {
		method := m.method
		return func() tea.Msg { return SendOTPMsg{Method: method} }
	}
	return nil
}

// resend requests a new code. Only email codes are dispatched by the server;
// the resend stays disabled until the countdown elapses.
func (m *Model) resend() (tea.Model, tea.Cmd) {
	if m.method != client.MethodEmail {
		m.errMsg = "Codes for this method come from your authenticator; nothing to resend."
		return m, nil
	}
	if m.countdown > 0 {
		m.errMsg = fmt.Sprintf("Please wait %d seconds before resending.", m.countdown)
		return m, nil
	}
	method := m.method
	return m, func() tea.Msg { return SendOTPMsg{Method: method} }
}

func (m *Model) submit() (tea.Model, tea.Cmd) {
	m.fieldErrs = map[string]string{}
	m.errMsg = ""

	var code, backupCode string
	if m.method == client.MethodBackup {
		backupCode = strings.TrimSpace(m.backup.Value())
		if backupCode == "" {
			m.fieldErrs["backupCode"] = "Backup code is required"
			return m, nil
		}
	} else {
		code = strings.TrimSpace(m.code.Value())
		if code == "" {
			m.fieldErrs["verificationCode"] = "Verification code is required"
			return m, nil
		}
	}

	m.verifying = true
	method := m.method
	return m, func() tea.Msg {
		return VerifyMsg{Method: method, Code: code, BackupCode: backupCode}
	}
}

func methodLabel(method string) string {
	switch method {
	case client.MethodEmail:
		return "Email OTP"
	case client.MethodTOTP:
		return "Authenticator app (TOTP)"
	case client.MethodBackup:
		return "Backup code"
	default:
		return method
	}
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Shield.String() + " Two-factor verification"))
	sb.WriteString("\n\n")

	sb.WriteString(styles.Label.Render("Method: "))
	sb.WriteString(styles.ValueStyle.Render(methodLabel(m.method)))
	sb.WriteString(styles.Help.Render("  (←/→ to switch)"))
	sb.WriteString("\n\n")

	if m.method == client.MethodBackup {
		sb.WriteString(styles.FocusedLabel.Render("Backup code") + "\n" + m.backup.View() + "\n")
		if msg, ok := m.fieldErrs["backupCode"]; ok {
			sb.WriteString(styles.FieldError.Render(msg) + "\n")
		}
	} else {
		sb.WriteString(styles.FocusedLabel.Render("Verification code") + "\n" + m.code.View() + "\n")
		if msg, ok := m.fieldErrs["verificationCode"]; ok {
			sb.WriteString(styles.FieldError.Render(msg) + "\n")
		}
	}
	sb.WriteString("\n")

	switch {
	case m.sending:
		sb.WriteString(styles.Subtitle.Render("Sending code..."))
	case m.verifying:
		sb.WriteString(styles.Subtitle.Render("Verifying..."))
	case m.errMsg != "":
		sb.WriteString(styles.StatusCritical.Render(m.errMsg))
	case m.method == client.MethodEmail && m.otpSent && m.countdown > 0:
		sb.WriteString(styles.Subtitle.Render(
			fmt.Sprintf("%s Resend available in %ds", icons.Clock.String(), m.countdown)))
	case m.method == client.MethodEmail && m.otpSent:
		sb.WriteString(styles.Subtitle.Render("Resend available (ctrl+s)"))
	}

	sb.WriteString("\n" + styles.Help.Render(
		"enter Verify  ←/→ Method  ctrl+s Resend  esc Back to login"))

	return sb.String()
}
