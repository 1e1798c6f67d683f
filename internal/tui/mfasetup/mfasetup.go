// ABOUTME: MFA enrollment screen for enabling and disabling a second factor
// ABOUTME: Email setup with code confirmation and one-time backup code display

package mfasetup

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"newsterm/internal/client"
	"newsterm/internal/tui/icons"
	"newsterm/internal/tui/styles"
)

// LoadMsg asks the app to fetch the configured MFA methods
type LoadMsg struct{}

// BeginSetupMsg asks the app to start email MFA enrollment
type BeginSetupMsg struct{}

// VerifySetupMsg asks the app to confirm enrollment with the emailed code
type VerifySetupMsg struct {
	SetupToken string
	Code       string
}

// DisableMsg asks the app to turn MFA off after code confirmation
type DisableMsg struct {
	Code string
}

// BackMsg returns to the news list
type BackMsg struct{}

// step of the enrollment flow
type step int

const (
	stepStatus step = iota
	stepVerify
	stepBackupCodes
	stepDisable
)

// Model is the MFA settings screen
type Model struct {
	step        step
	methods     *client.MFAMethods
	setupToken  string
	backupCodes []string
	code        textinput.Model
	busy        bool
	errMsg      string
	infoMsg     string
}

// New creates the settings screen; the app fetches methods on entry
func New() *Model {
	code := textinput.New()
	code.Placeholder = "6-digit code"
	code.CharLimit = 6

	return &Model{code: code}
}

// SetBusy flips the in-flight gate for backend calls
func (m *Model) SetBusy(v bool) {
	m.busy = v
	if v {
		m.errMsg = ""
	}
}

// SetMethods installs fetched method status
func (m *Model) SetMethods(methods *client.MFAMethods) {
	m.busy = false
	m.methods = methods
	m.step = stepStatus
}

// SetupStarted records the setup token and moves to code confirmation.
// The token's validity is server-side; a rejected code surfaces as a failure.
func (m *Model) SetupStarted(data *client.SetupData) {
	m.busy = false
	m.setupToken = data.SetupToken
	m.step = stepVerify
	m.code.SetValue("")
	m.code.Focus()
	m.infoMsg = "A verification code has been emailed to you."
}

// SetupVerified shows the one-time backup codes
func (m *Model) SetupVerified(data *client.SetupVerifyData) {
	m.busy = false
	m.backupCodes = data.BackupCodes
	m.setupToken = ""
	m.step = stepBackupCodes
	m.infoMsg = ""
}

// Disabled returns to the status view after MFA was turned off
func (m *Model) Disabled() {
	m.busy = false
	m.step = stepStatus
	m.infoMsg = "MFA disabled."
}

// SetFailure surfaces a gateway failure. A rejected setup token invalidates
// the enrollment attempt, forcing a restart from the status view.
func (m *Model) SetFailure(f *client.Failure) {
	m.busy = false
	m.infoMsg = ""
	m.errMsg = f.Error()
	if m.step == stepVerify && f.Kind == client.KindMessage {
		m.setupToken = ""
		m.step = stepStatus
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
		var cmd tea.Cmd
		m.code, cmd = m.code.Update(msg)
		return m, cmd
	}

	if m.busy {
		return m, nil
	}

	switch m.step {
	case stepStatus:
		switch keyMsg.String() {
		case "e":
			m.busy = true
			return m, func() tea.Msg { return BeginSetupMsg{} }
		case "d":
			if m.mfaEnabled() {
				m.step = stepDisable
				m.code.SetValue("")
				m.code.Focus()
			}
			return m, nil
		case "r":
			m.busy = true
			return m, func() tea.Msg { return LoadMsg{} }
		case "esc", "b":
			return m, func() tea.Msg { return BackMsg{} }
		}
		return m, nil

	case stepVerify:
		switch keyMsg.String() {
		case "enter":
			code := strings.TrimSpace(m.code.Value())
			if code == "" {
				m.errMsg = "Verification code is required"
				return m, nil
			}
			m.busy = true
			token := m.setupToken
			return m, func() tea.Msg { return VerifySetupMsg{SetupToken: token, Code: code} }
		case "esc":
			m.setupToken = ""
			m.step = stepStatus
			return m, nil
		}

	case stepBackupCodes:
		switch keyMsg.String() {
		case "enter", "esc", "b":
			m.step = stepStatus
			m.backupCodes = nil
			return m, func() tea.Msg { return LoadMsg{} }
		}
		return m, nil

	case stepDisable:
		switch keyMsg.String() {
		case "enter":
			code := strings.TrimSpace(m.code.Value())
			if code == "" {
				m.errMsg = "Verification code is required"
				return m, nil
			}
			m.busy = true
			return m, func() tea.Msg { return DisableMsg{Code: code} }
		case "esc":
			m.step = stepStatus
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.code, cmd = m.code.Update(msg)
	return m, cmd
}

func (m *Model) mfaEnabled() bool {
	return m.methods != nil && len(m.methods.Enabled) > 0
}

// View implements tea.Model
func (m *Model) View() string {
	var sb strings.Builder

	sb.WriteString(styles.Title.Render(icons.Shield.String() + " Two-factor settings"))
	sb.WriteString("\n\n")

	switch m.step {
	case stepStatus:
		m.renderStatus(&sb)
	case stepVerify:
		sb.WriteString(styles.FocusedLabel.Render("Verification code") + "\n" + m.code.View() + "\n\n")
		sb.WriteString(styles.Help.Render("enter Confirm  esc Cancel"))
	case stepBackupCodes:
		sb.WriteString(styles.StatusOK.Render("MFA enabled. Store these backup codes safely:") + "\n\n")
		for _, code := range m.backupCodes {
			sb.WriteString("  " + styles.ValueStyle.Render(code) + "\n")
		}
		sb.WriteString("\n" + styles.StatusWarning.Render("They will not be shown again.") + "\n\n")
		sb.WriteString(styles.Help.Render("enter Done"))
	case stepDisable:
		sb.WriteString(styles.StatusWarning.Render("Disabling MFA requires a current code.") + "\n\n")
		sb.WriteString(styles.FocusedLabel.Render("Verification code") + "\n" + m.code.View() + "\n\n")
		sb.WriteString(styles.Help.Render("enter Disable  esc Cancel"))
	}

	sb.WriteString("\n\n")
	switch {
	case m.busy:
		sb.WriteString(styles.Subtitle.Render("Working..."))
	case m.errMsg != "":
		sb.WriteString(styles.StatusCritical.Render(m.errMsg))
	case m.infoMsg != "":
		sb.WriteString(styles.StatusOK.Render(m.infoMsg))
	}

	return sb.String()
}

func (m *Model) renderStatus(sb *strings.Builder) {
	if m.methods == nil {
		sb.WriteString(styles.Subtitle.Render("Loading MFA status...") + "\n")
		return
	}

	status := styles.StatusWarning.Render(icons.Unlock.String() + " Disabled")
	if m.mfaEnabled() {
		status = styles.StatusOK.Render(icons.CheckOK.String() + " Enabled: " + strings.Join(m.methods.Enabled, ", "))
	}
	sb.WriteString(styles.Label.Render("Status: ") + status + "\n")

	if m.methods.Primary != "" {
		sb.WriteString(styles.Label.Render("Primary: ") + styles.ValueStyle.Render(m.methods.Primary) + "\n")
	}
	backup := "no"
	if m.methods.HasBackupCodes {
		backup = "yes"
	}
	sb.WriteString(styles.Label.Render("Backup codes: ") + styles.ValueStyle.Render(backup) + "\n\n")

	sb.WriteString(styles.Help.Render("e Enable email MFA  d Disable  r Refresh  b Back"))
}
