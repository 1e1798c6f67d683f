// ABOUTME: Tests for the MFA challenge screen
// ABOUTME: Covers the resend countdown, method switching, and submit gating

package mfaverify

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"newsterm/internal/client"
)

func typeCode(m *Model, code string) *Model {
	for _, r := range code {
		model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
		m = model.(*Model)
	}
	return m
}

func TestNew_DefaultsToTOTP(t *testing.T) {
	m := New()
	if m.Method() != client.MethodTOTP {
		t.Errorf("expected totp default, got %s", m.Method())
	}
	if m.Busy() {
		t.Error("expected idle model")
	}
}

func TestOTPDispatched_StartsCountdown(t *testing.T) {
	m := New()
	m.SetMethod(client.MethodEmail)
	m = typeCode(m, "123")

	m.MarkSending()
	cmd := m.OTPDispatched()
	if cmd == nil {
		t.Fatal("expected a tick command")
	}
	if m.countdown != int(ResendWindow/time.Second) {
		t.Errorf("expected full countdown, got %d", m.countdown)
	}
	if m.code.Value() != "" {
		t.Error("expected entered code cleared on fresh dispatch")
	}
}

func TestCountdown_TicksDown(t *testing.T) {
	m := New()
	m.SetMethod(client.MethodEmail)
	m.MarkSending()
	m.OTPDispatched()

	start := m.countdown
	model, cmd := m.Update(tickMsg{seq: m.tickSeq})
	m = model.(*Model)
	if m.countdown != start-1 {
		t.Errorf("expected countdown %d, got %d", start-1, m.countdown)
	}
	if cmd == nil {
		t.Error("expected the next tick scheduled")
	}

	// Drain to zero; the last tick stops the clock
	for m.countdown > 0 {
		model, cmd = m.Update(tickMsg{seq: m.tickSeq})
		m = model.(*Model)
	}
	if cmd != nil {
		t.Error("expected no tick once the countdown finished")
	}
}

func TestCountdown_StaleTickDropped(t *testing.T) {
	m := New()
	m.SetMethod(client.MethodEmail)
	m.MarkSending()
	m.OTPDispatched()
	staleSeq := m.tickSeq

	// Cycle away from email with a tick still pending, then come back;
	// returning to email dispatches again and a fresh countdown starts
	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = model.(*Model)
	model, _ = m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	m = model.(*Model)
	m.MarkSending()
	m.OTPDispatched()

	full := m.countdown
	model, cmd := m.Update(tickMsg{seq: staleSeq})
	m = model.(*Model)
	if m.countdown != full {
		t.Errorf("stale tick must not advance the countdown: %d -> %d", full, m.countdown)
	}
	if cmd != nil {
		t.Error("stale tick must not schedule a successor")
	}

	// The current chain still runs at one second per tick
	model, _ = m.Update(tickMsg{seq: m.tickSeq})
	m = model.(*Model)
	if m.countdown != full-1 {
		t.Errorf("expected countdown %d, got %d", full-1, m.countdown)
	}
}

func TestResend_BlockedDuringCountdown(t *testing.T) {
	m := New()
	m.SetMethod(client.MethodEmail)
	m.MarkSending()
	m.OTPDispatched()

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = model.(*Model)
	if cmd != nil {
		t.Error("expected no dispatch while the countdown runs")
	}
	if m.errMsg == "" {
		t.Error("expected a wait message")
	}
}

func TestResend_AllowedAfterCountdown(t *testing.T) {
	m := New()
	m.SetMethod(client.MethodEmail)
	m.MarkSending()
	m.OTPDispatched()
	for m.countdown > 0 {
		model, _ := m.Update(tickMsg{seq: m.tickSeq})
		m = model.(*Model)
	}

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = model.(*Model)
	if cmd == nil {
		t.Fatal("expected a dispatch command")
	}
	msg := cmd()
	if send, ok := msg.(SendOTPMsg); !ok || send.Method != client.MethodEmail {
		t.Errorf("expected SendOTPMsg for email, got %#v", msg)
	}
}

func TestResend_RejectedForTOTP(t *testing.T) {
	m := New()
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyCtrlS})
	m = model.(*Model)
	if cmd != nil {
		t.Error("expected no dispatch for authenticator codes")
	}
	if m.errMsg == "" {
		t.Error("expected an explanation message")
	}
}

func TestCycleMethod_ToEmailDispatches(t *testing.T) {
	m := New() // totp
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = model.(*Model)

	if m.Method() != client.MethodEmail {
		t.Fatalf("expected email after one step, got %s", m.Method())
	}
	if cmd == nil {
		t.Fatal("expected a dispatch on switching to email")
	}
	if _, ok := cmd().(SendOTPMsg); !ok {
		t.Error("expected SendOTPMsg")
	}
}

func TestCycleMethod_ClearsState(t *testing.T) {
	m := New()
	m = typeCode(m, "123456")
	m.errMsg = "stale"

	model, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	m = model.(*Model)
	if m.code.Value() != "" {
		t.Error("expected entered code cleared on method switch")
	}
	if m.errMsg != "" {
		t.Error("expected error cleared on method switch")
	}
}

func TestSubmit_RequiresCode(t *testing.T) {
	m := New()
	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(*Model)
	if cmd != nil {
		t.Error("expected no submission without a code")
	}
	if m.fieldErrs["verificationCode"] == "" {
		t.Error("expected a field error")
	}
}

func TestSubmit_EmitsVerifyMsg(t *testing.T) {
	m := New()
	m = typeCode(m, "123456")

	model, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = model.(*Model)
	if cmd == nil {
		t.Fatal("expected a verify command")
	}
	msg, ok := cmd().(VerifyMsg)
	if !ok {
		t.Fatalf("expected VerifyMsg, got %#v", cmd())
	}
	if msg.Method != client.MethodTOTP || msg.Code != "123456" || msg.BackupCode != "" {
		t.Errorf("unexpected verify message: %+v", msg)
	}
	if !m.Busy() {
		t.Error("expected verifying gate set")
	}
}

func TestSubmit_BackupCode(t *testing.T) {
	m := New()
	m.SetMethod(client.MethodBackup)
	m = typeCode(m, "ZXCV1234")

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a verify command")
	}
	msg := cmd().(VerifyMsg)
	if msg.Method != client.MethodBackup || msg.BackupCode != "ZXCV1234" || msg.Code != "" {
		t.Errorf("unexpected verify message: %+v", msg)
	}
}

func TestBusy_BlocksInput(t *testing.T) {
	m := New()
	m = typeCode(m, "123456")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	// A second enter while verifying must do nothing
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected input blocked while verifying")
	}
}

func TestVerifyFailed_AllowsRetry(t *testing.T) {
	m := New()
	m = typeCode(m, "123456")
	m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	m.VerifyFailed(&client.Failure{Kind: client.KindMessage, Message: "Invalid verification code"})
	if m.Busy() {
		t.Error("expected gate released after failure")
	}
	if m.errMsg != "Invalid verification code" {
		t.Errorf("unexpected error message: %s", m.errMsg)
	}
}

func TestEsc_EmitsAbandon(t *testing.T) {
	m := New()
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected a command")
	}
	if _, ok := cmd().(AbandonMsg); !ok {
		t.Errorf("expected AbandonMsg, got %#v", cmd())
	}
}
