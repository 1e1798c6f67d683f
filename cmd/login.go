// ABOUTME: Login command for the newsterm CLI
// ABOUTME: Credential login with interactive prompts and MFA completion

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"newsterm/internal/client"
	"newsterm/internal/session"
)

var (
	loginUsername string
	loginPassword string
	loginMethod   string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in and store session tokens",
	Long: `Authenticate against the backend and store the issued tokens.

Missing credentials are prompted for interactively. Accounts with
two-factor authentication enabled are asked for a verification code.

Exit codes:
  0 - Logged in
  1 - Authentication rejected
  2 - Error (connectivity, invalid input)`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer cancel()

		exitCode := runLogin(ctx, os.Stdout)
		if exitCode != 0 {
			os.Exit(exitCode)
		}
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVarP(&loginUsername, "username", "u", "", "Account username")
	loginCmd.Flags().StringVarP(&loginPassword, "password", "p", "", "Account password (prompted when omitted)")
	loginCmd.Flags().StringVar(&loginMethod, "method", "", "MFA method to use: email, totp, or backup")
}

// runLogin executes the credential login and returns exit code
func runLogin(ctx context.Context, w io.Writer) int {
	_, api, mgr, err := newSession()
	if err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	mgr.Restore()

	if err := promptCredentials(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}

	res := mgr.Login(ctx, loginUsername, loginPassword)
	if !res.Success {
		fmt.Fprintf(w, "Login failed: %s\n", res.Message)
		for _, fe := range res.Fields {
			fmt.Fprintf(w, "  %s: %s\n", fe.Field, fe.Message)
		}
		return 1
	}

	if res.RequiresMFA {
		return completeMFA(ctx, w, api, mgr)
	}

	fmt.Fprintf(w, "Logged in as %s\n", loginUsername)
	return 0
}

// promptCredentials fills missing username/password interactively
func promptCredentials() error {
	var fields []huh.Field
	if loginUsername == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Value(&loginUsername))
	}
	if loginPassword == "" {
		fields = append(fields, huh.NewInput().
			Title("Password").
			EchoMode(huh.EchoModePassword).
			Value(&loginPassword))
	}
	if len(fields) == 0 {
		return nil
	}
	return huh.NewForm(huh.NewGroup(fields...)).Run()
}

// completeMFA walks the second-factor challenge on the terminal
func completeMFA(ctx context.Context, w io.Writer, api *client.Client, mgr *session.Manager) int {
	token, ok := mgr.PendingLoginToken()
	if !ok {
		fmt.Fprintln(w, "Error: verification required but no pending login")
		return 2
	}

	method := strings.ToLower(loginMethod)
	if method == "" {
		if err := huh.NewSelect[string]().
			Title("Verification method").
			Options(
				huh.NewOption("Authenticator app (TOTP)", client.MethodTOTP),
				huh.NewOption("Email code", client.MethodEmail),
				huh.NewOption("Backup code", client.MethodBackup),
			).
			Value(&method).
			Run(); err != nil {
			fmt.Fprintf(w, "Error: %v\n", err)
			return 2
		}
	}

	if method == client.MethodEmail {
		if err := api.SendOTP(ctx, token, method); err != nil {
			fmt.Fprintf(w, "Error: %v\n", client.AsFailure(err))
			return 2
		}
		fmt.Fprintln(w, "A verification code has been sent to your email.")
	}

	var code string
	prompt := "Verification code"
	if method == client.MethodBackup {
		prompt = "Backup code"
	}
	if err := huh.NewInput().Title(prompt).Value(&code).Run(); err != nil {
		fmt.Fprintf(w, "Error: %v\n", err)
		return 2
	}
	code = strings.TrimSpace(code)

	var verifyCode, backupCode string
	if method == client.MethodBackup {
		backupCode = code
	} else {
		verifyCode = code
	}

	data, err := api.VerifyMFA(ctx, token, method, verifyCode, backupCode)
	if err != nil {
		f := client.AsFailure(err)
		fmt.Fprintf(w, "Verification failed: %s\n", f.Error())
		if f.Kind == client.KindNetwork {
			return 2
		}
		return 1
	}

	res := mgr.CompleteMFALogin(data.Tokens, data.User)
	if !res.Success {
		fmt.Fprintf(w, "Error: %s\n", res.Message)
		return 2
	}

	fmt.Fprintf(w, "Logged in as %s\n", data.User.Username)
	return 0
}
