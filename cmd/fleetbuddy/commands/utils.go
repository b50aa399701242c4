package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"syscall"

	"fleetbuddy/cmd/fleetbuddy/config"
	"fleetbuddy/internal/runner"

	"github.com/spf13/cobra"
	"golang.org/x/term"
)

func readPasswordSecurely(prompt string, errOut io.Writer) (string, error) {
	// prompt goes to stderr so stdout stays clean for --json output
	fmt.Fprintf(errOut, "%s", prompt)

	bytePassword, err := term.ReadPassword(int(syscall.Stdin))

	fmt.Fprintf(errOut, "\n")

	if err != nil {
		return "", err
	}
	return string(bytePassword), nil
}

type secretNeeds struct {
	sudo bool
	ssh  bool
}

// resolveCredentials takes secrets from the environment and prompts for any
// that are still missing when stdin is a terminal.
func resolveCredentials(cmd *cobra.Command, needs secretNeeds) (runner.Credentials, error) {
	creds := runner.Credentials{
		SudoPassword:  os.Getenv(config.SudoPasswordEnv),
		SSHPassphrase: os.Getenv(config.SSHPassphraseEnv),
	}

	interactive := term.IsTerminal(int(syscall.Stdin))

	if needs.sudo && creds.SudoPassword == "" && interactive {
		password, err := readPasswordSecurely("🔑 sudo password: ", cmd.ErrOrStderr())
		if err != nil {
			return creds, fmt.Errorf("failed to read sudo password: %w", err)
		}
		creds.SudoPassword = password
	}

	if needs.ssh && creds.SSHPassphrase == "" && interactive {
		passphrase, err := readPasswordSecurely("🔑 SSH key passphrase (empty if none): ", cmd.ErrOrStderr())
		if err != nil {
			return creds, fmt.Errorf("failed to read SSH passphrase: %w", err)
		}
		creds.SSHPassphrase = passphrase
	}

	return creds, nil
}

func streamTo(out io.Writer, errOut io.Writer) runner.OutputHandler {
	return func(event runner.OutputEvent) {
		if event.Stream == runner.StreamStderr {
			fmt.Fprint(errOut, event.Chunk)
			return
		}
		fmt.Fprint(out, event.Chunk)
	}
}

func printJSON(out io.Writer, v interface{}) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

// printResult writes a run result. Output that was already streamed is not
// repeated.
func printResult(cmd *cobra.Command, result *runner.Result, streamed bool) {
	if !streamed {
		if result.Stdout != "" {
			fmt.Fprint(cmd.OutOrStdout(), result.Stdout)
		}
		if result.Stderr != "" {
			fmt.Fprint(cmd.ErrOrStderr(), result.Stderr)
		}
	}

	if !result.Success {
		cmd.PrintErrf("❌ Error: %s\n", result.ErrorMessage)
	}
}

func exitCodeString(code *int) string {
	if code == nil {
		return "-"
	}
	return fmt.Sprintf("%d", *code)
}
