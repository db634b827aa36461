package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"github.com/yolodolo42/ethwallet/internal/setup"
	"golang.org/x/term"
)

// readLine reads one line from stdin without the line break.
func (st *state) readLine() (string, error) {
	line, err := st.in.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// prompt shows label on stderr and reads a visible line.
func (st *state) prompt(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	return st.readLine()
}

// secret reads without echo on a terminal and as a plain line otherwise.
func (st *state) secret(cmd *cobra.Command, label string) (string, error) {
	fmt.Fprint(cmd.ErrOrStderr(), label)
	if !st.terminal {
		return st.readLine()
	}
	b, err := term.ReadPassword(st.stdinFd)
	fmt.Fprintln(cmd.ErrOrStderr()) // newline after password input
	if err != nil {
		return "", fmt.Errorf("read password: %w", err)
	}
	return string(b), nil
}

// newPassword asks for a password twice.
func (st *state) newPassword(cmd *cobra.Command) (string, error) {
	password, err := st.secret(cmd, "Enter password for wallet: ")
	if err != nil {
		return "", err
	}
	if len(password) < setup.MinPasswordLength {
		return "", fmt.Errorf("password must be at least %d characters", setup.MinPasswordLength)
	}

	confirm, err := st.secret(cmd, "Confirm password: ")
	if err != nil {
		return "", err
	}
	if password != confirm {
		return "", errors.New("passwords do not match")
	}
	return password, nil
}

// confirm asks a yes/no question; yes skips it.
func (st *state) confirm(cmd *cobra.Command, question string, yes bool) (bool, error) {
	if yes {
		return true, nil
	}
	answer, err := st.prompt(cmd, question+" [y/N]: ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(strings.TrimSpace(answer)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
