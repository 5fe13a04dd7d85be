package keystore

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/term"
)

const MinPassphraseLen = 8

func PromptLineWithDefault(in io.Reader, out io.Writer, label, def string) string {
	if def != "" {
		_, _ = fmt.Fprintf(out, "%s [%s]: ", label, def)
	} else {
		_, _ = fmt.Fprintf(out, "%s: ", label)
	}

	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && line == "" {
		return def
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return def
	}
	return line
}

// PromptPassphrase reads a passphrase from the terminal without echo.
func PromptPassphrase(prompt string) ([]byte, error) {
	_, _ = fmt.Fprint(os.Stderr, prompt)
	pw, err := term.ReadPassword(int(os.Stdin.Fd()))
	_, _ = fmt.Fprintln(os.Stderr)

	if err != nil {
		ZeroBytes(pw)
		return nil, errors.Wrap(err, "passphrase input failed")
	}
	if len(pw) == 0 {
		return nil, errors.New("passphrase cannot be empty")
	}
	return pw, nil
}

// PromptNewPassphrase asks twice and enforces MinPassphraseLen.
func PromptNewPassphrase() ([]byte, error) {
	pw, err := PromptPassphrase("New keystore passphrase: ")
	if err != nil {
		return nil, err
	}
	if err := ValidatePassphrase(pw); err != nil {
		ZeroBytes(pw)
		return nil, err
	}
	confirm, err := PromptPassphrase("Repeat passphrase: ")
	if err != nil {
		ZeroBytes(pw)
		return nil, err
	}
	defer ZeroBytes(confirm)
	if !bytes.Equal(pw, confirm) {
		ZeroBytes(pw)
		return nil, errors.New("passphrases do not match")
	}
	return pw, nil
}

func ValidatePassphrase(pw []byte) error {
	if len(pw) < MinPassphraseLen {
		return errors.Errorf("passphrase must be at least %d characters long", MinPassphraseLen)
	}
	return nil
}
