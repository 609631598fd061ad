package cli

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"bilicred/internal/common"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// GetSimpleText prints a prompt to w and reads a single line of input
// from reader. The trailing newline is trimmed. If EOF occurs after some
// input was read, the partial line is returned.
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints prompt to w and reads a passphrase from the user's
// terminal without echo. A newline is printed after the read to keep the
// UI tidy.
//
// The returned byte slice should be wiped by the caller when no longer
// needed.
func GetPassword(w io.Writer, prompt string) ([]byte, error) {
	if _, err := fmt.Fprint(w, prompt); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// getPassphraseTwice prompts for a new passphrase and its confirmation
// until both reads match.
func getPassphraseTwice(w io.Writer) ([]byte, error) {
	for {
		p1, err := GetPassword(w, "Enter passphrase: ")
		if err != nil {
			return nil, err
		}
		p2, err := GetPassword(w, "Repeat passphrase: ")
		if err != nil {
			common.WipeByteArray(p1)
			return nil, err
		}
		if bytes.Equal(p1, p2) {
			common.WipeByteArray(p2)
			return p1, nil
		}
		common.WipeByteArray(p1)
		common.WipeByteArray(p2)
		fmt.Fprintln(w, "Passphrases do not match, try again.")
	}
}
