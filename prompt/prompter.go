// Package prompt reads secrets from the operator's terminal.
package prompt

import (
	"os"

	"github.com/charmbracelet/huh"

	"github.com/signpack/signpack/signing/entities"
)

// Prompter asks for secrets interactively. It refuses to run without a
// terminal: the keystore password never comes from arguments or files.
type Prompter struct{}

// NewPrompter creates a new Prompter.
func NewPrompter() *Prompter {
	return &Prompter{}
}

// IsInteractive checks if we're running in an interactive terminal.
func (p *Prompter) IsInteractive() bool {
	fileInfo, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Password prompts for a secret with masked echo.
func (p *Prompter) Password(title string) (string, error) {
	if !p.IsInteractive() {
		return "", entities.ErrNotInteractive
	}

	var secret string
	err := huh.NewInput().
		Title(title).
		EchoMode(huh.EchoModePassword).
		Value(&secret).
		Run()
	if err != nil {
		return "", err
	}
	return secret, nil
}
