package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// terminalSecret reads a line without echo when stdin is a terminal and falls back to a
// plain line read for piped input.
func terminalSecret(in *bufio.Reader, stdin *os.File, prompts io.Writer) func(string) (string, error) {
	return func(prompt string) (string, error) {
		_, _ = fmt.Fprint(prompts, prompt)
		fd := int(stdin.Fd())
		if !term.IsTerminal(fd) {
			line, err := in.ReadString('\n')
			if err != nil && line == "" {
				return "", fmt.Errorf("secret input failed: %w", err)
			}
			return strings.TrimSpace(line), nil
		}

		secret, err := term.ReadPassword(fd)
		_, _ = fmt.Fprintln(prompts)
		if err != nil {
			return "", fmt.Errorf("secret input failed: %w", err)
		}
		return strings.TrimSpace(string(secret)), nil
	}
}

func readLine(in *bufio.Reader) (string, bool) {
	line, err := in.ReadString('\n')
	if err != nil && line == "" {
		return "", false
	}
	return strings.TrimSpace(line), true
}
