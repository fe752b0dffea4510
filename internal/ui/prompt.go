package ui

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// LineReader is the part of readline.Instance Confirm needs.
type LineReader interface {
	Readline() (string, error)
}

// NewPrompt creates a readline instance showing prompt.
func NewPrompt(prompt string) (*readline.Instance, error) {
	return readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
}

// Confirm reads one answer. Only y and yes confirm; EOF and Ctrl-C decline.
func Confirm(rl LineReader) (bool, error) {
	line, err := rl.Readline()
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, readline.ErrInterrupt) {
			return false, nil
		}
		return false, err
	}

	switch strings.ToLower(strings.TrimSpace(line)) {
	case "y", "yes":
		return true, nil
	}
	return false, nil
}
