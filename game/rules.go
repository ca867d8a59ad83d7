package game

import (
	"fmt"
	"strings"
)

// Commands a player may submit in place of a word.
const (
	ExitCommand   = "/exit"
	ChangeCommand = "/change"
)

type Command int

const (
	CommandWord Command = iota
	CommandExit
	CommandChange
)

// RuleError is a recoverable move rejection. It never ends a round; the
// submitter keeps the turn and gets the reason back.
type RuleError struct {
	Reason string
}

func (e *RuleError) Error() string {
	return e.Reason
}

// ParseInput normalizes one submitted line and classifies it. Words are
// compared and stored trimmed and lower-cased.
func ParseInput(line string) (Command, string) {
	word := strings.ToLower(strings.TrimSpace(line))
	switch word {
	case ExitCommand:
		return CommandExit, ""
	case ChangeCommand:
		return CommandChange, ""
	}
	return CommandWord, word
}

// CheckWord validates a normalized word against the chain rules: it must be
// new, and after the first word it must start with the final letter of the
// previous one.
func CheckWord(history []string, word string) error {
	if word == "" {
		return &RuleError{Reason: "empty word"}
	}

	for _, used := range history {
		if used == word {
			return &RuleError{Reason: fmt.Sprintf("word %s already used", word)}
		}
	}

	if len(history) > 0 {
		last := []rune(history[len(history)-1])
		first := []rune(word)
		if first[0] != last[len(last)-1] {
			return &RuleError{Reason: fmt.Sprintf("word must start with letter %c", last[len(last)-1])}
		}
	}

	return nil
}
