package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseInput(t *testing.T) {
	cases := []struct {
		line string
		cmd  Command
		word string
	}{
		{"Berlin", CommandWord, "berlin"},
		{"  Tokyo \n", CommandWord, "tokyo"},
		{"/exit", CommandExit, ""},
		{" /EXIT ", CommandExit, ""},
		{"/change", CommandChange, ""},
		{"", CommandWord, ""},
	}

	for _, tc := range cases {
		cmd, word := ParseInput(tc.line)
		assert.Equal(t, tc.cmd, cmd, "line %q", tc.line)
		assert.Equal(t, tc.word, word, "line %q", tc.line)
	}
}

func TestCheckWord_FirstWordAccepted(t *testing.T) {
	assert.NoError(t, CheckWord(nil, "berlin"))
}

func TestCheckWord_ChainRule(t *testing.T) {
	history := []string{"berlin"}

	// "berlin" ends in n, so the next word must start with n.
	assert.NoError(t, CheckWord(history, "nairobi"))

	err := CheckWord(history, "tokyo")
	require.Error(t, err)
	assert.Equal(t, "word must start with letter n", err.Error())
}

func TestCheckWord_DuplicateRejected(t *testing.T) {
	history := []string{"berlin", "nairobi"}

	err := CheckWord(history, "berlin")
	require.Error(t, err)
	assert.Equal(t, "word berlin already used", err.Error())
}

func TestCheckWord_RejectionIsIdempotent(t *testing.T) {
	history := []string{"berlin"}

	first := CheckWord(history, "berlin")
	second := CheckWord(history, "berlin")
	require.Error(t, first)
	require.Error(t, second)
	assert.Equal(t, first.Error(), second.Error())
}

func TestCheckWord_EmptyWordRejected(t *testing.T) {
	err := CheckWord(nil, "")
	require.Error(t, err)

	var ruleErr *RuleError
	assert.ErrorAs(t, err, &ruleErr)
}

func TestCheckWord_Unicode(t *testing.T) {
	// Multi-byte letters: the rule compares runes, not bytes.
	history := []string{"москва"}

	assert.NoError(t, CheckWord(history, "астрахань"))

	err := CheckWord(history, "омск")
	require.Error(t, err)
	assert.Equal(t, "word must start with letter а", err.Error())
}
