package textnorm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "LAGNAT at Ubo", "lagnat at ubo"},
		{"collapses whitespace", "  masakit   ang\ttiyan ", "masakit ang tiyan"},
		{"strips punctuation", "!!sumasakit ang ulo ko...", "sumasakit ang ulo ko"},
		{"empty", "   ", ""},
		{"single rune", "a", "a"},
		{"mixed taglish", "May FEVER ako, at sakit ng ulo!", "may fever ako at sakit ng ulo"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Normalize(tc.input))
		})
	}
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"lagnat", "at", "ubo"}, Tokens(" Lagnat, at ubo! "))
	assert.Empty(t, Tokens(""))
}

func TestContainsPhrase(t *testing.T) {
	text := Normalize("masakit ang ulo ko at may lagnat")

	assert.True(t, ContainsPhrase(text, "sakit"))
	assert.True(t, ContainsPhrase(text, "Lagnat"))
	assert.True(t, ContainsPhrase(text, "ang  ulo"))
	assert.False(t, ContainsPhrase(text, "tiyan"))
	assert.False(t, ContainsPhrase(text, ""))
}
