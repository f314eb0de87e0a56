// Package textmatch compares a transcription against a registered passphrase.
package textmatch

import (
	"fmt"
	"slices"
	"strings"
	"unicode"
)

// Strategy names a passphrase comparison rule.
type Strategy string

const (
	// StrategySubset accepts a transcription that contains every passphrase word,
	// in any order, possibly surrounded by filler words.
	StrategySubset Strategy = "subset"
	// StrategyExact requires the normalized word sequences to be identical.
	StrategyExact Strategy = "exact"
)

// Matcher decides whether a transcription satisfies an expected passphrase.
type Matcher interface {
	Match(transcribed, expected string) bool
}

// New returns the Matcher for the given strategy. An empty strategy selects subset.
func New(s Strategy) (Matcher, error) {
	switch s {
	case StrategySubset, "":
		return Subset{}, nil
	case StrategyExact:
		return Exact{}, nil
	default:
		return nil, fmt.Errorf("textmatch: unknown strategy %q (supported: subset, exact)", s)
	}
}

// Subset implements order-independent containment of the expected words.
type Subset struct{}

// Match reports whether every token of expected appears among the tokens of transcribed.
// An empty expected phrase always matches.
func (Subset) Match(transcribed, expected string) bool {
	have := make(map[string]struct{})
	for _, tok := range Tokens(transcribed) {
		have[tok] = struct{}{}
	}
	for _, tok := range Tokens(expected) {
		if _, ok := have[tok]; !ok {
			return false
		}
	}
	return true
}

// Exact implements normalized equality.
type Exact struct{}

// Match reports whether both phrases normalize to the same token sequence.
func (Exact) Match(transcribed, expected string) bool {
	return slices.Equal(Tokens(transcribed), Tokens(expected))
}

// Normalize strips every rune that is not a letter, digit or whitespace and lower-cases the rest.
func Normalize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r):
			return unicode.ToLower(r)
		case unicode.IsSpace(r):
			return r
		default:
			return -1
		}
	}, s)
}

// Tokens returns the whitespace-separated words of the normalized phrase.
func Tokens(s string) []string {
	return strings.Fields(Normalize(s))
}
