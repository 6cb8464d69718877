// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package fuzzy ranks short strings, such as room names, against a
// typed pattern using fzf's matching algorithm.
package fuzzy

import (
	"slices"
	"strings"
	"unicode"

	"github.com/junegunn/fzf/src/algo"
	"github.com/junegunn/fzf/src/util"
)

// Match is one candidate that matched the pattern.
type Match struct {
	// Index is the candidate's position in the input slice.
	Index int

	Candidate string
	Score     int

	// Positions are the rune indices of matched characters in
	// ascending order.
	Positions []int
}

// Score matches pattern against text, ignoring case. A zero score
// means no match. slab may be nil; pass one from [NewSlab] when
// scoring many candidates.
func Score(text string, pattern []rune, slab *util.Slab) (int, []int) {
	if len(pattern) == 0 || text == "" {
		return 0, nil
	}
	lowered := make([]rune, len(pattern))
	for index, r := range pattern {
		lowered[index] = unicode.ToLower(r)
	}

	chars := util.ToChars([]byte(strings.ToLower(text)))
	result, positions := algo.FuzzyMatchV2(false, true, true, &chars, lowered, true, slab)
	if result.Score <= 0 || positions == nil {
		return 0, nil
	}
	matched := slices.Clone(*positions)
	slices.Sort(matched)
	return result.Score, matched
}

// NewSlab returns scratch space for repeated [Score] calls from one
// goroutine.
func NewSlab() *util.Slab {
	return util.MakeSlab(100*1024, 2048)
}

// Rank returns the candidates matching pattern, best first. Equal
// scores keep input order. An empty pattern matches every candidate
// with score zero.
func Rank(pattern string, candidates []string) []Match {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		matches := make([]Match, len(candidates))
		for index, candidate := range candidates {
			matches[index] = Match{Index: index, Candidate: candidate}
		}
		return matches
	}

	runes := []rune(pattern)
	slab := NewSlab()
	var matches []Match
	for index, candidate := range candidates {
		score, positions := Score(candidate, runes, slab)
		if score == 0 {
			continue
		}
		matches = append(matches, Match{
			Index:     index,
			Candidate: candidate,
			Score:     score,
			Positions: positions,
		})
	}
	slices.SortStableFunc(matches, func(a, b Match) int {
		return b.Score - a.Score
	})
	return matches
}

// Best returns up to limit candidate strings from [Rank].
func Best(pattern string, candidates []string, limit int) []string {
	matches := Rank(pattern, candidates)
	if limit >= 0 && len(matches) > limit {
		matches = matches[:limit]
	}
	names := make([]string, len(matches))
	for index, match := range matches {
		names[index] = match.Candidate
	}
	return names
}
