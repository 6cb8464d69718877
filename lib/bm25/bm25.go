// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bm25

import (
	"math"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Okapi BM25 parameters at their usual values.
const (
	paramK1 = 1.2
	paramB  = 0.75
)

// minTokenLength drops one-rune tokens such as "a" or "I".
const minTokenLength = 2

// Field is weighted text. A weight of zero or less skips the field.
type Field struct {
	Text   string
	Weight int
}

// Document is one message to rank. ID is returned in results and is
// not itself scored.
type Document struct {
	ID     string
	Fields []Field
}

// Result is a ranked hit.
type Result struct {
	ID string

	// Position is the document's index in the slice given to New.
	Position int

	// Score is unbounded; higher is more relevant.
	Score float64
}

// Index is a BM25 index over a fixed set of documents.
type Index struct {
	ids             []string
	termFrequencies []map[string]int
	lengths         []int
	averageLength   float64
	idf             map[string]float64
}

// New indexes documents.
func New(documents []Document) *Index {
	index := &Index{
		ids:             make([]string, len(documents)),
		termFrequencies: make([]map[string]int, len(documents)),
		lengths:         make([]int, len(documents)),
		idf:             make(map[string]float64),
	}

	documentFrequency := make(map[string]int)
	totalLength := 0
	for position, document := range documents {
		index.ids[position] = document.ID

		tokens := compositeTokens(document)
		index.lengths[position] = len(tokens)
		totalLength += len(tokens)

		frequencies := make(map[string]int)
		for _, token := range tokens {
			if frequencies[token] == 0 {
				documentFrequency[token]++
			}
			frequencies[token]++
		}
		index.termFrequencies[position] = frequencies
	}
	if len(documents) > 0 {
		index.averageLength = float64(totalLength) / float64(len(documents))
	}

	// The +1 form keeps IDF positive for terms in every document.
	count := float64(len(documents))
	for term, frequency := range documentFrequency {
		index.idf[term] = math.Log(1 + (count-float64(frequency)+0.5)/(float64(frequency)+0.5))
	}
	return index
}

// Len returns the number of indexed documents.
func (index *Index) Len() int { return len(index.ids) }

// Search returns up to limit documents scoring above zero, best first.
// Equal scores keep document order. A limit of zero or less returns
// every hit.
func (index *Index) Search(query string, limit int) []Result {
	queryTokens := Tokenize(query)
	if len(queryTokens) == 0 {
		return nil
	}

	var results []Result
	for position := range index.ids {
		if score := index.score(position, queryTokens); score > 0 {
			results = append(results, Result{ID: index.ids[position], Position: position, Score: score})
		}
	}
	slices.SortStableFunc(results, func(a, b Result) int {
		switch {
		case a.Score > b.Score:
			return -1
		case a.Score < b.Score:
			return 1
		default:
			return 0
		}
	})

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results
}

func (index *Index) score(position int, queryTokens []string) float64 {
	frequencies := index.termFrequencies[position]
	length := float64(index.lengths[position])

	var score float64
	for _, token := range queryTokens {
		frequency := float64(frequencies[token])
		if frequency == 0 {
			continue
		}
		// idf * tf*(k1+1) / (tf + k1*(1 - b + b*dl/avgdl))
		numerator := frequency * (paramK1 + 1)
		denominator := frequency + paramK1*(1-paramB+paramB*length/index.averageLength)
		score += index.idf[token] * numerator / denominator
	}
	return score
}

func compositeTokens(document Document) []string {
	var tokens []string
	for _, field := range document.Fields {
		if field.Weight <= 0 {
			continue
		}
		fieldTokens := Tokenize(field.Text)
		for range field.Weight {
			tokens = append(tokens, fieldTokens...)
		}
	}
	return tokens
}

// Tokenize splits text into lowercase runs of letters and digits of at
// least two runes.
func Tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	tokens := fields[:0]
	for _, field := range fields {
		if utf8.RuneCountInString(field) >= minTokenLength {
			tokens = append(tokens, field)
		}
	}
	return tokens
}
