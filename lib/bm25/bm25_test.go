// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package bm25

import (
	"slices"
	"testing"
)

func message(id, text, username string) Document {
	return Document{ID: id, Fields: []Field{
		{Text: text, Weight: 2},
		{Text: username, Weight: 1},
	}}
}

func resultIDs(results []Result) []string {
	ids := make([]string, len(results))
	for i, result := range results {
		ids[i] = result.ID
	}
	return ids
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		text string
		want []string
	}{
		{"Hello, World!", []string{"hello", "world"}},
		{"a I ok", []string{"ok"}},
		{"v1.2 release-notes", []string{"v1", "release", "notes"}},
		{"Grüße aus Köln", []string{"grüße", "aus", "köln"}},
		{"日本 語", []string{"日本"}},
		{"", []string{}},
		{"  ...  ", []string{}},
	}
	for _, test := range tests {
		got := Tokenize(test.text)
		if len(got) == 0 && len(test.want) == 0 {
			continue
		}
		if !slices.Equal(got, test.want) {
			t.Errorf("Tokenize(%q) = %q, want %q", test.text, got, test.want)
		}
	}
}

func TestSearch_EmptyQuery(t *testing.T) {
	index := New([]Document{message("1", "deploy failed", "ada")})
	if results := index.Search("", 10); results != nil {
		t.Errorf("empty query returned %v", results)
	}
	if results := index.Search("!?", 10); results != nil {
		t.Errorf("punctuation-only query returned %v", results)
	}
}

func TestSearch_NoDocuments(t *testing.T) {
	index := New(nil)
	if index.Len() != 0 {
		t.Errorf("Len = %d, want 0", index.Len())
	}
	if results := index.Search("anything", 10); len(results) != 0 {
		t.Errorf("empty index returned %v", results)
	}
}

func TestSearch_NoMatch(t *testing.T) {
	index := New([]Document{
		message("1", "deploy failed", "ada"),
		message("2", "rollback done", "grace"),
	})
	if results := index.Search("kubernetes", 10); len(results) != 0 {
		t.Errorf("unrelated query returned %v", results)
	}
}

func TestSearch_Limit(t *testing.T) {
	documents := make([]Document, 10)
	for i := range documents {
		documents[i] = message(string(rune('a'+i)), "build broken again", "ci")
	}
	index := New(documents)

	if got := len(index.Search("build", 3)); got != 3 {
		t.Errorf("limit 3 returned %d results", got)
	}
	if got := len(index.Search("build", 0)); got != 10 {
		t.Errorf("limit 0 returned %d results, want all 10", got)
	}
}

func TestSearch_ScoreOrdering(t *testing.T) {
	index := New([]Document{
		message("weather", "nice weather today", "ada"),
		message("single", "the deploy is running", "grace"),
		message("double", "deploy deploy: second deploy attempt", "linus"),
		message("lunch", "anyone for lunch", "ken"),
	})

	results := index.Search("deploy", 10)
	if got := resultIDs(results); !slices.Equal(got, []string{"double", "single"}) {
		t.Fatalf("ranking = %v, want [double single]", got)
	}
	if results[0].Score <= results[1].Score {
		t.Errorf("scores not descending: %v", results)
	}
	if results[0].Position != 2 || results[1].Position != 1 {
		t.Errorf("positions = %d, %d; want 2, 1", results[0].Position, results[1].Position)
	}
}

func TestSearch_TextOutweighsUsername(t *testing.T) {
	// Same length, one mentions "ada" in the text, the other is sent by ada.
	index := New([]Document{
		message("sender", "status update here", "ada"),
		message("mention", "ping ada please", "bob"),
		message("filler", "unrelated chatter here", "eve"),
	})
	results := index.Search("ada", 10)
	if got := resultIDs(results); !slices.Equal(got, []string{"mention", "sender"}) {
		t.Errorf("ranking = %v, want text match before username match", got)
	}
}

func TestSearch_TiesKeepDocumentOrder(t *testing.T) {
	index := New([]Document{
		message("first", "release shipped", "ada"),
		message("second", "release shipped", "ada"),
		message("third", "release shipped", "ada"),
	})
	results := index.Search("release", 10)
	if got := resultIDs(results); !slices.Equal(got, []string{"first", "second", "third"}) {
		t.Errorf("tie order = %v, want document order", got)
	}
}

func TestSearch_MultipleTerms(t *testing.T) {
	index := New([]Document{
		message("both", "database migration finished", "ada"),
		message("one", "database looks fine", "grace"),
		message("none", "coffee break", "ken"),
	})
	results := index.Search("database migration", 10)
	if got := resultIDs(results); !slices.Equal(got, []string{"both", "one"}) {
		t.Errorf("ranking = %v, want [both one]", got)
	}
}

func TestSearch_CommonTermStillMatches(t *testing.T) {
	// "hello" is in every document and still carries weight.
	index := New([]Document{
		message("1", "hello there", "ada"),
		message("2", "hello again", "grace"),
	})
	results := index.Search("hello", 10)
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	for _, result := range results {
		if result.Score <= 0 {
			t.Errorf("result %s has non-positive score %v", result.ID, result.Score)
		}
	}
}

func TestSearch_ZeroWeightFieldIgnored(t *testing.T) {
	index := New([]Document{{ID: "1", Fields: []Field{
		{Text: "visible words", Weight: 1},
		{Text: "hidden", Weight: 0},
	}}})
	if results := index.Search("hidden", 10); len(results) != 0 {
		t.Errorf("zero-weight field matched: %v", results)
	}
}
