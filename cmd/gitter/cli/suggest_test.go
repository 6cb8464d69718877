// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"

	"github.com/spf13/pflag"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"abc", "abc", 0},
		{"abc", "abd", 1}, // substitution
		{"abc", "ab", 1},  // deletion
		{"ab", "abc", 1},  // insertion
		{"abc", "bac", 2}, // transposition counts as two edits
		{"kitten", "sitting", 3},
		{"rooms", "roms", 1},
		{"whoami", "whomai", 2},
	}

	for _, test := range tests {
		t.Run(test.a+"->"+test.b, func(t *testing.T) {
			if got := levenshtein(test.a, test.b); got != test.want {
				t.Errorf("levenshtein(%q, %q) = %d, want %d", test.a, test.b, got, test.want)
			}
		})
	}
}

func TestLevenshtein_Symmetric(t *testing.T) {
	for _, pair := range [][2]string{{"abc", "abd"}, {"tail", "tial"}, {"unread", "unraed"}} {
		forward := levenshtein(pair[0], pair[1])
		reverse := levenshtein(pair[1], pair[0])
		if forward != reverse {
			t.Errorf("levenshtein(%q, %q) = %d, but reverse = %d", pair[0], pair[1], forward, reverse)
		}
	}
}

func TestSuggestCommand(t *testing.T) {
	commands := []*Command{{Name: "rooms"}, {Name: "tail"}, {Name: "watch"}, {Name: "send"}}

	tests := []struct {
		input, want string
	}{
		{"room", "rooms"},
		{"tial", "tail"},
		{"wacth", "watch"},
		{"sedn", "send"},
		{"completely-different", ""},
	}
	for _, test := range tests {
		if got := suggestCommand(test.input, commands); got != test.want {
			t.Errorf("suggestCommand(%q) = %q, want %q", test.input, got, test.want)
		}
	}
}

func TestSuggestFlag(t *testing.T) {
	flagSet := pflag.NewFlagSet("tail", pflag.ContinueOnError)
	flagSet.Bool("json", false, "")
	flagSet.String("archive", "", "")
	flagSet.BoolP("verbose", "v", false, "")

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"misspelled long flag", []string{"--archve", "x"}, "--archive"},
		{"with value", []string{"--jsn=true"}, "--json"},
		{"known flags skipped", []string{"-v", "--json", "--verbos"}, "--verbose"},
		{"nothing close", []string{"--zzzzzzzz"}, ""},
		{"after terminator", []string{"--", "--archve"}, ""},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if got := suggestFlag(test.args, flagSet); got != test.want {
				t.Errorf("suggestFlag(%v) = %q, want %q", test.args, got, test.want)
			}
		})
	}
}
