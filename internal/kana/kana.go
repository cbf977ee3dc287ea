// Package kana holds the character groups that can be practiced.
package kana

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Script names a kana syllabary.
type Script string

const (
	Hiragana Script = "hiragana"
	Katakana Script = "katakana"
)

// Aliases accepted in place of group keys.
const (
	AliasAll      = "all"
	AliasHiragana = "hiragana"
	AliasKatakana = "katakana"
)

// ErrUnknownGroup is returned for group keys the dictionary does not know.
var ErrUnknownGroup = errors.New("unknown kana group")

// Char is one practicable character with its accepted readings.
type Char struct {
	Kana   string
	Romaji []string
}

// Group is a named set of characters selected together.
type Group struct {
	Key    string
	Label  string
	Script Script
	Chars  []Char
}

// Characters returns the kana of the group in order.
func (g Group) Characters() []string {
	out := make([]string, len(g.Chars))
	for i, c := range g.Chars {
		out[i] = c.Kana
	}
	return out
}

// Dictionary indexes groups by key and characters by kana.
type Dictionary struct {
	groups []Group
	byKey  map[string]int
	romaji map[string][]string
}

// New returns an empty dictionary.
func New() *Dictionary {
	return &Dictionary{byKey: map[string]int{}, romaji: map[string][]string{}}
}

// Builtin returns a dictionary with every hiragana and katakana group.
func Builtin() *Dictionary {
	d := New()
	for _, script := range []Script{Hiragana, Katakana} {
		for _, r := range rows {
			if err := d.Add(r.group(script)); err != nil {
				panic(err)
			}
		}
	}
	return d
}

// Add registers a group. Keys must be unique.
func (d *Dictionary) Add(g Group) error {
	if g.Key == "" {
		return fmt.Errorf("kana group key is empty")
	}
	if _, ok := d.byKey[g.Key]; ok {
		return fmt.Errorf("duplicate kana group %q", g.Key)
	}
	d.byKey[g.Key] = len(d.groups)
	d.groups = append(d.groups, g)
	for _, c := range g.Chars {
		if _, ok := d.romaji[c.Kana]; !ok {
			d.romaji[c.Kana] = c.Romaji
		}
	}
	return nil
}

// Groups returns all groups in registration order.
func (d *Dictionary) Groups() []Group {
	return append([]Group(nil), d.groups...)
}

// Lookup returns the group registered under key.
func (d *Dictionary) Lookup(key string) (Group, bool) {
	i, ok := d.byKey[key]
	if !ok {
		return Group{}, false
	}
	return d.groups[i], true
}

// Romaji returns the readings of a character, or nil if unknown.
func (d *Dictionary) Romaji(char string) []string {
	return d.romaji[char]
}

// Reading returns the first reading of char, or char itself if unknown.
func (d *Dictionary) Reading(char string) string {
	if r := d.romaji[char]; len(r) > 0 {
		return r[0]
	}
	return char
}

// CharactersFor resolves group keys and aliases into a de-duplicated pool,
// keeping first-seen order.
func (d *Dictionary) CharactersFor(keys []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(g Group) {
		for _, c := range g.Chars {
			if !seen[c.Kana] {
				seen[c.Kana] = true
				out = append(out, c.Kana)
			}
		}
	}
	for _, raw := range keys {
		key := strings.TrimSpace(raw)
		switch key {
		case "":
			continue
		case AliasAll, AliasHiragana, AliasKatakana:
			for _, g := range d.groups {
				if key == AliasAll || string(g.Script) == key {
					add(g)
				}
			}
			continue
		}
		g, ok := d.Lookup(key)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownGroup, key)
		}
		add(g)
	}
	return out, nil
}

// ScriptOf reports the syllabary of s when every rune belongs to one.
func ScriptOf(s string) (Script, bool) {
	var script Script
	for _, r := range s {
		var cur Script
		switch {
		case r >= 0x3041 && r <= 0x309f:
			cur = Hiragana
		case r >= 0x30a0 && r <= 0x30ff:
			cur = Katakana
		default:
			return "", false
		}
		if script != "" && script != cur {
			return "", false
		}
		script = cur
	}
	return script, script != ""
}

// Split cuts s into practicable characters. Small kana such as ゃ or ョ
// join the character before them, so "しゃし" gives "しゃ", "し".
// Whitespace is dropped.
func Split(s string) []string {
	var out []string
	for _, r := range s {
		if unicode.IsSpace(r) {
			continue
		}
		if n := len(out); n > 0 && isSmallKana(r) {
			out[n-1] += string(r)
			continue
		}
		out = append(out, string(r))
	}
	return out
}

func isSmallKana(r rune) bool {
	switch r {
	case 'ぁ', 'ぃ', 'ぅ', 'ぇ', 'ぉ', 'ゃ', 'ゅ', 'ょ', 'ゎ',
		'ァ', 'ィ', 'ゥ', 'ェ', 'ォ', 'ャ', 'ュ', 'ョ', 'ヮ':
		return true
	}
	return false
}

// SortedKeys returns group keys in lexical order.
func (d *Dictionary) SortedKeys() []string {
	keys := make([]string, 0, len(d.byKey))
	for k := range d.byKey {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
