package kana

import (
	"errors"
	"testing"
)

func TestBuiltinKatakanaMirrorsHiragana(t *testing.T) {
	d := Builtin()
	h, ok := d.Lookup("h_ka")
	if !ok {
		t.Fatalf("expected h_ka group")
	}
	k, ok := d.Lookup("k_ka")
	if !ok {
		t.Fatalf("expected k_ka group")
	}
	if len(h.Chars) != len(k.Chars) {
		t.Fatalf("row sizes differ: %d vs %d", len(h.Chars), len(k.Chars))
	}
	if k.Chars[0].Kana != "カ" || k.Script != Katakana {
		t.Fatalf("unexpected katakana row: %+v", k)
	}
	if got := d.Romaji("ショ"); len(got) == 0 || got[0] != "sho" {
		t.Fatalf("unexpected romaji for ショ: %v", got)
	}
	if d.Reading("ん") != "n" {
		t.Fatalf("unexpected reading for ん")
	}
}

func TestCharactersForDeduplicates(t *testing.T) {
	d := Builtin()
	chars, err := d.CharactersFor([]string{"h_a", "h_a", " h_ya "})
	if err != nil {
		t.Fatalf("characters: %v", err)
	}
	want := []string{"あ", "い", "う", "え", "お", "や", "ゆ", "よ"}
	if len(chars) != len(want) {
		t.Fatalf("expected %v, got %v", want, chars)
	}
	for i := range want {
		if chars[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, chars)
		}
	}
}

func TestCharactersForAliases(t *testing.T) {
	d := Builtin()
	h, err := d.CharactersFor([]string{AliasHiragana})
	if err != nil {
		t.Fatalf("characters: %v", err)
	}
	all, err := d.CharactersFor([]string{AliasAll})
	if err != nil {
		t.Fatalf("characters: %v", err)
	}
	if len(all) != 2*len(h) {
		t.Fatalf("expected katakana to double the pool: %d vs %d", len(all), len(h))
	}
	for _, c := range h {
		if s, ok := ScriptOf(c); !ok || s != Hiragana {
			t.Fatalf("%q is not hiragana", c)
		}
	}
}

func TestCharactersForUnknownGroup(t *testing.T) {
	_, err := Builtin().CharactersFor([]string{"h_xx"})
	if !errors.Is(err, ErrUnknownGroup) {
		t.Fatalf("expected ErrUnknownGroup, got %v", err)
	}
}

func TestScriptOf(t *testing.T) {
	cases := []struct {
		in   string
		want Script
		ok   bool
	}{
		{"き", Hiragana, true},
		{"きゃ", Hiragana, true},
		{"キャ", Katakana, true},
		{"きャ", "", false},
		{"a", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := ScriptOf(tc.in)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("ScriptOf(%q) = %q,%v want %q,%v", tc.in, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAddRejectsDuplicates(t *testing.T) {
	d := Builtin()
	if err := d.Add(Group{Key: "h_a"}); err == nil {
		t.Fatalf("expected duplicate key error")
	}
}

func TestSplitJoinsSmallKana(t *testing.T) {
	got := Split("しゃ し キョア")
	want := []string{"しゃ", "し", "キョ", "ア"}
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("index %d: expected %q, got %q", i, want[i], got[i])
		}
	}
	if out := Split("ゃ"); len(out) != 1 || out[0] != "ゃ" {
		t.Fatalf("leading small kana should stand alone, got %v", out)
	}
}
