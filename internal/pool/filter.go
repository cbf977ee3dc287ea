package pool

import (
	"strings"

	"github.com/verte-zerg/kanadraw/internal/kana"
)

// FilterFunc returns true when a character should be kept.
type FilterFunc func(string) bool

// FilterForScript returns a filter keeping characters of one syllabary.
// "kana" keeps either syllabary; anything else keeps everything.
func FilterForScript(script string) FilterFunc {
	switch strings.ToLower(script) {
	case string(kana.Hiragana), string(kana.Katakana):
		want := kana.Script(strings.ToLower(script))
		return func(s string) bool {
			got, ok := kana.ScriptOf(s)
			return ok && got == want
		}
	case "kana":
		return func(s string) bool {
			_, ok := kana.ScriptOf(s)
			return ok
		}
	default:
		return func(string) bool { return true }
	}
}

// Apply returns the characters that pass f, in order.
func Apply(chars []string, f FilterFunc) []string {
	out := make([]string, 0, len(chars))
	for _, c := range chars {
		if f(c) {
			out = append(out, c)
		}
	}
	return out
}
