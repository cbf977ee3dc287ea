package pool

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/kanadraw/internal/kana"
)

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestLoadText(t *testing.T) {
	path := writeFile(t, "tricky.txt", "# comment\nし shi, si\n\nツ tsu\nぬ\n")
	groups, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(groups) != 1 {
		t.Fatalf("expected one group, got %d", len(groups))
	}
	g := groups[0]
	if g.Key != "custom:tricky" || len(g.Chars) != 3 {
		t.Fatalf("unexpected group: %+v", g)
	}
	if r := g.Chars[0].Romaji; len(r) != 2 || r[1] != "si" {
		t.Fatalf("unexpected readings: %v", r)
	}
	if len(g.Chars[2].Romaji) != 0 {
		t.Fatalf("expected no readings for bare line")
	}
	if g.Script != "" {
		t.Fatalf("mixed pool must have no script, got %q", g.Script)
	}
}

func TestLoadTextEmpty(t *testing.T) {
	if _, err := LoadText(writeFile(t, "empty.txt", "\n# only comments\n")); err == nil {
		t.Fatalf("expected error for empty pool")
	}
}

func TestLoadYAMLAndMerge(t *testing.T) {
	body := `groups:
  words:
    label: word kana
    characters:
      こ: [ko]
      ん: [n]
  shapes:
    characters:
      ソ: [so]
      ン: [n]
`
	path := writeFile(t, "pool.yaml", body)
	d := kana.Builtin()
	keys, err := Merge(d, path)
	if err != nil {
		t.Fatalf("merge: %v", err)
	}
	if len(keys) != 2 || keys[0] != "custom:shapes" || keys[1] != "custom:words" {
		t.Fatalf("unexpected keys: %v", keys)
	}
	g, ok := d.Lookup("custom:shapes")
	if !ok || g.Label != "shapes" || g.Script != kana.Katakana {
		t.Fatalf("unexpected shapes group: %+v", g)
	}
	chars, err := d.CharactersFor([]string{"custom:words"})
	if err != nil {
		t.Fatalf("characters: %v", err)
	}
	if len(chars) != 2 {
		t.Fatalf("expected 2 characters, got %v", chars)
	}

	if _, err := Merge(d, path); err == nil {
		t.Fatalf("expected duplicate group error on second merge")
	}
}

func TestLoadYAMLInvalid(t *testing.T) {
	if _, err := Load(writeFile(t, "bad.yml", "groups: [1, 2")); err == nil {
		t.Fatalf("expected parse error")
	}
	if _, err := Load(writeFile(t, "none.yml", "other: 1\n")); err == nil {
		t.Fatalf("expected error for file without groups")
	}
}
