package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Char", "Accuracy", "Drawings"}
	rows := [][]string{
		{"あ", "97.50%", "12"},
		{"シャ", "8.00%", "3"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Char Accuracy Drawings" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "あ     97.50%       12" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "シャ    8.00%        3" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideCharacters(t *testing.T) {
	lines := formatTable([]string{"Char", "Reading"}, [][]string{
		{"しゃ", "sha"},
		{"a", "a"},
	}, nil)
	if lines[0] != "Char Reading" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	// Two kana fill four cells, the same as the header.
	if lines[1] != "しゃ sha    " {
		t.Fatalf("unexpected kana row: %q", lines[1])
	}
	if lines[2] != "a    a      " {
		t.Fatalf("unexpected latin row: %q", lines[2])
	}
}
