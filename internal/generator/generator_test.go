package generator

import (
	"errors"
	"testing"
)

func TestNextAvoidsExclude(t *testing.T) {
	g := NewWithSeed(1)
	pool := []string{"あ", "い"}
	for i := 0; i < 200; i++ {
		c, err := g.Next(pool, "あ")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if c != "い" {
			t.Fatalf("picked excluded character")
		}
	}
}

func TestNextSingletonIgnoresExclude(t *testing.T) {
	c, err := NewWithSeed(1).Next([]string{"あ"}, "あ")
	if err != nil || c != "あ" {
		t.Fatalf("expected the only character, got %q, %v", c, err)
	}
}

func TestNextEmptyPool(t *testing.T) {
	if _, err := NewWithSeed(1).Next(nil, ""); !errors.Is(err, ErrEmptyPool) {
		t.Fatalf("expected ErrEmptyPool, got %v", err)
	}
}

func TestNextCoversPool(t *testing.T) {
	g := NewWithSeed(7)
	pool := []string{"か", "き", "く", "け", "こ"}
	seen := map[string]int{}
	for i := 0; i < 1000; i++ {
		c, err := g.Next(pool, "")
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		seen[c]++
	}
	if len(seen) != len(pool) {
		t.Fatalf("expected every character picked, got %v", seen)
	}
}

func TestNextWeightedBiasesWeak(t *testing.T) {
	g := NewWithSeed(3)
	pool := []string{"さ", "し", "す", "せ", "そ"}
	weak := map[string]struct{}{"す": {}}
	hits := 0
	const n = 2000
	for i := 0; i < n; i++ {
		c, err := g.NextWeighted(pool, "", weak, 4)
		if err != nil {
			t.Fatalf("next: %v", err)
		}
		if c == "す" {
			hits++
		}
	}
	// Expected share is 5/9; uniform would be 1/5.
	if hits < n/3 {
		t.Fatalf("expected weak character to dominate, got %d/%d", hits, n)
	}

	for i := 0; i < 200; i++ {
		c, _ := g.NextWeighted(pool, "す", weak, 4)
		if c == "す" {
			t.Fatalf("weighted pick ignored exclusion")
		}
	}
}
