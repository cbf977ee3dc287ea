// Package pool loads custom character pools from files.
//
// Two formats are accepted. Text files hold one character per line,
// optionally followed by comma-separated readings:
//
//	あ a
//	し shi,si
//
// YAML files hold named groups:
//
//	groups:
//	  greetings:
//	    label: greeting kana
//	    characters:
//	      こ: [ko]
//	      ん: [n]
package pool

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/verte-zerg/kanadraw/internal/kana"
)

// KeyPrefix marks groups loaded from a pool file.
const KeyPrefix = "custom:"

type yamlFile struct {
	Groups map[string]yamlGroup `yaml:"groups"`
}

type yamlGroup struct {
	Label      string              `yaml:"label"`
	Characters map[string][]string `yaml:"characters"`
}

// Load reads a pool file, choosing the format by extension.
func Load(path string) ([]kana.Group, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return LoadYAML(path)
	default:
		g, err := LoadText(path)
		if err != nil {
			return nil, err
		}
		return []kana.Group{g}, nil
	}
}

// LoadText reads one character per line into a group named after the file.
func LoadText(path string) (kana.Group, error) {
	file, err := os.Open(path)
	if err != nil {
		return kana.Group{}, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			// Best-effort close for read-only pool file.
			_ = cerr
		}
	}()

	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	g := kana.Group{Key: KeyPrefix + name, Label: name}
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		char, readings, _ := strings.Cut(line, " ")
		g.Chars = append(g.Chars, kana.Char{Kana: char, Romaji: splitReadings(readings)})
	}
	if err := scanner.Err(); err != nil {
		return kana.Group{}, err
	}
	if len(g.Chars) == 0 {
		return kana.Group{}, fmt.Errorf("pool file is empty")
	}
	g.Script = scriptOfGroup(g)
	return g, nil
}

// LoadYAML reads every group of a YAML pool file, sorted by name.
func LoadYAML(path string) ([]kana.Group, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var doc yamlFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse pool file: %w", err)
	}
	if len(doc.Groups) == 0 {
		return nil, fmt.Errorf("pool file has no groups")
	}

	names := make([]string, 0, len(doc.Groups))
	for name := range doc.Groups {
		names = append(names, name)
	}
	sort.Strings(names)

	groups := make([]kana.Group, 0, len(names))
	for _, name := range names {
		yg := doc.Groups[name]
		label := yg.Label
		if label == "" {
			label = name
		}
		g := kana.Group{Key: KeyPrefix + name, Label: label}
		chars := make([]string, 0, len(yg.Characters))
		for c := range yg.Characters {
			chars = append(chars, c)
		}
		sort.Strings(chars)
		for _, c := range chars {
			g.Chars = append(g.Chars, kana.Char{Kana: c, Romaji: yg.Characters[c]})
		}
		if len(g.Chars) == 0 {
			return nil, fmt.Errorf("pool group %q is empty", name)
		}
		g.Script = scriptOfGroup(g)
		groups = append(groups, g)
	}
	return groups, nil
}

// Merge loads path and registers its groups in d, returning their keys.
func Merge(d *kana.Dictionary, path string) ([]string, error) {
	groups, err := Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load pool file: %w", err)
	}
	keys := make([]string, 0, len(groups))
	for _, g := range groups {
		if err := d.Add(g); err != nil {
			return nil, err
		}
		keys = append(keys, g.Key)
	}
	return keys, nil
}

func splitReadings(s string) []string {
	var out []string
	for _, r := range strings.Split(s, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

func scriptOfGroup(g kana.Group) kana.Script {
	var script kana.Script
	for _, c := range g.Chars {
		s, ok := kana.ScriptOf(c.Kana)
		if !ok || (script != "" && s != script) {
			return ""
		}
		script = s
	}
	return script
}
