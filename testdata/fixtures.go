// Package testdata provides recorded pose sequences with their expected outcome.
package testdata

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/Kkkiiiirran/FitFlow/internal/pose"
)

//go:embed sequences/*.json
var sequencesFS embed.FS

// Sequence is a recorded frame sequence of one exercise.
type Sequence struct {
	Name        string        `json:"-"`
	Exercise    string        `json:"exercise"`
	Description string        `json:"description"`
	Count       int           `json:"count"`
	Seconds     int           `json:"seconds"`
	Invisible   int           `json:"invisible"`
	Frames      []*pose.Frame `json:"frames"`
}

// LoadSequence loads a sequence by name, e.g. "squats".
func LoadSequence(name string) (*Sequence, error) {
	data, err := sequencesFS.ReadFile("sequences/" + name + ".json")
	if err != nil {
		return nil, fmt.Errorf("load sequence %s: %w", name, err)
	}

	seq := &Sequence{Name: name}
	if err := json.Unmarshal(data, seq); err != nil {
		return nil, fmt.Errorf("decode sequence %s: %w", name, err)
	}
	return seq, nil
}

// Sequences loads every recorded sequence, ordered by name.
func Sequences() ([]*Sequence, error) {
	entries, err := sequencesFS.ReadDir("sequences")
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(entry.Name(), path.Ext(entry.Name())))
	}
	sort.Strings(names)

	seqs := make([]*Sequence, 0, len(names))
	for _, name := range names {
		seq, err := LoadSequence(name)
		if err != nil {
			return nil, err
		}
		seqs = append(seqs, seq)
	}
	return seqs, nil
}
