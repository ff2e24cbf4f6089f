package tags

import (
	"errors"
	"sort"
	"strings"
)

// Tags is a small set of free-form labels attached to a transaction, with
// validation and a stable (sorted, deduplicated) representation.
type Tags []string

const (
	MaxTags   = 20
	MaxTagLen = 64
)

// New normalizes raw labels: trims whitespace, drops empties, deduplicates
// case-sensitively and sorts for a deterministic encoding.
func New(raw []string) Tags {
	if len(raw) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(raw))
	out := make(Tags, 0, len(raw))
	for _, t := range raw {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	if len(out) == 0 {
		return nil
	}
	sort.Strings(out)
	return out
}

func (t Tags) Clone() Tags {
	if t == nil {
		return nil
	}
	out := make(Tags, len(t))
	copy(out, t)
	return out
}

func (t Tags) Validate() error {
	if len(t) > MaxTags {
		return errors.New("too many tags")
	}
	for _, s := range t {
		if s == "" || len(s) > MaxTagLen {
			return errors.New("tag empty or too long")
		}
	}
	return nil
}
