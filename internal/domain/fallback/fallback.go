// Package fallback supplies demonstration data used when live matching or
// recommendation cannot produce a result.
package fallback

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/types"
)

// ErrLoad is returned when a dataset cannot be read or parsed.
var ErrLoad = errors.New("load fallback dataset failed")

//go:embed demo.yaml
var demoYAML []byte

// Provider is the capability injected into the ranker and recommender.
type Provider interface {
	// Matches returns at most n demo matches of the given type; a filter of
	// "all" or "" matches every type.
	Matches(ctx context.Context, filter model.StakeholderType, n int) []types.Match
	// Stakeholders returns at most n demo profiles of the given type.
	Stakeholders(ctx context.Context, t model.StakeholderType, n int) []model.Profile
}

// Dataset is the on-disk shape of fallback data.
type Dataset struct {
	Matches      []types.Match   `yaml:"matches"`
	Stakeholders []model.Profile `yaml:"stakeholders"`
}

// Static serves a fixed Dataset. It is read-only after construction.
type Static struct {
	data Dataset
}

// NewStatic creates a provider over ds.
func NewStatic(ds Dataset) *Static {
	return &Static{data: ds}
}

// Default returns a provider over the embedded demo dataset.
func Default() (*Static, error) {
	return Parse(demoYAML)
}

// LoadFile reads a YAML dataset from path.
func LoadFile(path string) (*Static, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return Parse(raw)
}

// Parse decodes a YAML dataset.
func Parse(raw []byte) (*Static, error) {
	var ds Dataset
	if err := yaml.Unmarshal(raw, &ds); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return NewStatic(ds), nil
}

// Matches implements Provider.
func (s *Static) Matches(_ context.Context, filter model.StakeholderType, n int) []types.Match {
	out := make([]types.Match, 0, max(n, 0))
	for _, m := range s.data.Matches {
		if len(out) >= n {
			break
		}
		if !filter.Matches(m.Type) {
			continue
		}
		m.Skills = append([]string(nil), m.Skills...)
		out = append(out, m)
	}
	return out
}

// Stakeholders implements Provider.
func (s *Static) Stakeholders(_ context.Context, t model.StakeholderType, n int) []model.Profile {
	out := make([]model.Profile, 0, max(n, 0))
	for _, p := range s.data.Stakeholders {
		if len(out) >= n {
			break
		}
		if !t.Matches(p.UserType) {
			continue
		}
		out = append(out, p)
	}
	return out
}

// Size returns the number of demo matches and stakeholders.
func (s *Static) Size() (matches, stakeholders int) {
	return len(s.data.Matches), len(s.data.Stakeholders)
}
