// Package types contains the output records shared by the matching core and
// the HTTP layer.
package types

import (
	"math"

	"github.com/okian/scoutmatch/internal/domain/model"
)

// Score bounds.
const (
	MinScore = 0
	MaxScore = 100
)

// Match is a ranked candidate produced by the match ranker.
type Match struct {
	ID          string                `json:"id" yaml:"id"`
	Name        string                `json:"name" yaml:"name"`
	Type        model.StakeholderType `json:"type" yaml:"type"`
	MatchScore  int                   `json:"matchScore" yaml:"match_score"`
	Description string                `json:"description" yaml:"description"`
	AvatarURL   string                `json:"avatarUrl,omitempty" yaml:"avatar_url,omitempty"`
	Location    string                `json:"location,omitempty" yaml:"location,omitempty"`
	Skills      []string              `json:"skills,omitempty" yaml:"skills,omitempty"`
	Position    string                `json:"position,omitempty" yaml:"position,omitempty"`
}

// Recommendation is an entry on the recommendations page. Its percentage is
// not derived from profile similarity.
type Recommendation struct {
	ID              string                `json:"id"`
	Name            string                `json:"name"`
	Type            model.StakeholderType `json:"type"`
	Avatar          string                `json:"avatar"`
	MatchPercentage int                   `json:"matchPercentage"`
	Location        string                `json:"location"`
	Description     string                `json:"description,omitempty"`
	Tags            []string              `json:"tags,omitempty"`
}

// PairScore is the score between two specific profiles.
type PairScore struct {
	A      string `json:"a"`
	B      string `json:"b"`
	Method string `json:"method"`
	Score  int    `json:"score"`
}

// ClampScore rounds v half away from zero and clamps it into [0,100].
func ClampScore(v float64) int {
	if math.IsNaN(v) {
		return MinScore
	}
	r := math.Round(v)
	if r < MinScore {
		return MinScore
	}
	if r > MaxScore {
		return MaxScore
	}
	return int(r)
}
