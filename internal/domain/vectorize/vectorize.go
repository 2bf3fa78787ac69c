// Package vectorize converts stakeholder profiles into fixed-length numeric
// feature vectors.
//
// Every vector has the same layout: slot 0 is a deterministic identity
// feature derived from the profile id, slots 1-4 carry type-specific
// features. Missing fields encode as Neutral so the length never depends on
// which fields are populated.
package vectorize

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf16"

	"github.com/jonboulle/clockwork"

	"github.com/okian/scoutmatch/internal/domain/model"
)

// Dimensions is the length of every feature vector.
const Dimensions = 5

// Encoding constants.
const (
	Neutral = 0.5

	minPlayerAge      = 15
	playerAgeSpan     = 25
	maxExperience     = 30
	maxClients        = 100
	foundedYearWindow = 150
	hashScale         = 1_000_000
)

// FeatureVector is the numeric encoding of one profile.
type FeatureVector [Dimensions]float64

// Slice returns the vector as a new slice for the similarity functions.
func (v FeatureVector) Slice() []float64 {
	out := make([]float64, Dimensions)
	copy(out, v[:])
	return out
}

var positionValues = map[string]float64{
	"goalkeeper": 0.1,
	"defender":   0.3,
	"midfielder": 0.6,
	"forward":    0.9,
	"striker":    1.0,
}

var digitsRe = regexp.MustCompile(`\d+`)

// Option applies a configuration option to the Vectorizer.
type Option func(*Vectorizer)

// WithClock sets the clock used for time-relative features.
func WithClock(c clockwork.Clock) Option {
	return func(v *Vectorizer) {
		if c != nil {
			v.clock = c
		}
	}
}

// Vectorizer encodes profiles. It is safe for concurrent use.
type Vectorizer struct {
	clock clockwork.Clock
}

// New creates a Vectorizer backed by the real clock unless overridden.
func New(opts ...Option) *Vectorizer {
	v := &Vectorizer{clock: clockwork.NewRealClock()}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Vector encodes p. A nil profile yields the zero vector.
func (v *Vectorizer) Vector(p *model.Profile) FeatureVector {
	var fv FeatureVector
	if p == nil {
		return fv
	}

	fv[0] = HashFeature(p.ID)

	var slots [4]float64
	switch p.UserType {
	case model.TypePlayer:
		slots = encodePlayer(p.Player)
	case model.TypeClub:
		slots = v.encodeClub(p.Club)
	case model.TypeCoach:
		slots = encodeCoach(p.Coach)
	case model.TypeAgent:
		slots = encodeAgent(p.Agent)
	default:
		slots = [4]float64{Neutral, Neutral, Neutral, Neutral}
	}
	copy(fv[1:], slots[:])
	return fv
}

func encodePlayer(d *model.PlayerDetails) [4]float64 {
	if d == nil {
		d = &model.PlayerDetails{}
	}
	age := Neutral
	if d.Age != nil && *d.Age > 0 {
		age = clamp01(float64(*d.Age-minPlayerAge) / playerAgeSpan)
	}
	position := Neutral
	if val, ok := positionValues[strings.ToLower(strings.TrimSpace(d.Position))]; ok {
		position = val
	}
	return [4]float64{age, position, categorical(d.Country), categorical(d.Club)}
}

func (v *Vectorizer) encodeClub(d *model.ClubDetails) [4]float64 {
	if d == nil {
		d = &model.ClubDetails{}
	}
	recency := Neutral
	if d.FoundedYear != nil && *d.FoundedYear > 0 {
		age := float64(v.clock.Now().Year() - *d.FoundedYear)
		recency = clamp01(1 - age/foundedYearWindow)
	}
	return [4]float64{categorical(d.League), categorical(d.Country), recency, Neutral}
}

func encodeCoach(d *model.CoachDetails) [4]float64 {
	if d == nil {
		d = &model.CoachDetails{}
	}
	experience := Neutral
	if years, ok := firstInt(d.Experience); ok {
		experience = clamp01(float64(years) / maxExperience)
	}
	return [4]float64{
		categorical(d.Specialization),
		experience,
		categorical(d.CurrentClub),
		categorical(d.CoachingPhilosophy),
	}
}

func encodeAgent(d *model.AgentDetails) [4]float64 {
	if d == nil {
		d = &model.AgentDetails{}
	}
	experience, clients := Neutral, Neutral
	if d.ExperienceYears != nil {
		experience = clamp01(float64(*d.ExperienceYears) / maxExperience)
	}
	if d.ClientsCount != nil {
		clients = clamp01(float64(*d.ClientsCount) / maxClients)
	}
	return [4]float64{categorical(d.Agency), categorical(d.Specialization), experience, clients}
}

// categorical encodes an unordered string value; empty values are Neutral.
func categorical(s string) float64 {
	if strings.TrimSpace(s) == "" {
		return Neutral
	}
	return HashFeature(s)
}

// HashFeature maps s deterministically into [0, 1). Proximity of two outputs
// carries no meaning about proximity of the inputs.
func HashFeature(s string) float64 {
	h := math.Abs(float64(Hash(s)))
	return math.Mod(h/hashScale, 1)
}

// Hash is a 32-bit rolling string hash over UTF-16 code units:
// h = h*31 + unit, wrapping on overflow.
func Hash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	return h
}

func firstInt(s string) (int, bool) {
	m := digitsRe.FindString(s)
	if m == "" {
		return 0, false
	}
	n, err := strconv.Atoi(m)
	if err != nil {
		return 0, false
	}
	return n, true
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
