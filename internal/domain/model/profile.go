// Package model contains domain models passed between layers.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// StakeholderType identifies a profile category.
type StakeholderType string

// Stakeholder types known to the platform.
const (
	TypePlayer            StakeholderType = "player"
	TypeCoach             StakeholderType = "coach"
	TypeClub              StakeholderType = "club"
	TypeAgent             StakeholderType = "agent"
	TypeSponsor           StakeholderType = "sponsor"
	TypeEquipmentSupplier StakeholderType = "equipment_supplier"

	// TypeAll is the filter value meaning "every type".
	TypeAll StakeholderType = "all"
)

// ErrUnknownType is returned when a string does not name a stakeholder type.
var ErrUnknownType = errors.New("unknown stakeholder type")

// StakeholderTypes lists every concrete stakeholder type.
func StakeholderTypes() []StakeholderType {
	return []StakeholderType{
		TypePlayer, TypeCoach, TypeClub, TypeAgent, TypeSponsor, TypeEquipmentSupplier,
	}
}

// ParseStakeholderType converts user input into a StakeholderType.
// Empty input and "all" both map to TypeAll.
func ParseStakeholderType(s string) (StakeholderType, error) {
	t := StakeholderType(strings.ToLower(strings.TrimSpace(s)))
	if t == "" || t == TypeAll {
		return TypeAll, nil
	}
	if !t.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownType, s)
	}
	return t, nil
}

// Valid reports whether t is a concrete stakeholder type.
func (t StakeholderType) Valid() bool {
	switch t {
	case TypePlayer, TypeCoach, TypeClub, TypeAgent, TypeSponsor, TypeEquipmentSupplier:
		return true
	default:
		return false
	}
}

// IsFilterAll reports whether t, used as a filter, matches every type.
func (t StakeholderType) IsFilterAll() bool {
	return t == "" || t == TypeAll
}

// Matches reports whether a profile of type other passes the filter t.
func (t StakeholderType) Matches(other StakeholderType) bool {
	return t.IsFilterAll() || t == other
}

// Profile is a read-only snapshot of a stakeholder record. Exactly one of
// the details pointers is expected to be set, matching UserType, but any of
// them may be nil.
type Profile struct {
	ID        string          `json:"id" yaml:"id"`
	FullName  string          `json:"full_name" yaml:"full_name"`
	AvatarURL string          `json:"avatar_url" yaml:"avatar_url"`
	UserType  StakeholderType `json:"user_type" yaml:"user_type"`

	Player            *PlayerDetails            `json:"player_details,omitempty" yaml:"player_details,omitempty"`
	Coach             *CoachDetails             `json:"coach_details,omitempty" yaml:"coach_details,omitempty"`
	Club              *ClubDetails              `json:"club_details,omitempty" yaml:"club_details,omitempty"`
	Agent             *AgentDetails             `json:"agent_details,omitempty" yaml:"agent_details,omitempty"`
	Sponsor           *SponsorDetails           `json:"sponsor_details,omitempty" yaml:"sponsor_details,omitempty"`
	EquipmentSupplier *EquipmentSupplierDetails `json:"equipment_supplier_details,omitempty" yaml:"equipment_supplier_details,omitempty"`
}

// PlayerDetails holds player-specific attributes.
type PlayerDetails struct {
	Age         *int   `json:"age,omitempty" yaml:"age,omitempty"`
	Position    string `json:"position,omitempty" yaml:"position,omitempty"`
	Club        string `json:"club,omitempty" yaml:"club,omitempty"`
	Country     string `json:"country,omitempty" yaml:"country,omitempty"`
	City        string `json:"city,omitempty" yaml:"city,omitempty"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// CoachDetails holds coach-specific attributes. Experience is free text,
// e.g. "9 years".
type CoachDetails struct {
	Specialization     string `json:"specialization,omitempty" yaml:"specialization,omitempty"`
	Experience         string `json:"experience,omitempty" yaml:"experience,omitempty"`
	CurrentClub        string `json:"current_club,omitempty" yaml:"current_club,omitempty"`
	CoachingPhilosophy string `json:"coaching_philosophy,omitempty" yaml:"coaching_philosophy,omitempty"`
	Achievements       string `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	Country            string `json:"country,omitempty" yaml:"country,omitempty"`
	City               string `json:"city,omitempty" yaml:"city,omitempty"`
	Description        string `json:"description,omitempty" yaml:"description,omitempty"`
}

// ClubDetails holds club-specific attributes.
type ClubDetails struct {
	League       string `json:"league,omitempty" yaml:"league,omitempty"`
	Country      string `json:"country,omitempty" yaml:"country,omitempty"`
	City         string `json:"city,omitempty" yaml:"city,omitempty"`
	FoundedYear  *int   `json:"founded_year,omitempty" yaml:"founded_year,omitempty"`
	Stadium      string `json:"stadium,omitempty" yaml:"stadium,omitempty"`
	Achievements string `json:"achievements,omitempty" yaml:"achievements,omitempty"`
	Description  string `json:"description,omitempty" yaml:"description,omitempty"`
}

// AgentDetails holds agent-specific attributes. Specialization may be a
// comma separated list.
type AgentDetails struct {
	Agency          string `json:"agency,omitempty" yaml:"agency,omitempty"`
	Specialization  string `json:"specialization,omitempty" yaml:"specialization,omitempty"`
	ExperienceYears *int   `json:"experience_years,omitempty" yaml:"experience_years,omitempty"`
	ClientsCount    *int   `json:"clients_count,omitempty" yaml:"clients_count,omitempty"`
	LicenseNumber   string `json:"license_number,omitempty" yaml:"license_number,omitempty"`
	Country         string `json:"country,omitempty" yaml:"country,omitempty"`
	City            string `json:"city,omitempty" yaml:"city,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
}

// SponsorDetails holds sponsor attributes.
type SponsorDetails struct {
	SponsorshipFocus string `json:"sponsorship_focus,omitempty" yaml:"sponsorship_focus,omitempty"`
	YearEstablished  *int   `json:"year_established,omitempty" yaml:"year_established,omitempty"`
	Country          string `json:"country,omitempty" yaml:"country,omitempty"`
	City             string `json:"city,omitempty" yaml:"city,omitempty"`
	Website          string `json:"website,omitempty" yaml:"website,omitempty"`
	Description      string `json:"description,omitempty" yaml:"description,omitempty"`
}

// EquipmentSupplierDetails holds equipment supplier attributes.
type EquipmentSupplierDetails struct {
	Products        string `json:"products,omitempty" yaml:"products,omitempty"`
	YearEstablished *int   `json:"year_established,omitempty" yaml:"year_established,omitempty"`
	Country         string `json:"country,omitempty" yaml:"country,omitempty"`
	City            string `json:"city,omitempty" yaml:"city,omitempty"`
	Website         string `json:"website,omitempty" yaml:"website,omitempty"`
	Description     string `json:"description,omitempty" yaml:"description,omitempty"`
}

// Summary is the type-independent view of a profile's details used when
// mapping a profile to an output record.
type Summary struct {
	Description    string
	Location       string
	Specialization string
	Position       string
}

// Summary reads the details record matching UserType. A missing details
// record yields a zero Summary.
func (p *Profile) Summary() Summary {
	if p == nil {
		return Summary{}
	}
	switch p.UserType {
	case TypePlayer:
		if d := p.Player; d != nil {
			return Summary{Description: d.Description, Location: firstNonEmpty(d.Country, d.City), Position: d.Position}
		}
	case TypeCoach:
		if d := p.Coach; d != nil {
			return Summary{Description: d.Description, Location: firstNonEmpty(d.Country, d.City), Specialization: d.Specialization}
		}
	case TypeClub:
		if d := p.Club; d != nil {
			return Summary{Description: d.Description, Location: firstNonEmpty(d.Country, d.City)}
		}
	case TypeAgent:
		if d := p.Agent; d != nil {
			return Summary{Description: d.Description, Location: firstNonEmpty(d.Country, d.City), Specialization: d.Specialization}
		}
	case TypeSponsor:
		if d := p.Sponsor; d != nil {
			return Summary{Description: d.Description, Location: firstNonEmpty(d.Country, d.City)}
		}
	case TypeEquipmentSupplier:
		if d := p.EquipmentSupplier; d != nil {
			return Summary{Description: d.Description, Location: firstNonEmpty(d.Country, d.City)}
		}
	}
	return Summary{}
}

// SplitList splits a comma separated field into trimmed, non-empty items.
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// IntPtr returns a pointer to v.
func IntPtr(v int) *int { return &v }

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
