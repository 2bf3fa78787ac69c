package repository

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/goccy/go-json"

	"github.com/okian/scoutmatch/internal/domain/model"
)

func TestAssemble(t *testing.T) {
	r := profileRow{
		id:        "c1",
		fullName:  "FC X",
		avatarURL: "https://img/c1.png",
		userType:  "club",
	}
	r.details[2] = []byte(`{"profile_id":"c1","league":"La Liga","country":"Spain","founded_year":1899,"stadium":null}`)

	p, err := assemble(r)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.UserType != model.TypeClub || p.FullName != "FC X" {
		t.Errorf("unexpected profile header %+v", p)
	}
	if p.Club == nil {
		t.Fatal("expected club details")
	}
	if p.Club.League != "La Liga" || p.Club.FoundedYear == nil || *p.Club.FoundedYear != 1899 {
		t.Errorf("unexpected club details %+v", p.Club)
	}
	if p.Player != nil || p.Coach != nil || p.Agent != nil {
		t.Error("expected other details to stay nil")
	}

	r.details[0] = []byte(`{not json`)
	if _, err := assemble(r); err == nil {
		t.Error("expected decode error")
	}
}

func TestDetailsPayload(t *testing.T) {
	p := model.Profile{
		ID:       "a1",
		UserType: model.TypeAgent,
		Agent:    &model.AgentDetails{Agency: "Stellar", ClientsCount: model.IntPtr(12)},
	}
	table, body, err := detailsPayload(p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if table != "agent_details" {
		t.Errorf("expected agent_details, got %s", table)
	}
	var decoded map[string]any
	if err := json.Unmarshal(body, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if decoded["agency"] != "Stellar" || decoded["clients_count"] != float64(12) {
		t.Errorf("unexpected payload %s", body)
	}

	table, _, err = detailsPayload(model.Profile{ID: "s1", UserType: model.TypeSponsor})
	if err != nil || table != "" {
		t.Errorf("expected no table for missing details, got %q, %v", table, err)
	}

	// Mismatched details are ignored.
	table, _, _ = detailsPayload(model.Profile{ID: "x", UserType: model.TypeCoach, Player: &model.PlayerDetails{}})
	if table != "" {
		t.Errorf("expected no table, got %q", table)
	}
}

func TestFilterArg(t *testing.T) {
	if got := filterArg(model.TypeAll); got != "" {
		t.Errorf("expected empty filter, got %q", got)
	}
	if got := filterArg(model.TypeCoach); got != "coach" {
		t.Errorf("expected coach, got %q", got)
	}
}

// TestPostgresStore_RoundTrip runs against a live database when
// SCOUT_TEST_DATABASE_URL is set.
func TestPostgresStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("SCOUT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("SCOUT_TEST_DATABASE_URL not set")
	}
	ctx := context.Background()
	s, err := NewPostgresStore(ctx, dsn)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer s.Close()
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatalf("schema: %v", err)
	}

	profiles := testProfiles()
	if err := s.Upsert(ctx, profiles...); err != nil {
		t.Fatalf("upsert: %v", err)
	}
	p, err := s.Profile(ctx, "p1")
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	if p.Player == nil || p.Player.Position != "Forward" {
		t.Errorf("unexpected player details %+v", p.Player)
	}
	if _, err := s.Profile(ctx, "does-not-exist"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	players, err := s.ByType(ctx, model.TypePlayer, 10)
	if err != nil || len(players) < 2 {
		t.Errorf("expected players, got %d, %v", len(players), err)
	}
}
