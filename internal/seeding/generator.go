package seeding

import (
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/scoutmatch/internal/domain/model"
)

var (
	firstNames = []string{"Sam", "Ana", "Kofi", "Lena", "Marco", "Yuki", "Ade", "Ines", "Tariq", "Nora"}
	lastNames  = []string{"Okafor", "Ruiz", "Mensah", "Berg", "Rossi", "Tanaka", "Bello", "Costa", "Haddad", "Lind"}
	positions  = []string{"Striker", "Midfielder", "Defender", "Goalkeeper", "Winger"}
	countries  = []string{"Nigeria", "Spain", "Ghana", "Sweden", "Italy", "Japan", "Portugal", "Morocco"}
	leagues    = []string{"Premier", "Championship", "La Liga", "Serie A", "Eredivisie"}
	clubWords  = []string{"Harbour", "North End", "Riverside", "Athletic", "United", "Rovers"}
	coachRoles = []string{"Attacking", "Defensive", "Youth Development", "Goalkeeping", "Fitness"}
	agentFocus = []string{"Youth Players", "Transfers", "Contract Negotiation", "Image Rights", "Women's Football"}
	sponsorFoc = []string{"Youth Academies", "Kits", "Stadiums", "Tournaments", "Grassroots"}
	products   = []string{"Boots", "Balls", "Kits", "Goals", "Training Cones", "GPS Vests"}
)

// generator synthesizes plausible profiles of every stakeholder type. It is
// not safe for concurrent use.
type generator struct {
	rnd  *rand.Rand
	year int
}

func newGenerator(seed int64, now time.Time) *generator {
	if seed == 0 {
		seed = now.UnixNano()
	}
	return &generator{rnd: rand.New(rand.NewSource(seed)), year: now.Year()} //nolint:gosec // synthetic data
}

// generateProfiles creates n profiles cycling through the stakeholder types.
func (g *generator) generateProfiles(n int) []model.Profile {
	types := model.StakeholderTypes()
	out := make([]model.Profile, 0, n)
	for i := range n {
		out = append(out, g.profile(types[i%len(types)]))
	}
	return out
}

func (g *generator) profile(t model.StakeholderType) model.Profile {
	p := model.Profile{
		ID:        string(t) + "-" + uuid.NewString(),
		FullName:  g.pick(firstNames) + " " + g.pick(lastNames),
		AvatarURL: "",
		UserType:  t,
	}
	country := g.pick(countries)
	switch t {
	case model.TypePlayer:
		p.Player = &model.PlayerDetails{
			Age:      model.IntPtr(16 + g.rnd.Intn(20)),
			Position: g.pick(positions),
			Club:     g.pick(clubWords) + " FC",
			Country:  country,
		}
	case model.TypeCoach:
		p.Coach = &model.CoachDetails{
			Specialization: g.pick(coachRoles),
			Experience:     fmt.Sprintf("%d years", 1+g.rnd.Intn(25)),
			CurrentClub:    g.pick(clubWords) + " FC",
			Country:        country,
		}
	case model.TypeClub:
		p.FullName = g.pick(clubWords) + " " + g.pick(clubWords) + " FC"
		p.Club = &model.ClubDetails{
			League:      g.pick(leagues),
			FoundedYear: model.IntPtr(g.year - g.rnd.Intn(150)),
			Country:     country,
		}
	case model.TypeAgent:
		p.Agent = &model.AgentDetails{
			Agency:          g.pick(lastNames) + " Sports Management",
			Specialization:  g.pickN(agentFocus, 2),
			ExperienceYears: model.IntPtr(g.rnd.Intn(31)),
			ClientsCount:    model.IntPtr(g.rnd.Intn(101)),
			Country:         country,
		}
	case model.TypeSponsor:
		p.FullName = g.pick(lastNames) + " Group"
		p.Sponsor = &model.SponsorDetails{
			SponsorshipFocus: g.pickN(sponsorFoc, 2),
			YearEstablished:  model.IntPtr(g.year - g.rnd.Intn(80)),
			Country:          country,
		}
	case model.TypeEquipmentSupplier:
		p.FullName = g.pick(lastNames) + " Sports"
		p.EquipmentSupplier = &model.EquipmentSupplierDetails{
			Products:        g.pickN(products, 3),
			YearEstablished: model.IntPtr(g.year - g.rnd.Intn(80)),
			Country:         country,
		}
	}
	return p
}

func (g *generator) pick(xs []string) string {
	return xs[g.rnd.Intn(len(xs))]
}

// pickN joins up to n distinct items into a comma separated list.
func (g *generator) pickN(xs []string, n int) string {
	idx := g.rnd.Perm(len(xs))
	n = min(n, len(xs))
	out := make([]string, 0, n)
	for _, i := range idx[:n] {
		out = append(out, xs[i])
	}
	return strings.Join(out, ", ")
}
