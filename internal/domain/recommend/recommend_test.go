package recommend

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/fallback"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/types"
)

type failingStore struct{ repository.Store }

func (failingStore) ByType(context.Context, model.StakeholderType, int) ([]model.Profile, error) {
	return nil, errors.New("connection reset")
}

func players(n int) []model.Profile {
	out := make([]model.Profile, n)
	for i := range out {
		out[i] = model.Profile{
			ID:       fmt.Sprintf("p%d", i),
			FullName: fmt.Sprintf("Player %d", i),
			UserType: model.TypePlayer,
			Player:   &model.PlayerDetails{Position: "Midfielder", Club: "FC X", City: "Lisbon"},
		}
	}
	return out
}

func newRecommender(t *testing.T, store repository.Store) *Recommender {
	t.Helper()
	demo, err := fallback.Default()
	if err != nil {
		t.Fatalf("demo dataset: %v", err)
	}
	return New(WithStore(store), WithFallback(demo), WithSeed(7))
}

func memoryStore(t *testing.T, profiles ...model.Profile) repository.Store {
	t.Helper()
	s, err := repository.NewMemoryStore(context.Background(), repository.WithProfiles(profiles...))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func assertSorted(recs []types.Recommendation) {
	for i, rec := range recs {
		convey.So(rec.MatchPercentage, convey.ShouldBeBetweenOrEqual, MinPercentage, MaxPercentage)
		if i > 0 {
			convey.So(rec.MatchPercentage, convey.ShouldBeLessThanOrEqualTo, recs[i-1].MatchPercentage)
		}
	}
}

func TestGetRecommendations(t *testing.T) {
	convey.Convey("Given a store of players", t, func() {
		ctx := context.Background()
		r := newRecommender(t, memoryStore(t, players(8)...))

		convey.Convey("When the querying user is on the first page", func() {
			got := r.GetRecommendations(ctx, "p0", model.TypePlayer, 5)

			convey.Convey("Then the page is still full and excludes the user", func() {
				convey.So(got, convey.ShouldHaveLength, 5)
				for _, rec := range got {
					convey.So(rec.ID, convey.ShouldNotEqual, "p0")
					convey.So(rec.Tags, convey.ShouldResemble, []string{"Midfielder", "FC X"})
					convey.So(rec.Location, convey.ShouldEqual, "Lisbon")
				}
				assertSorted(got)
			})
		})

		convey.Convey("When asking for a type the store lacks", func() {
			got := r.GetRecommendations(ctx, "p0", model.TypeAgent, 5)

			convey.Convey("Then demo agents are served", func() {
				convey.So(got, convey.ShouldHaveLength, 1)
				convey.So(got[0].ID, convey.ShouldEqual, "agent-1")
				convey.So(got[0].Tags, convey.ShouldResemble,
					[]string{"Elite Sports Agency", "Transfers", "Negotiation", "Sponsorships"})
				convey.So(got[0].Location, convey.ShouldEqual, "N/A")
			})
		})

		convey.Convey("When the limit is zero", func() {
			got := r.GetRecommendations(ctx, "nobody", model.TypePlayer, 0)

			convey.Convey("Then the default limit applies", func() {
				convey.So(got, convey.ShouldHaveLength, defaultLimit)
			})
		})
	})

	convey.Convey("Given a failing store", t, func() {
		r := newRecommender(t, failingStore{})

		convey.Convey("When recommendations are requested", func() {
			got := r.GetRecommendations(context.Background(), "u1", model.TypeSponsor, 3)

			convey.Convey("Then the fallback is used", func() {
				convey.So(got, convey.ShouldHaveLength, 1)
				convey.So(got[0].Tags, convey.ShouldResemble, []string{"Grants", "Equipment", "Mentorship"})
				assertSorted(got)
			})
		})
	})

	convey.Convey("Given a cancelled request", t, func() {
		r := newRecommender(t, memoryStore(t, players(3)...))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then nothing is returned", func() {
			convey.So(r.GetRecommendations(ctx, "p0", model.TypePlayer, 3), convey.ShouldBeEmpty)
		})
	})
}

func TestAcrossTypes(t *testing.T) {
	convey.Convey("Given a store with only players", t, func() {
		r := newRecommender(t, memoryStore(t, players(3)...))

		convey.Convey("When merging across types", func() {
			got := r.GetRecommendations(context.Background(), "p0", model.TypeAll, 6)

			convey.Convey("Then live players and demo entries are merged by percentage", func() {
				convey.So(got, convey.ShouldHaveLength, 5)
				seen := map[string]bool{}
				for _, rec := range got {
					convey.So(rec.ID, convey.ShouldNotEqual, "p0")
					convey.So(seen[rec.ID], convey.ShouldBeFalse)
					seen[rec.ID] = true
					convey.So(rec.Type, convey.ShouldNotEqual, model.TypeSponsor)
				}
				assertSorted(got)
			})
		})
	})
}

func TestPercentageRange(t *testing.T) {
	convey.Convey("Given many draws", t, func() {
		r := New(WithSeed(42))
		seen := map[int]bool{}
		for i := 0; i < 5000; i++ {
			p := r.percentage()
			convey.So(p >= MinPercentage && p <= MaxPercentage, convey.ShouldBeTrue)
			seen[p] = true
		}

		convey.Convey("Then both bounds are reachable", func() {
			convey.So(seen[MinPercentage], convey.ShouldBeTrue)
			convey.So(seen[MaxPercentage], convey.ShouldBeTrue)
		})
	})
}

func TestTags(t *testing.T) {
	convey.Convey("Given profiles of every type", t, func() {
		convey.So(Tags(&model.Profile{UserType: model.TypeClub, Club: &model.ClubDetails{League: "Serie A"}}),
			convey.ShouldResemble, []string{"Serie A"})
		convey.So(Tags(&model.Profile{UserType: model.TypeCoach, Coach: &model.CoachDetails{Specialization: "Goalkeeping"}}),
			convey.ShouldResemble, []string{"Goalkeeping"})
		convey.So(Tags(&model.Profile{UserType: model.TypeEquipmentSupplier,
			EquipmentSupplier: &model.EquipmentSupplierDetails{Products: "Balls, Nets"}}),
			convey.ShouldResemble, []string{"Balls", "Nets"})
		convey.So(Tags(&model.Profile{UserType: model.TypePlayer}), convey.ShouldBeNil)
		convey.So(Tags(&model.Profile{UserType: model.TypeClub, Club: &model.ClubDetails{}}), convey.ShouldBeNil)
	})
}

func TestAcrossTypesIndependentFallback(t *testing.T) {
	convey.Convey("Given a store that fails for every type", t, func() {
		r := newRecommender(t, failingStore{})

		convey.Convey("When merging across types", func() {
			got := r.AcrossTypes(context.Background(), "u1", 5)

			convey.Convey("Then each type falls back on its own and all are merged", func() {
				convey.So(got, convey.ShouldHaveLength, 5)
				counts := map[model.StakeholderType]int{}
				for _, rec := range got {
					counts[rec.Type]++
				}
				convey.So(counts[model.TypePlayer], convey.ShouldEqual, 2)
				convey.So(counts[model.TypeClub], convey.ShouldEqual, 1)
				convey.So(counts[model.TypeCoach], convey.ShouldEqual, 1)
				convey.So(counts[model.TypeAgent], convey.ShouldEqual, 1)
				assertSorted(got)
			})
		})
	})

	convey.Convey("Given a cancelled cross-type request", t, func() {
		r := newRecommender(t, memoryStore(t, players(3)...))
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		convey.Convey("Then nothing is returned", func() {
			convey.So(r.AcrossTypes(ctx, "p0", 5), convey.ShouldBeEmpty)
		})
	})
}
