package matching

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/fallback"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/internal/domain/similarity"
	"github.com/okian/scoutmatch/internal/domain/vectorize"
)

// stubStore lets tests fail or panic at a chosen step.
type stubStore struct {
	profile       model.Profile
	profileErr    error
	candidates    []model.Profile
	candidatesErr error
	panicOn       string
}

func (s *stubStore) Profile(_ context.Context, id string) (model.Profile, error) {
	if s.panicOn == "profile" {
		panic("boom")
	}
	if s.profileErr != nil {
		return model.Profile{}, s.profileErr
	}
	return s.profile, nil
}

func (s *stubStore) Candidates(context.Context, model.StakeholderType, string) ([]model.Profile, error) {
	if s.panicOn == "candidates" {
		panic("boom")
	}
	return s.candidates, s.candidatesErr
}

func (s *stubStore) ByType(context.Context, model.StakeholderType, int) ([]model.Profile, error) {
	return nil, nil
}

func (s *stubStore) Count(context.Context) int { return len(s.candidates) }

func fixtures() []model.Profile {
	return []model.Profile{
		{ID: "p1", FullName: "Ana", UserType: model.TypePlayer, Player: &model.PlayerDetails{
			Age: model.IntPtr(25), Position: "Forward", Country: "Spain", Club: "FC X",
		}},
		{ID: "p2", FullName: "Ben", UserType: model.TypePlayer, Player: &model.PlayerDetails{
			Age: model.IntPtr(24), Position: "Striker", Country: "Spain", Club: "FC X", Description: "Poacher",
		}},
		{ID: "p3", FullName: "Cid", UserType: model.TypePlayer, Player: &model.PlayerDetails{
			Age: model.IntPtr(34), Position: "Goalkeeper", Country: "Japan", Club: "Kashima",
		}},
		{ID: "k1", FullName: "Dee", UserType: model.TypeCoach, Coach: &model.CoachDetails{
			Specialization: "Youth Development", Experience: "9 years", Country: "Italy",
		}},
		{ID: "c1", FullName: "FC X", UserType: model.TypeClub, Club: &model.ClubDetails{
			League: "La Liga", Country: "Spain", FoundedYear: model.IntPtr(1899),
		}},
		{ID: "a1", FullName: "Eve", UserType: model.TypeAgent},
	}
}

func newRanker(t *testing.T, store repository.Store) *Ranker {
	t.Helper()
	demo, err := fallback.Default()
	if err != nil {
		t.Fatalf("demo dataset: %v", err)
	}
	clock := clockwork.NewFakeClockAt(time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC))
	return NewRanker(
		WithStore(store),
		WithFallback(demo),
		WithVectorizer(vectorize.New(vectorize.WithClock(clock))),
	)
}

func memoryStore(t *testing.T, profiles ...model.Profile) *repository.MemoryStore {
	t.Helper()
	s, err := repository.NewMemoryStore(context.Background(), repository.WithProfiles(profiles...))
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRankLive(t *testing.T) {
	Convey("Given a populated store", t, func() {
		ctx := context.Background()
		r := newRanker(t, memoryStore(t, fixtures()...))

		Convey("When ranking by neighbour", func() {
			out := r.Rank(ctx, StrategyNeighbor, Query{UserID: "p1", Filter: model.TypeAll, Count: 3})

			Convey("Then live matches are returned best first without the user", func() {
				So(out.Reason, ShouldEqual, ReasonNone)
				So(out.Fallback(), ShouldBeFalse)
				So(out.Matches, ShouldHaveLength, 3)
				for i, m := range out.Matches {
					So(m.ID, ShouldNotEqual, "p1")
					So(m.MatchScore, ShouldBeBetweenOrEqual, 0, 100)
					if i > 0 {
						So(m.MatchScore, ShouldBeLessThanOrEqualTo, out.Matches[i-1].MatchScore)
					}
				}
			})
		})

		Convey("When ranking directly with a type filter", func() {
			got := r.FindMatchesByDirectSimilarity(ctx, "p1", model.TypePlayer, 10)

			Convey("Then only players are ranked", func() {
				So(got, ShouldHaveLength, 2)
				for _, m := range got {
					So(m.Type, ShouldEqual, model.TypePlayer)
				}
				So(got[0].MatchScore, ShouldBeGreaterThanOrEqualTo, got[1].MatchScore)
			})
		})

		Convey("When both strategies rank the same pool", func() {
			byNeighbor := r.FindMatchesByNeighbor(ctx, "k1", model.TypeAll, 10)
			byDirect := r.FindMatchesByDirectSimilarity(ctx, "k1", model.TypeAll, 10)

			Convey("Then they agree on order", func() {
				So(len(byNeighbor), ShouldEqual, len(byDirect))
				for i := range byNeighbor {
					So(byNeighbor[i].ID, ShouldEqual, byDirect[i].ID)
				}
			})
		})

		Convey("When a coach is matched", func() {
			got := r.FindMatchesByDirectSimilarity(ctx, "p1", model.TypeCoach, 1)

			Convey("Then details are mapped onto the match", func() {
				So(got, ShouldHaveLength, 1)
				So(got[0].Name, ShouldEqual, "Dee")
				So(got[0].Location, ShouldEqual, "Italy")
				So(got[0].Skills, ShouldResemble, []string{"Youth Development"})
			})
		})

		Convey("When the count is zero", func() {
			got := r.FindMatchesByNeighbor(ctx, "p1", model.TypeAll, 0)

			Convey("Then the default k applies", func() {
				So(got, ShouldHaveLength, 5)
			})
		})
	})
}

func TestRankFallbacks(t *testing.T) {
	Convey("Given a ranker with the demo fallback", t, func() {
		ctx := context.Background()

		Convey("When the user profile cannot be fetched", func() {
			r := newRanker(t, memoryStore(t, fixtures()...))
			out := r.Rank(ctx, StrategyNeighbor, Query{UserID: "ghost", Filter: model.TypePlayer, Count: 5})

			Convey("Then demo players are served", func() {
				So(out.Reason, ShouldEqual, ReasonProfileUnavailable)
				So(errors.Is(out.Err, repository.ErrNotFound), ShouldBeTrue)
				So(out.Matches, ShouldNotBeEmpty)
				for _, m := range out.Matches {
					So(m.Type, ShouldEqual, model.TypePlayer)
				}
			})
		})

		Convey("When the candidate pool is empty", func() {
			r := newRanker(t, memoryStore(t, fixtures()[0]))
			out := r.Rank(ctx, StrategyDirect, Query{UserID: "p1", Filter: model.TypeAll, Count: 2})

			Convey("Then the fallback is truncated to the count", func() {
				So(out.Reason, ShouldEqual, ReasonEmptyPool)
				So(out.Matches, ShouldHaveLength, 2)
				So(out.Matches[0].ID, ShouldEqual, "player-1")
			})
		})

		Convey("When fetching candidates fails", func() {
			r := newRanker(t, &stubStore{profile: fixtures()[0], candidatesErr: repository.ErrUnavailable})
			out := r.Rank(ctx, StrategyNeighbor, Query{UserID: "p1", Filter: model.TypeClub, Count: 3})

			Convey("Then the error is recorded and clubs are served", func() {
				So(out.Reason, ShouldEqual, ReasonError)
				So(errors.Is(out.Err, repository.ErrUnavailable), ShouldBeTrue)
				So(out.Matches, ShouldNotBeEmpty)
				So(out.Matches[0].Type, ShouldEqual, model.TypeClub)
			})
		})

		Convey("When the store only returns the user", func() {
			p1 := fixtures()[0]
			r := newRanker(t, &stubStore{profile: p1, candidates: []model.Profile{p1}})
			out := r.Rank(ctx, StrategyNeighbor, Query{UserID: "p1", Count: 3})

			Convey("Then self is excluded and the pool counts as empty", func() {
				So(out.Reason, ShouldEqual, ReasonEmptyPool)
			})
		})

		Convey("When the pipeline panics", func() {
			r := newRanker(t, &stubStore{panicOn: "candidates", profile: fixtures()[0]})
			var out Outcome
			So(func() { out = r.Rank(ctx, StrategyDirect, Query{UserID: "p1", Count: 3}) }, ShouldNotPanic)

			Convey("Then it is reported as an error fallback", func() {
				So(out.Reason, ShouldEqual, ReasonError)
				So(out.Err, ShouldNotBeNil)
				So(out.Matches, ShouldHaveLength, 3)
			})
		})

		Convey("When no store is configured", func() {
			r := NewRanker()
			got := r.FindMatchesByNeighbor(ctx, "p1", model.TypeAll, 3)

			Convey("Then an empty, non-nil list is returned", func() {
				So(got, ShouldNotBeNil)
				So(got, ShouldBeEmpty)
			})
		})

		Convey("When the caller has gone away", func() {
			r := newRanker(t, memoryStore(t, fixtures()...))
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			out := r.Rank(cctx, StrategyNeighbor, Query{UserID: "p1", Count: 3})

			Convey("Then the result is discarded without a fallback", func() {
				So(out.Reason, ShouldEqual, ReasonCanceled)
				So(out.Fallback(), ShouldBeFalse)
				So(out.Matches, ShouldBeEmpty)
			})
		})
	})
}

func TestSelfSimilarity(t *testing.T) {
	Convey("Given the reference player profile", t, func() {
		p := model.Profile{ID: "p1", UserType: model.TypePlayer, Player: &model.PlayerDetails{
			Age: model.IntPtr(25), Position: "Forward", Country: "Spain", Club: "FC X",
		}}
		v := vectorize.New().Vector(&p)

		Convey("Then it is fully similar to itself", func() {
			s, err := similarity.Cosine(v.Slice(), v.Slice())
			So(err, ShouldBeNil)
			So(s, ShouldAlmostEqual, 1.0, 1e-9)
			So(toMatch(&p, 100).MatchScore, ShouldEqual, 100)
		})

		Convey("And the pairwise score of a profile with itself is 100", func() {
			r := newRanker(t, memoryStore(t, p))
			for _, method := range []string{"cosine", "euclidean"} {
				ps, err := r.PairScore(context.Background(), "p1", "p1", method)
				So(err, ShouldBeNil)
				So(ps.Score, ShouldEqual, 100)
			}
		})
	})
}

func TestPairScore(t *testing.T) {
	Convey("Given two stored profiles", t, func() {
		ctx := context.Background()
		r := newRanker(t, memoryStore(t, fixtures()...))

		Convey("When scoring with cosine", func() {
			ps, err := r.PairScore(ctx, "p1", "p2", "")
			So(err, ShouldBeNil)
			So(ps.Method, ShouldEqual, "cosine")
			So(ps.Score, ShouldBeBetweenOrEqual, 50, 100)
		})

		Convey("When the method is unknown", func() {
			_, err := r.PairScore(ctx, "p1", "p2", "manhattan")
			So(errors.Is(err, ErrUnknownMethod), ShouldBeTrue)
		})

		Convey("When a profile is missing", func() {
			_, err := r.PairScore(ctx, "p1", "nobody", "euclidean")
			So(IsNotFound(err), ShouldBeTrue)
		})
	})
}

func TestParseStrategy(t *testing.T) {
	Convey("Given strategy names", t, func() {
		s, err := ParseStrategy("")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, StrategyNeighbor)

		s, err = ParseStrategy(" Direct ")
		So(err, ShouldBeNil)
		So(s, ShouldEqual, StrategyDirect)

		_, err = ParseStrategy("random")
		So(errors.Is(err, ErrUnknownStrategy), ShouldBeTrue)
	})
}
