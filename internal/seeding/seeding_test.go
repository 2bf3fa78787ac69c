package seeding

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"

	"github.com/okian/scoutmatch/internal/adapters/repository"
	"github.com/okian/scoutmatch/internal/domain/model"
	"github.com/okian/scoutmatch/pkg/logger"
)

type countingWriter struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (c *countingWriter) Upsert(_ context.Context, _ ...model.Profile) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return c.err
}

func TestGenerator(t *testing.T) {
	Convey("Given a seeded generator", t, func() {
		now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		g := newGenerator(42, now)

		Convey("When profiles are generated", func() {
			profiles := g.generateProfiles(12)

			Convey("Then every type appears with its details record", func() {
				So(profiles, ShouldHaveLength, 12)
				seen := map[model.StakeholderType]int{}
				for _, p := range profiles {
					seen[p.UserType]++
					So(p.UserType.Valid(), ShouldBeTrue)
					So(p.FullName, ShouldNotBeBlank)
					So(p.Summary().Location, ShouldNotBeBlank)
				}
				for _, st := range model.StakeholderTypes() {
					So(seen[st], ShouldEqual, 2)
				}
			})

			Convey("Then club founding years are not in the future", func() {
				for _, p := range profiles {
					if p.Club != nil {
						So(*p.Club.FoundedYear, ShouldBeLessThanOrEqualTo, 2026)
					}
				}
			})
		})

		Convey("When a list is picked", func() {
			list := g.pickN([]string{"a", "b"}, 5)

			Convey("Then it is capped at the source length", func() {
				So(model.SplitList(list), ShouldHaveLength, 2)
			})
		})
	})
}

func TestRun(t *testing.T) {
	Convey("Given a memory store as the writer", t, func() {
		ctx := context.Background()
		store, err := repository.NewMemoryStore(ctx)
		So(err, ShouldBeNil)
		defer store.Close()

		Convey("When synthetic profiles are seeded in batches", func() {
			out := filepath.Join(t.TempDir(), "out", "seeded.yaml")
			stats, err := Run(ctx, &Config{Generate: 25, BatchSize: 10, Workers: 3, Seed: 7, OutputFile: out}, store, logger.NewNop())

			Convey("Then every profile is written", func() {
				So(err, ShouldBeNil)
				So(stats.ProfilesWritten, ShouldEqual, 25)
				So(stats.Batches, ShouldEqual, 3)
				So(store.Count(ctx), ShouldEqual, 25)
			})

			Convey("Then the dump can be loaded back", func() {
				profiles, err := repository.LoadProfilesFile(out)
				So(err, ShouldBeNil)
				So(profiles, ShouldHaveLength, 25)
			})
		})

		Convey("When profiles come from a file", func() {
			path := filepath.Join(t.TempDir(), "profiles.yaml")
			So(os.WriteFile(path, []byte("profiles:\n  - id: club-1\n    full_name: Harbour FC\n    user_type: club\n"), 0o600), ShouldBeNil)

			stats, err := Run(ctx, &Config{InputFile: path}, store, nil)

			Convey("Then the file profiles are written", func() {
				So(err, ShouldBeNil)
				So(stats.ByType["club"], ShouldEqual, 1)
				_, err := store.Profile(ctx, "club-1")
				So(err, ShouldBeNil)
			})
		})
	})

	Convey("Given invalid input", t, func() {
		ctx := context.Background()

		Convey("When there is nothing to seed", func() {
			_, err := Run(ctx, &Config{}, &countingWriter{}, nil)

			Convey("Then ErrNoProfiles is returned", func() {
				So(errors.Is(err, ErrNoProfiles), ShouldBeTrue)
			})
		})

		Convey("When the writer fails", func() {
			boom := errors.New("boom")
			w := &countingWriter{err: boom}
			_, err := Run(ctx, &Config{Generate: 3, BatchSize: 1, Workers: 1}, w, nil)

			Convey("Then the error is wrapped", func() {
				So(errors.Is(err, boom), ShouldBeTrue)
			})
		})

		Convey("When no writer is given", func() {
			_, err := Run(ctx, &Config{Generate: 1}, nil, nil)

			Convey("Then the config is rejected", func() {
				So(errors.Is(err, ErrInvalidConfig), ShouldBeTrue)
			})
		})
	})
}
