package main

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/meur/tierrank/internal/models"
	"github.com/meur/tierrank/internal/storage"
	"github.com/smartystreets/goconvey/convey"
)

var errDiskIO = errors.New("disk I/O error")

// brokenTiers fails every tier lookup with a storage error and counts creates.
type brokenTiers struct {
	*storage.Store
	creates int
}

func (b *brokenTiers) GetTier(context.Context, string) (*models.Tier, error) {
	return nil, errDiskIO
}

func (b *brokenTiers) CreateTier(ctx context.Context, name, color string) (*models.Tier, error) {
	b.creates++
	return b.Store.CreateTier(ctx, name, color)
}

func newSeedStore(t *testing.T) *storage.Store {
	t.Helper()
	s, err := storage.New(filepath.Join(t.TempDir(), "seed.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSeed(t *testing.T) {
	convey.Convey("Given a seed file", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "games.yaml")
		body := `tiers:
  - {name: S, color: "#ff7f7f"}
  - {name: A, color: "#ffbf7f"}
items:
  - {name: Hades, tier: S}
  - {name: Terraria}
`
		convey.So(os.WriteFile(path, []byte(body), 0o644), convey.ShouldBeNil)

		convey.Convey("When it is applied twice", func() {
			s := newSeedStore(t)
			convey.So(seedPath(ctx, s, path), convey.ShouldBeNil)
			convey.So(seedPath(ctx, s, path), convey.ShouldBeNil)

			convey.Convey("Then every tier and item exists once", func() {
				tiers, err := s.ListTiers(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(tiers, convey.ShouldHaveLength, 2)

				items, err := s.ListItems(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(items, convey.ShouldHaveLength, 2)
				convey.So(*items[0].Tier, convey.ShouldEqual, "S")
				convey.So(items[1].Tier, convey.ShouldBeNil)
			})
		})

		convey.Convey("When tier lookups fail with a storage error", func() {
			broken := &brokenTiers{Store: newSeedStore(t)}
			err := seedPath(ctx, broken, path)

			convey.Convey("Then the error surfaces and nothing is created", func() {
				convey.So(errors.Is(err, errDiskIO), convey.ShouldBeTrue)
				convey.So(broken.creates, convey.ShouldEqual, 0)
			})
		})
	})

	convey.Convey("A seed file without tiers gets the default tiers", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "items.yaml")
		convey.So(os.WriteFile(path, []byte("items:\n  - {name: Celeste, tier: F}\n"), 0o644), convey.ShouldBeNil)

		s := newSeedStore(t)
		convey.So(seedPath(ctx, s, path), convey.ShouldBeNil)

		tiers, err := s.ListTiers(ctx)
		convey.So(err, convey.ShouldBeNil)
		convey.So(tiers, convey.ShouldHaveLength, len(models.DefaultTiers()))
		it, err := s.GetItem(ctx, "Celeste")
		convey.So(err, convey.ShouldBeNil)
		convey.So(*it.Tier, convey.ShouldEqual, "F")
	})
}
