//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"telegram-skin-radar/internal/domain/model"
)

func seedOppUser(t *testing.T, tgID int64) *model.User {
	t.Helper()
	u, err := model.NewUser("", tgID, "opp_user")
	if err != nil {
		t.Fatalf("model.NewUser failed: %v", err)
	}
	if err := NewPostgresUserRepo(testPool).Save(context.Background(), nil, u); err != nil {
		t.Fatalf("seed user failed: %v", err)
	}
	return u
}

func TestOpportunityRepo_Integration(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode.")
	}

	repo := NewPostgresOpportunityRepo(testPool)
	ctx := context.Background()

	t.Run("should save and list newest first", func(t *testing.T) {
		cleanup(t)
		user := seedOppUser(t, 111)

		for i, name := range []string{"Old Rug", "Neon Door", "Glow Sign"} {
			opp := model.NewOpportunity(user.ID, &model.Item{
				ID:                        int64(9000 + i),
				Name:                      name,
				CreatorID:                 76561198000000001,
				CreatorName:               "fresh_artist",
				SellOrderLowestPriceCents: 450,
			})
			opp.CreatedAt = time.Now().Add(time.Duration(i) * time.Minute)
			if err := repo.Save(ctx, nil, opp); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		recent, err := repo.ListRecentByUser(ctx, nil, user.ID, 2)
		if err != nil {
			t.Fatalf("ListRecentByUser failed: %v", err)
		}
		if len(recent) != 2 {
			t.Fatalf("expected 2 opportunities, got %d", len(recent))
		}
		if recent[0].ItemName != "Glow Sign" {
			t.Errorf("expected newest first, got %q", recent[0].ItemName)
		}
		if recent[0].CreatorID != "76561198000000001" {
			t.Errorf("creator key not persisted: %q", recent[0].CreatorID)
		}
	})

	t.Run("should count per user and per window", func(t *testing.T) {
		cleanup(t)
		user := seedOppUser(t, 222)

		fresh := model.NewOpportunity(user.ID, &model.Item{ID: 1, Name: "Fresh"})
		stale := model.NewOpportunity(user.ID, &model.Item{ID: 2, Name: "Stale"})
		stale.CreatedAt = time.Now().Add(-48 * time.Hour)
		for _, o := range []*model.Opportunity{fresh, stale} {
			if err := repo.Save(ctx, nil, o); err != nil {
				t.Fatalf("Save failed: %v", err)
			}
		}

		total, err := repo.CountByUser(ctx, nil, user.ID)
		if err != nil {
			t.Fatalf("CountByUser failed: %v", err)
		}
		if total != 2 {
			t.Errorf("expected 2, got %d", total)
		}

		recent, err := repo.CountByUserSince(ctx, nil, user.ID, time.Now().Add(-24*time.Hour))
		if err != nil {
			t.Fatalf("CountByUserSince failed: %v", err)
		}
		if recent != 1 {
			t.Errorf("expected 1 in the window, got %d", recent)
		}

		all, err := repo.CountAll(ctx, nil)
		if err != nil {
			t.Fatalf("CountAll failed: %v", err)
		}
		if all != 2 {
			t.Errorf("expected 2 overall, got %d", all)
		}
	})
}
