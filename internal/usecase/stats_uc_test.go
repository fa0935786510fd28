//go:build !integration

package usecase_test

import (
	"context"
	"testing"
	"time"

	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/usecase"
)

func TestStatsUseCase_Summary(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepo()
	creators := NewMockCreatorRepo()
	opps := NewMockOpportunityRepo()
	processed := NewMockProcessedRepo()
	uc := usecase.NewStatsUseCase(users, creators, opps, processed, newTestLogger())

	users.Save(ctx, nil, &model.User{ID: "u1", TelegramID: 1, Monitoring: true, LastActiveAt: time.Now()})
	users.Save(ctx, nil, &model.User{ID: "u2", TelegramID: 2, LastActiveAt: time.Now().Add(-30 * 24 * time.Hour)})
	creators.Save(ctx, nil, model.NewCreator("777", "a", 3))
	opps.Save(ctx, nil, &model.Opportunity{ID: "o1", UserID: "u1", CreatedAt: time.Now()})
	opps.Save(ctx, nil, &model.Opportunity{ID: "o2", UserID: "u1", CreatedAt: time.Now().Add(-48 * time.Hour)})

	got, err := uc.Summary(ctx)
	if err != nil {
		t.Fatalf("Summary failed: %v", err)
	}
	if got.Users != 2 || got.Monitoring != 1 || got.Creators != 1 {
		t.Errorf("unexpected counts: %+v", got)
	}
	if got.Opportunities != 2 || got.Opportunities24h != 1 {
		t.Errorf("unexpected opportunity counts: %+v", got)
	}
	if got.InactiveSevenDays != 1 {
		t.Errorf("expected 1 inactive user, got %d", got.InactiveSevenDays)
	}
}

func TestStatsUseCase_UserStatus(t *testing.T) {
	ctx := context.Background()
	users := NewMockUserRepo()
	creators := NewMockCreatorRepo()
	opps := NewMockOpportunityRepo()
	processed := NewMockProcessedRepo()
	uc := usecase.NewStatsUseCase(users, creators, opps, processed, newTestLogger())

	user := &model.User{ID: "u1", TelegramID: 1, FoundCount: 2, MaxFinds: 10}
	users.Save(ctx, nil, user)
	opps.Save(ctx, nil, &model.Opportunity{ID: "o1", UserID: "u1", CreatedAt: time.Now()})
	opps.Save(ctx, nil, &model.Opportunity{ID: "o2", UserID: "u1", CreatedAt: time.Now().Add(-72 * time.Hour)})
	opps.Save(ctx, nil, &model.Opportunity{ID: "o3", UserID: "other", CreatedAt: time.Now()})
	processed.MarkProcessed(ctx, nil, "u1", 11)
	processed.MarkProcessed(ctx, nil, "u1", 12)
	creators.Save(ctx, nil, model.NewCreator("777", "a", 1))

	got, err := uc.UserStatus(ctx, user)
	if err != nil {
		t.Fatalf("UserStatus failed: %v", err)
	}
	if got.FindsTotal != 2 || got.Finds24h != 1 {
		t.Errorf("unexpected find counts: %+v", got)
	}
	if got.Processed != 2 {
		t.Errorf("expected 2 processed, got %d", got.Processed)
	}
	if got.KnownCreators != 1 {
		t.Errorf("expected 1 known creator, got %d", got.KnownCreators)
	}
}
