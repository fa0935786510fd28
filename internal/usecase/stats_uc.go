package usecase

import (
	"context"
	"time"

	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/repository"
	"telegram-skin-radar/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

// Stats is the service-wide counter snapshot served to admins.
type Stats struct {
	Users             int `json:"users"`
	Monitoring        int `json:"monitoring"`
	Creators          int `json:"known_creators"`
	Opportunities     int `json:"opportunities"`
	Opportunities24h  int `json:"opportunities_24h"`
	InactiveSevenDays int `json:"inactive_7d"`
}

// UserStatus aggregates everything the /status command shows for one user.
type UserStatus struct {
	User          *model.User
	FindsTotal    int
	Finds24h      int
	Processed     int
	KnownCreators int
}

type StatsUseCase interface {
	Summary(ctx context.Context) (*Stats, error)
	UserStatus(ctx context.Context, user *model.User) (*UserStatus, error)
}

type statsUC struct {
	users     repository.UserRepository
	creators  repository.CreatorRepository
	opps      repository.OpportunityRepository
	processed repository.ProcessedItemRepository
	log       *zerolog.Logger
}

func NewStatsUseCase(
	users repository.UserRepository,
	creators repository.CreatorRepository,
	opps repository.OpportunityRepository,
	processed repository.ProcessedItemRepository,
	logger *zerolog.Logger,
) *statsUC {
	return &statsUC{
		users:     users,
		creators:  creators,
		opps:      opps,
		processed: processed,
		log:       logger,
	}
}

func (s *statsUC) Summary(ctx context.Context) (*Stats, error) {
	defer logging.TraceDuration(s.log, "StatsUC.Summary")()

	now := time.Now().UTC()
	out := &Stats{}
	var err error
	if out.Users, err = s.users.CountUsers(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if out.Monitoring, err = s.users.CountMonitoring(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if out.Creators, err = s.creators.CountCreators(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if out.Opportunities, err = s.opps.CountAll(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	if out.Opportunities24h, err = s.opps.CountAllSince(ctx, repository.NoTX, now.Add(-24*time.Hour)); err != nil {
		return nil, err
	}
	if out.InactiveSevenDays, err = s.users.CountInactiveUsers(ctx, repository.NoTX, now.Add(-7*24*time.Hour)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *statsUC) UserStatus(ctx context.Context, user *model.User) (*UserStatus, error) {
	defer logging.TraceDuration(s.log, "StatsUC.UserStatus")()

	now := time.Now().UTC()
	st := &UserStatus{User: user}
	var err error
	if st.FindsTotal, err = s.opps.CountByUser(ctx, repository.NoTX, user.ID); err != nil {
		return nil, err
	}
	if st.Finds24h, err = s.opps.CountByUserSince(ctx, repository.NoTX, user.ID, now.Add(-24*time.Hour)); err != nil {
		return nil, err
	}
	if st.Processed, err = s.processed.CountByUser(ctx, repository.NoTX, user.ID); err != nil {
		return nil, err
	}
	if st.KnownCreators, err = s.creators.CountCreators(ctx, repository.NoTX); err != nil {
		return nil, err
	}
	return st, nil
}
