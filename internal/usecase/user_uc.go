package usecase

import (
	"context"
	"time"

	"telegram-skin-radar/internal/domain"
	"telegram-skin-radar/internal/domain/model"
	"telegram-skin-radar/internal/domain/ports/repository"
	"telegram-skin-radar/internal/infra/logging"
	"telegram-skin-radar/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// TokenCipher is the slice of the encryption service the use cases need.
type TokenCipher interface {
	Encrypt(plaintext string) (string, error)
	Decrypt(ciphertext string) (string, error)
}

// UserDefaults overrides the model defaults applied to newly registered
// users. Zero fields fall back to the model constants.
type UserDefaults struct {
	MaxFinds       int
	MaxPriceCents  int
	MaxItemAgeDays int
}

// UserUseCase exposes user/session operations used by bot and admin flows.
type UserUseCase interface {
	RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error)
	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)

	SetSteamToken(ctx context.Context, tgID int64, token string) error
	SetAutoPurchase(ctx context.Context, tgID int64, enabled bool) (*model.User, error)
	SetMaxPrice(ctx context.Context, tgID int64, cents int) error

	StartMonitoring(ctx context.Context, tgID int64) (*model.User, error)
	StopMonitoring(ctx context.Context, tgID int64) error
	ResetProgress(ctx context.Context, tgID int64) (*model.User, error)

	List(ctx context.Context, offset, limit int) ([]*model.User, error)
	Count(ctx context.Context) (int, error)
	CountMonitoring(ctx context.Context) (int, error)
	CountInactiveSince(ctx context.Context, since time.Time) (int, error)
}

type userUC struct {
	users     repository.UserRepository
	processed repository.ProcessedItemRepository
	cipher    TokenCipher
	tm        repository.TransactionManager
	defaults  UserDefaults
	log       *zerolog.Logger
}

func NewUserUseCase(
	users repository.UserRepository,
	processed repository.ProcessedItemRepository,
	cipher TokenCipher,
	tm repository.TransactionManager,
	defaults UserDefaults,
	logger *zerolog.Logger,
) *userUC {
	return &userUC{
		users:     users,
		processed: processed,
		cipher:    cipher,
		tm:        tm,
		defaults:  defaults,
		log:       logger,
	}
}

func (u *userUC) RegisterOrFetch(ctx context.Context, tgID int64, username string) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.RegisterOrFetch")()

	var user *model.User
	// The read (find) and write (save) run as a single atomic operation so
	// concurrent updates from the same user don't race.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := u.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil && err != domain.ErrNotFound {
			return err
		}

		if usr != nil {
			if usr.Username != username && username != "" {
				usr.Username = username
			}
			usr.Touch()
			if err = u.users.Save(ctx, tx, usr); err != nil {
				u.log.Error().Err(err).Msg("Failed to update user")
				return err
			}
			user = usr
			return nil
		}

		nu, err := model.NewUser("", tgID, username)
		if err != nil {
			return err
		}
		if u.defaults.MaxFinds > 0 {
			nu.MaxFinds = u.defaults.MaxFinds
		}
		if u.defaults.MaxPriceCents > 0 {
			nu.MaxPriceCents = u.defaults.MaxPriceCents
		}
		if u.defaults.MaxItemAgeDays > 0 {
			nu.MaxItemAgeDays = u.defaults.MaxItemAgeDays
		}
		if err := u.users.Save(ctx, tx, nu); err != nil {
			return err
		}
		metrics.IncUsersRegistered()
		user = nu
		return nil
	})

	return user, err
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.GetByTelegramID")()
	return u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
}

// SetSteamToken validates and stores the user's Steam session token,
// encrypted at rest. Tokens shorter than a cookie value or absurdly long are
// rejected before touching the store.
func (u *userUC) SetSteamToken(ctx context.Context, tgID int64, token string) error {
	defer logging.TraceDuration(u.log, "UserUC.SetSteamToken")()

	if len(token) <= 10 || len(token) >= 200 {
		return domain.ErrInvalidSteamToken
	}
	user, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return err
	}
	ct, err := u.cipher.Encrypt(token)
	if err != nil {
		return err
	}
	user.SteamToken = ct
	user.Touch()
	return u.users.Save(ctx, repository.NoTX, user)
}

func (u *userUC) SetAutoPurchase(ctx context.Context, tgID int64, enabled bool) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.SetAutoPurchase")()

	user, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return nil, err
	}
	user.AutoPurchase = enabled
	user.Touch()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *userUC) SetMaxPrice(ctx context.Context, tgID int64, cents int) error {
	defer logging.TraceDuration(u.log, "UserUC.SetMaxPrice")()

	if cents < model.MinMaxPriceCents || cents > model.MaxMaxPriceCents {
		return domain.ErrPriceOutOfRange
	}
	user, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return err
	}
	user.MaxPriceCents = cents
	user.Touch()
	return u.users.Save(ctx, repository.NoTX, user)
}

// StartMonitoring flips the user's radar on. It refuses when no Steam token
// is configured, when the radar is already running, or when the user has
// exhausted their find allowance.
func (u *userUC) StartMonitoring(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.StartMonitoring")()

	user, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return nil, err
	}
	if !user.HasSteamToken() {
		return nil, domain.ErrNoSteamToken
	}
	if user.Monitoring {
		return nil, domain.ErrAlreadyMonitoring
	}
	if user.LimitReached() {
		return nil, domain.ErrFindLimitReached
	}
	user.Monitoring = true
	user.Touch()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return nil, err
	}
	u.log.Info().Int64("tg_id", tgID).Msg("monitoring started")
	return user, nil
}

func (u *userUC) StopMonitoring(ctx context.Context, tgID int64) error {
	defer logging.TraceDuration(u.log, "UserUC.StopMonitoring")()

	user, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return err
	}
	if !user.Monitoring {
		return domain.ErrNotMonitoring
	}
	user.Monitoring = false
	user.Touch()
	if err := u.users.Save(ctx, repository.NoTX, user); err != nil {
		return err
	}
	u.log.Info().Int64("tg_id", tgID).Msg("monitoring stopped")
	return nil
}

// ResetProgress zeroes the find counter and clears the user's processed-item
// set, letting them run another batch. Token and history stay.
func (u *userUC) ResetProgress(ctx context.Context, tgID int64) (*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.ResetProgress")()

	var user *model.User
	err := u.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		usr, err := u.users.FindByTelegramID(ctx, tx, tgID)
		if err != nil {
			return err
		}
		usr.FoundCount = 0
		usr.Touch()
		if err := u.users.Save(ctx, tx, usr); err != nil {
			return err
		}
		if err := u.processed.ClearUser(ctx, tx, usr.ID); err != nil {
			return err
		}
		user = usr
		return nil
	})
	return user, err
}

func (u *userUC) List(ctx context.Context, offset, limit int) ([]*model.User, error) {
	defer logging.TraceDuration(u.log, "UserUC.List")()
	return u.users.ListUsers(ctx, repository.NoTX, offset, limit)
}

func (u *userUC) Count(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.Count")()
	return u.users.CountUsers(ctx, repository.NoTX)
}

func (u *userUC) CountMonitoring(ctx context.Context) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.CountMonitoring")()
	return u.users.CountMonitoring(ctx, repository.NoTX)
}

func (u *userUC) CountInactiveSince(ctx context.Context, since time.Time) (int, error) {
	defer logging.TraceDuration(u.log, "UserUC.CountInactiveSince")()
	return u.users.CountInactiveUsers(ctx, repository.NoTX, since)
}
