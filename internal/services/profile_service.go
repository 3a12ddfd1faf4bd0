package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"brokemate/internal/core"
	"brokemate/internal/store"
)

const (
	maxUsernameLength = 40
	maxPINLength      = 12
)

// ProfileService manages the profile partition. PINs are optional and only
// their bcrypt hash is stored.
type ProfileService struct {
	store store.ProfileStore
	cost  int
	now   func() time.Time
}

func NewProfileService(st store.ProfileStore) *ProfileService {
	return &ProfileService{store: st, cost: bcrypt.DefaultCost, now: time.Now}
}

// Register creates a profile. Names are trimmed and unique regardless of
// case; a PIN, when given, must equal its confirmation.
func (s *ProfileService) Register(ctx context.Context, username, pin, confirm string) (core.Profile, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return core.Profile{}, core.ErrEmptyName
	}
	if len(username) > maxUsernameLength {
		return core.Profile{}, fmt.Errorf("%w: username exceeds %d characters", core.ErrFieldTooLong, maxUsernameLength)
	}
	if pin != confirm {
		return core.Profile{}, ErrPINMismatch
	}
	if len(pin) > maxPINLength {
		return core.Profile{}, fmt.Errorf("%w: PIN exceeds %d characters", core.ErrFieldTooLong, maxPINLength)
	}

	p := core.Profile{
		ID:        uuid.NewString(),
		Username:  username,
		CreatedAt: s.now().UTC(),
	}
	if pin != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(pin), s.cost)
		if err != nil {
			return core.Profile{}, fmt.Errorf("hash PIN: %w", err)
		}
		p.PINHash = string(hash)
	}

	if err := s.store.SaveProfile(ctx, p); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			return core.Profile{}, ErrProfileExists
		}
		return core.Profile{}, fmt.Errorf("save profile: %w", err)
	}

	slog.InfoContext(ctx, "Profile registered",
		"profile_id", p.ID,
		"has_pin", p.HasPIN())

	return p, nil
}

func (s *ProfileService) List(ctx context.Context) ([]core.Profile, error) {
	return s.store.ListProfiles(ctx)
}

func (s *ProfileService) Get(ctx context.Context, id string) (core.Profile, error) {
	p, err := s.store.GetProfile(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return core.Profile{}, ErrProfileNotFound
	}
	return p, err
}

// Login checks pin against the profile's hash. Profiles without a PIN
// accept any input.
func (s *ProfileService) Login(ctx context.Context, id, pin string) (core.Profile, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return core.Profile{}, err
	}
	if !p.HasPIN() {
		return p, nil
	}
	if err := bcrypt.CompareHashAndPassword([]byte(p.PINHash), []byte(pin)); err != nil {
		slog.WarnContext(ctx, "Rejected profile login", "profile_id", id)
		return core.Profile{}, ErrInvalidPIN
	}
	return p, nil
}
