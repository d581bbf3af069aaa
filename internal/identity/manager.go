// Package identity owns accounts, profiles, and the single-device session
// pointer. All state lives in the snapshot store; the manager enforces the
// sign-up and sign-in rules on top of it.
package identity

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/agonhq/agon/internal/adapters/repository"
	"github.com/agonhq/agon/internal/domain/model"
	"github.com/agonhq/agon/internal/domain/ranking"
	"github.com/agonhq/agon/pkg/logger"
	"github.com/agonhq/agon/pkg/metrics"
)

const defaultMinPasswordLen = 6

// Manager performs account and session operations against the store.
type Manager struct {
	store          *repository.Store
	hasher         Hasher
	log            logger.Logger
	minPasswordLen int
}

// NewManager builds an identity manager over the given store.
func NewManager(store *repository.Store, options ...Option) *Manager {
	m := &Manager{
		store:          store,
		hasher:         NewBcryptHasher(0),
		log:            logger.Named("identity"),
		minPasswordLen: defaultMinPasswordLen,
	}
	for _, opt := range options {
		opt(m)
	}

	return m
}

// SignUp creates an account with a fresh profile and signs it in. Emails are
// compared case-insensitively for duplicate detection but stored as given.
func (m *Manager) SignUp(ctx context.Context, email, password, username string) (model.Account, model.Profile, error) {
	email = strings.TrimSpace(email)
	username = strings.TrimSpace(username)
	if err := m.validateSignUp(email, password, username); err != nil {
		return model.Account{}, model.Profile{}, err
	}

	accounts, err := m.store.Accounts(ctx)
	if err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("load accounts: %w", err)
	}
	for _, acc := range accounts {
		if strings.EqualFold(acc.Email, email) {
			return model.Account{}, model.Profile{}, fmt.Errorf("%w: %s", ErrDuplicateAccount, email)
		}
	}

	hash, err := m.hasher.Hash(password)
	if err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now().UTC()
	account := model.Account{
		ID:           model.NewID(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    now,
	}
	profile := model.Profile{
		ID:        account.ID,
		Username:  username,
		AvatarURL: model.DefaultAvatarURL(username),
		Rank:      ranking.LabelNovice,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := m.store.ReplaceAccounts(ctx, append(accounts, account)); err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("save accounts: %w", err)
	}

	profiles, err := m.store.Profiles(ctx)
	if err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("load profiles: %w", err)
	}
	if err := m.store.ReplaceProfiles(ctx, append(profiles, profile)); err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("save profiles: %w", err)
	}

	if err := m.store.SetCurrentAccount(ctx, account.ID); err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("set session: %w", err)
	}

	metrics.RecordSignup()
	m.log.Info(ctx, "account created", logger.String("account_id", account.ID), logger.String("username", username))

	return account, profile, nil
}

// SignIn verifies credentials and moves the session pointer. Unknown email
// and wrong password both return ErrInvalidCredential.
func (m *Manager) SignIn(ctx context.Context, email, password string) (model.Account, model.Profile, error) {
	email = strings.TrimSpace(email)

	accounts, err := m.store.Accounts(ctx)
	if err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("load accounts: %w", err)
	}

	var account model.Account
	found := false
	for _, acc := range accounts {
		if strings.EqualFold(acc.Email, email) {
			account = acc
			found = true

			break
		}
	}
	if !found {
		return model.Account{}, model.Profile{}, ErrInvalidCredential
	}
	if err := m.hasher.Compare(account.PasswordHash, password); err != nil {
		return model.Account{}, model.Profile{}, ErrInvalidCredential
	}

	profile, err := m.profileByID(ctx, account.ID)
	if err != nil {
		return model.Account{}, model.Profile{}, err
	}

	if err := m.store.SetCurrentAccount(ctx, account.ID); err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("set session: %w", err)
	}

	metrics.RecordSignin()
	m.log.Info(ctx, "signed in", logger.String("account_id", account.ID))

	return account, profile, nil
}

// SignOut clears the session pointer. Signing out while signed out is a
// no-op.
func (m *Manager) SignOut(ctx context.Context) error {
	if err := m.store.SetCurrentAccount(ctx, ""); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}

	return nil
}

// Session resolves the current account and profile. ErrNotFound means
// nobody is signed in, or the pointer is dangling after data loss.
func (m *Manager) Session(ctx context.Context) (model.Account, model.Profile, error) {
	id, err := m.store.CurrentAccount(ctx)
	if err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("load session: %w", err)
	}
	if id == "" {
		return model.Account{}, model.Profile{}, ErrNotFound
	}

	accounts, err := m.store.Accounts(ctx)
	if err != nil {
		return model.Account{}, model.Profile{}, fmt.Errorf("load accounts: %w", err)
	}
	for _, acc := range accounts {
		if acc.ID == id {
			profile, err := m.profileByID(ctx, id)
			if err != nil {
				return model.Account{}, model.Profile{}, err
			}

			return acc, profile, nil
		}
	}

	return model.Account{}, model.Profile{}, fmt.Errorf("%w: account %s", ErrNotFound, id)
}

// UpdateProfile changes the signed-in user's username and/or avatar. Empty
// fields are left untouched.
func (m *Manager) UpdateProfile(ctx context.Context, username, avatarURL string) (model.Profile, error) {
	account, _, err := m.Session(ctx)
	if err != nil {
		return model.Profile{}, err
	}

	username = strings.TrimSpace(username)
	if username == "" && avatarURL == "" {
		return model.Profile{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	profiles, err := m.store.Profiles(ctx)
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profiles: %w", err)
	}

	for i := range profiles {
		if profiles[i].ID != account.ID {
			continue
		}
		if username != "" {
			profiles[i].Username = username
		}
		if avatarURL != "" {
			profiles[i].AvatarURL = avatarURL
		}
		profiles[i].UpdatedAt = time.Now().UTC()

		if err := m.store.ReplaceProfiles(ctx, profiles); err != nil {
			return model.Profile{}, fmt.Errorf("save profiles: %w", err)
		}

		return profiles[i], nil
	}

	return model.Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, account.ID)
}

// ListProfiles returns every stored profile.
func (m *Manager) ListProfiles(ctx context.Context) ([]model.Profile, error) {
	profiles, err := m.store.Profiles(ctx)
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}

	metrics.UpdateTrackedProfiles(len(profiles))

	return profiles, nil
}

func (m *Manager) validateSignUp(email, password, username string) error {
	if email == "" || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: malformed email", ErrValidation)
	}
	if len(password) < m.minPasswordLen {
		return fmt.Errorf("%w: password shorter than %d characters", ErrValidation, m.minPasswordLen)
	}
	if username == "" {
		return fmt.Errorf("%w: blank username", ErrValidation)
	}

	return nil
}

func (m *Manager) profileByID(ctx context.Context, id string) (model.Profile, error) {
	profiles, err := m.store.Profiles(ctx)
	if err != nil {
		return model.Profile{}, fmt.Errorf("load profiles: %w", err)
	}
	for _, p := range profiles {
		if p.ID == id {
			return p, nil
		}
	}

	return model.Profile{}, fmt.Errorf("%w: profile %s", ErrNotFound, id)
}
