package services

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"tally/internal/auth"
	"tally/internal/core"
	"tally/internal/storage"
)

// AccountStore is the record-store capability for accounts.
type AccountStore interface {
	InsertAccount(ctx context.Context, a core.Account) error
	GetAccount(ctx context.Context, id string) (core.Account, error)
	GetAccountByUsername(ctx context.Context, username string) (core.Account, error)
	AccountExists(ctx context.Context, username, email string) (bool, error)
	ListAccounts(ctx context.Context) ([]core.Account, error)
	UpdateAccount(ctx context.Context, id string, patch storage.AccountPatch) (core.Account, error)
	DeleteAccount(ctx context.Context, id string) error
}

// UpdateAccountInput carries the account fields a caller may change; nil
// fields are left untouched. Password is hashed before it reaches storage.
type UpdateAccountInput struct {
	Username *string
	Email    *string
	Password *string
	Role     *core.Role
}

// AccountService handles registration, login and policy-gated account
// management. Password hashes never leave this service.
type AccountService struct {
	store     AccountStore
	jwtSecret []byte
	tokenTTL  time.Duration
}

func NewAccountService(store AccountStore, jwtSecret []byte, tokenTTL time.Duration) *AccountService {
	return &AccountService{store: store, jwtSecret: jwtSecret, tokenTTL: tokenTTL}
}

// Register creates an account. A username or email already in use, in any
// combination, is a conflict; the UNIQUE constraints back the pre-check up
// under concurrent registration.
func (s *AccountService) Register(ctx context.Context, username, email, password string, role core.Role) (core.Account, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return core.Account{}, core.ErrValidation
	}
	if role == "" {
		role = core.RoleStandard
	}
	if !role.Valid() {
		return core.Account{}, core.ErrValidation
	}

	exists, err := s.store.AccountExists(ctx, username, email)
	if err != nil {
		return core.Account{}, err
	}
	if exists {
		slog.WarnContext(ctx, "Registration conflict", "username", username)
		return core.Account{}, core.ErrAccountExists
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return core.Account{}, err
	}

	a := core.Account{
		ID:           uuid.NewString(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		CreatedAt:    time.Now(),
	}
	if err := s.store.InsertAccount(ctx, a); err != nil {
		slog.ErrorContext(ctx, "Failed to create account", "username", username, "error", err)
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "Account created", "account_id", a.ID, "username", username, "role", string(role))
	return scrub(a), nil
}

// Login verifies the credentials and mints an access token. Unknown
// usernames and wrong passwords are indistinguishable to the caller.
func (s *AccountService) Login(ctx context.Context, username, password string) (core.Account, string, error) {
	a, err := s.store.GetAccountByUsername(ctx, username)
	if err != nil {
		slog.WarnContext(ctx, "Login failed", "username", username)
		return core.Account{}, "", core.ErrBadCredentials
	}
	if !auth.CheckPassword(a.PasswordHash, password) {
		slog.WarnContext(ctx, "Login failed", "username", username)
		return core.Account{}, "", core.ErrBadCredentials
	}

	token, err := auth.GenerateToken(core.Identity{AccountID: a.ID, Role: a.Role}, s.jwtSecret, s.tokenTTL)
	if err != nil {
		return core.Account{}, "", err
	}

	slog.InfoContext(ctx, "Account logged in", "account_id", a.ID)
	return scrub(a), token, nil
}

// Get returns one account record, gated by the self-or-elevated policy.
func (s *AccountService) Get(ctx context.Context, id string, caller core.Identity) (core.Account, error) {
	if err := core.CanAccessAccount(id, caller); err != nil {
		slog.WarnContext(ctx, "Account access denied", "target_id", id, "caller_id", caller.AccountID)
		return core.Account{}, err
	}
	a, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, err
	}
	return scrub(a), nil
}

// List returns every account; elevated callers only.
func (s *AccountService) List(ctx context.Context, caller core.Identity) ([]core.Account, error) {
	if err := core.CanListAccounts(caller); err != nil {
		slog.WarnContext(ctx, "Account listing denied", "caller_id", caller.AccountID)
		return nil, err
	}
	accounts, err := s.store.ListAccounts(ctx)
	if err != nil {
		return nil, err
	}
	for i := range accounts {
		accounts[i] = scrub(accounts[i])
	}
	return accounts, nil
}

// Update mutates an account after both policy gates pass: the caller must
// reach the account at all, and a non-elevated caller may never mutate an
// elevated account.
func (s *AccountService) Update(ctx context.Context, id string, caller core.Identity, input UpdateAccountInput) (core.Account, error) {
	target, err := s.gateMutation(ctx, id, caller)
	if err != nil {
		return core.Account{}, err
	}

	patch := storage.AccountPatch{Username: input.Username, Email: input.Email}
	if input.Role != nil {
		if !input.Role.Valid() {
			return core.Account{}, core.ErrValidation
		}
		patch.Role = input.Role
	}
	if input.Password != nil {
		hash, err := auth.HashPassword(*input.Password)
		if err != nil {
			return core.Account{}, err
		}
		patch.PasswordHash = &hash
	}

	updated, err := s.store.UpdateAccount(ctx, target.ID, patch)
	if err != nil {
		slog.WarnContext(ctx, "Failed to update account", "account_id", id, "error", err)
		return core.Account{}, err
	}

	slog.InfoContext(ctx, "Account updated", "account_id", id, "caller_id", caller.AccountID)
	return scrub(updated), nil
}

func (s *AccountService) Delete(ctx context.Context, id string, caller core.Identity) error {
	if _, err := s.gateMutation(ctx, id, caller); err != nil {
		return err
	}
	if err := s.store.DeleteAccount(ctx, id); err != nil {
		slog.WarnContext(ctx, "Failed to delete account", "account_id", id, "error", err)
		return err
	}
	slog.InfoContext(ctx, "Account deleted", "account_id", id, "caller_id", caller.AccountID)
	return nil
}

func (s *AccountService) gateMutation(ctx context.Context, id string, caller core.Identity) (core.Account, error) {
	if err := core.CanAccessAccount(id, caller); err != nil {
		slog.WarnContext(ctx, "Account access denied", "target_id", id, "caller_id", caller.AccountID)
		return core.Account{}, err
	}
	target, err := s.store.GetAccount(ctx, id)
	if err != nil {
		return core.Account{}, err
	}
	if err := core.CanMutateAccount(target, caller); err != nil {
		slog.WarnContext(ctx, "Account mutation denied", "target_id", id, "caller_id", caller.AccountID)
		return core.Account{}, err
	}
	return target, nil
}

func scrub(a core.Account) core.Account {
	a.PasswordHash = ""
	return a
}
