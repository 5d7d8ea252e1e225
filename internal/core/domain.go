package core

import (
	"strings"
	"time"
)

const (
	RoleStandard Role = "standard"
	RoleElevated Role = "elevated"
)

type (
	// Role is an account privilege level. Elevated accounts may read and
	// mutate other accounts' records.
	Role string

	Account struct {
		ID           string    `json:"id"`
		Username     string    `json:"username"`
		Email        string    `json:"email"`
		PasswordHash string    `json:"-"`
		Role         Role      `json:"role"`
		CreatedAt    time.Time `json:"created_at"`
	}

	// Identity is the verified (account, role) pair attached to a request.
	Identity struct {
		AccountID string
		Role      Role
	}

	Category struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		OwnerID string `json:"owner_id,omitempty"`
	}

	Source struct {
		ID      string `json:"id"`
		Name    string `json:"name"`
		OwnerID string `json:"owner_id,omitempty"`
	}

	Expense struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		CategoryID  string    `json:"category_id"`
		OwnerID     string    `json:"owner_id,omitempty"`
		// Category carries the joined reference on reads, owner stripped.
		Category *Category `json:"category,omitempty"`
	}

	Income struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Description string    `json:"description"`
		Date        time.Time `json:"date"`
		SourceID    string    `json:"source_id"`
		OwnerID     string    `json:"owner_id,omitempty"`
		Source      *Source   `json:"source,omitempty"`
	}
)

func (r Role) Valid() bool {
	return r == RoleStandard || r == RoleElevated
}

func (c Category) Validate() error {
	if strings.TrimSpace(c.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (s Source) Validate() error {
	if strings.TrimSpace(s.Name) == "" {
		return ErrEmptyName
	}
	return nil
}

func (e Expense) Validate() error {
	if err := e.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(e.Description) == "" {
		return ErrEmptyDescription
	}
	if len(e.Description) > 200 {
		return ErrValidation
	}
	if e.CategoryID == "" {
		return ErrInvalidReference
	}
	return nil
}

func (i Income) Validate() error {
	if err := i.Amount.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(i.Description) == "" {
		return ErrEmptyDescription
	}
	if len(i.Description) > 200 {
		return ErrValidation
	}
	if i.SourceID == "" {
		return ErrInvalidReference
	}
	return nil
}
