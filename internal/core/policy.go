package core

// Access policy for account-targeted operations. These are pure decision
// functions: they look only at the caller's identity and the target, and
// every denial is ErrForbidden.

// CanAccessAccount allows a caller to reach an account record when the
// account is their own or the caller holds the elevated role.
func CanAccessAccount(targetID string, caller Identity) error {
	if targetID == caller.AccountID || caller.Role == RoleElevated {
		return nil
	}
	return ErrForbidden
}

// CanMutateAccount layers the elevated-target rule on top of
// CanAccessAccount: a non-elevated caller may never update or delete an
// elevated account. Self access has already passed the first check, so an
// elevated account mutating itself is always allowed.
func CanMutateAccount(target Account, caller Identity) error {
	if err := CanAccessAccount(target.ID, caller); err != nil {
		return err
	}
	if target.Role == RoleElevated && caller.Role != RoleElevated {
		return ErrForbidden
	}
	return nil
}

// CanListAccounts restricts the account listing as a whole to elevated
// callers. This is a capability check on the operation, not a per-record
// ownership check.
func CanListAccounts(caller Identity) error {
	if caller.Role != RoleElevated {
		return ErrForbidden
	}
	return nil
}
