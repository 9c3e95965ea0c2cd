/*
admin.go - Administrative operations

User and department management plus system settings. Every operation here
requires the acting person to be an admin; there is no finer-grained
permission model. Deleting your own account is refused so a system can't
admin itself into a corner.
*/
package vacation

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

type Admin struct {
	store Store
	newID func() string
}

func NewAdmin(store Store) *Admin {
	return &Admin{store: store, newID: uuid.NewString}
}

func (a *Admin) requireAdmin(ctx context.Context, actorID string) (*Person, error) {
	actor, err := a.store.GetPerson(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if actor.Role != RoleAdmin {
		return nil, ErrAdminRequired
	}
	return actor, nil
}

// =============================================================================
// USERS
// =============================================================================

// CreateUser adds a person. A missing ID is generated; a zero total
// allowance falls back to the system default.
func (a *Admin) CreateUser(ctx context.Context, actorID string, p Person) (*Person, error) {
	if _, err := a.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(p.Name) == "" {
		return nil, missingField("name")
	}
	if !p.Role.Valid() {
		return nil, &ValidationError{
			Field:   "role",
			Code:    "invalid_role",
			Message: "role must be employee, manager or admin",
			err:     ErrMissingField,
		}
	}

	if p.ID == "" {
		p.ID = a.newID()
	}
	if p.TotalDays.IsZero() {
		settings, err := a.store.GetSettings(ctx)
		if err != nil {
			return nil, err
		}
		p.TotalDays = settings.DefaultVacationDays
	}

	if err := a.store.SavePerson(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// UpdateUser edits a person record. Used days are owned by the ledger and
// never edited here; an allowance cut below already-used days is refused.
func (a *Admin) UpdateUser(ctx context.Context, actorID string, p Person) (*Person, error) {
	if _, err := a.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}

	existing, err := a.store.GetPerson(ctx, p.ID)
	if err != nil {
		return nil, err
	}
	if !p.Role.Valid() {
		return nil, &ValidationError{
			Field:   "role",
			Code:    "invalid_role",
			Message: "role must be employee, manager or admin",
			err:     ErrMissingField,
		}
	}
	if p.TotalDays.LessThan(existing.UsedDays) {
		return nil, ErrAllowanceBelowUsed
	}

	p.UsedDays = existing.UsedDays
	if err := a.store.SavePerson(ctx, p); err != nil {
		return nil, err
	}
	return &p, nil
}

// DeleteUser removes a person. The acting admin may not delete themself.
func (a *Admin) DeleteUser(ctx context.Context, actorID, personID string) error {
	if _, err := a.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	if actorID == personID {
		return ErrSelfDelete
	}
	if _, err := a.store.GetPerson(ctx, personID); err != nil {
		return err
	}
	return a.store.DeletePerson(ctx, personID)
}

// =============================================================================
// DEPARTMENTS
// =============================================================================

// CreateDepartment adds a department. Names are unique within the system.
func (a *Admin) CreateDepartment(ctx context.Context, actorID, name, managerID string) (*Department, error) {
	if _, err := a.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, missingField("name")
	}

	existing, err := a.store.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	for _, d := range existing {
		if d.Name == name {
			return nil, ErrDuplicateDepartment
		}
	}

	dept := Department{ID: a.newID(), Name: name, ManagerID: managerID}
	if err := a.store.SaveDepartment(ctx, dept); err != nil {
		return nil, err
	}
	return &dept, nil
}

// UpdateDepartment renames a department or reassigns its manager.
// There is no delete operation for departments.
func (a *Admin) UpdateDepartment(ctx context.Context, actorID string, d Department) (*Department, error) {
	if _, err := a.requireAdmin(ctx, actorID); err != nil {
		return nil, err
	}
	if strings.TrimSpace(d.Name) == "" {
		return nil, missingField("name")
	}

	if _, err := a.store.GetDepartment(ctx, d.ID); err != nil {
		return nil, err
	}
	existing, err := a.store.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	for _, other := range existing {
		if other.ID != d.ID && other.Name == d.Name {
			return nil, ErrDuplicateDepartment
		}
	}

	if err := a.store.SaveDepartment(ctx, d); err != nil {
		return nil, err
	}
	return &d, nil
}

// =============================================================================
// SETTINGS
// =============================================================================

func (a *Admin) Settings(ctx context.Context) (*Settings, error) {
	return a.store.GetSettings(ctx)
}

func (a *Admin) UpdateSettings(ctx context.Context, actorID string, s Settings) error {
	if _, err := a.requireAdmin(ctx, actorID); err != nil {
		return err
	}
	return a.store.SaveSettings(ctx, s)
}
