/*
directory.go - Read-only relationship lookups

The workflow's reviewer scoping is meaningless without knowing who manages
whom and who belongs to which department. Nothing here mutates state and
there is no algorithm beyond indexed lookup.
*/
package vacation

import "context"

type Directory struct {
	store Store
}

func NewDirectory(store Store) *Directory {
	return &Directory{store: store}
}

// ManagerOf returns the person's manager, or nil if they have none.
func (d *Directory) ManagerOf(ctx context.Context, personID string) (*Person, error) {
	p, err := d.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	if p.ManagerID == "" {
		return nil, nil
	}
	return d.store.GetPerson(ctx, p.ManagerID)
}

// DirectReports returns exactly the people whose ManagerID equals managerID.
// Not transitive: a report's reports are not included.
func (d *Directory) DirectReports(ctx context.Context, managerID string) ([]Person, error) {
	people, err := d.store.ListPeople(ctx)
	if err != nil {
		return nil, err
	}
	var reports []Person
	for _, p := range people {
		if p.ManagerID == managerID {
			reports = append(reports, p)
		}
	}
	return reports, nil
}

// DepartmentOf resolves a person's department record by name.
func (d *Directory) DepartmentOf(ctx context.Context, personID string) (*Department, error) {
	p, err := d.store.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	departments, err := d.store.ListDepartments(ctx)
	if err != nil {
		return nil, err
	}
	for i := range departments {
		if departments[i].Name == p.Department {
			return &departments[i], nil
		}
	}
	return nil, ErrDepartmentNotFound
}
