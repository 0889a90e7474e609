package models

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID int64
	Roles  []RoleType
}

// HasRole reports whether the actor holds any of the given roles
func (a Actor) HasRole(roles ...RoleType) bool {
	for _, held := range a.Roles {
		for _, r := range roles {
			if held == r {
				return true
			}
		}
	}
	return false
}

// IsStaff reports whether the actor is school staff allowed to read any student record
func (a Actor) IsStaff() bool {
	return a.HasRole(RoleAdministrator, RoleTeacher)
}
