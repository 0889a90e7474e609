package models

import (
	"time"
)

// RoleType defines a user role. A user may hold several roles.
type RoleType string

const (
	RoleAdministrator  RoleType = "ADMINISTRATOR"
	RoleTeacher        RoleType = "TEACHER"
	RoleStudent        RoleType = "STUDENT"
	RoleParent         RoleType = "PARENT"
	RoleATA            RoleType = "ATA"
	RoleAgencyOperator RoleType = "AGENCY_OPERATOR"
	RolePointOperator  RoleType = "POINT_OPERATOR"
	RoleTourist        RoleType = "TOURIST"
)

// AllRoles lists every role known to the system
var AllRoles = []RoleType{
	RoleAdministrator,
	RoleTeacher,
	RoleStudent,
	RoleParent,
	RoleATA,
	RoleAgencyOperator,
	RolePointOperator,
	RoleTourist,
}

// IsValid reports whether r is a known role
func (r RoleType) IsValid() bool {
	for _, role := range AllRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Term is a report card period
type Term string

const (
	TermFirst  Term = "FIRST"
	TermSecond Term = "SECOND"
)

// AcademicYearBounds returns the first and last day of the school year starting in year.
// School years run from September 1st to August 31st.
func AcademicYearBounds(year int) (time.Time, time.Time) {
	start := time.Date(year, time.September, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.August, 31, 0, 0, 0, 0, time.UTC)
	return start, end
}

// AcademicYearOf returns the starting year of the school year containing day.
func AcademicYearOf(day time.Time) int {
	if day.Month() >= time.September {
		return day.Year()
	}
	return day.Year() - 1
}
