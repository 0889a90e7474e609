package models

import (
	"time"
)

// Address is a school course of study (e.g. "Computer Science") that classes belong to
type Address struct {
	ID        int64      `json:"id" db:"id"`
	Name      string     `json:"name" db:"name"`
	Teachings []Teaching `json:"teachings,omitempty"`
}

// Teaching is a subject taught at the school
type Teaching struct {
	ID   int64  `json:"id" db:"id"`
	Name string `json:"name" db:"name"`
}

// Class is a group of students for one academic year
type Class struct {
	ID           int64  `json:"id" db:"id"`
	AddressID    int64  `json:"addressId" db:"address_id"`
	Name         string `json:"name" db:"name"`
	AcademicYear int    `json:"academicYear" db:"academic_year"`
}

// ClassTeacher assigns a teacher to a class for a teaching
type ClassTeacher struct {
	ClassID    int64  `json:"classId" db:"class_id"`
	TeacherID  int64  `json:"teacherId" db:"teacher_id"`
	TeachingID int64  `json:"teachingId" db:"teaching_id"`
	Teacher    string `json:"teacher,omitempty"`
	Teaching   string `json:"teaching,omitempty"`
}

// ClassMember is a student enrolled in a class
type ClassMember struct {
	StudentID int64  `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// Absence records a student missing a school day
type Absence struct {
	ID              int64     `json:"id" db:"id"`
	StudentID       int64     `json:"studentId" db:"student_id"`
	ClassID         int64     `json:"classId" db:"class_id"`
	Date            time.Time `json:"date" db:"absence_date"`
	AcademicYear    int       `json:"academicYear" db:"academic_year"`
	JustificationID *int64    `json:"justificationId,omitempty" db:"justification_id"`
}

// Justified reports whether the absence has a justification
func (a *Absence) Justified() bool {
	return a.JustificationID != nil
}

// Delay records a late entry
type Delay struct {
	ID           int64     `json:"id" db:"id"`
	StudentID    int64     `json:"studentId" db:"student_id"`
	ClassID      int64     `json:"classId" db:"class_id"`
	Date         time.Time `json:"date" db:"delay_date"`
	EntryTime    string    `json:"entryTime" db:"entry_time"`
	AcademicYear int       `json:"academicYear" db:"academic_year"`
}

// Justification explains an absence
type Justification struct {
	ID           int64     `json:"id" db:"id"`
	AbsenceID    int64     `json:"absenceId" db:"absence_id"`
	StudentID    int64     `json:"studentId" db:"student_id"`
	Date         time.Time `json:"date" db:"justification_date"`
	Reason       string    `json:"reason" db:"reason"`
	AcademicYear int       `json:"academicYear" db:"academic_year"`
}

// Note is a disciplinary note
type Note struct {
	ID           int64     `json:"id" db:"id"`
	StudentID    int64     `json:"studentId" db:"student_id"`
	TeacherID    int64     `json:"teacherId" db:"teacher_id"`
	ClassID      int64     `json:"classId" db:"class_id"`
	Date         time.Time `json:"date" db:"note_date"`
	Description  string    `json:"description" db:"description"`
	AcademicYear int       `json:"academicYear" db:"academic_year"`
}

// RegisterEntry is one student's line in a class register for a given day
type RegisterEntry struct {
	StudentID int64   `json:"studentId"`
	FirstName string  `json:"firstName,omitempty"`
	LastName  string  `json:"lastName,omitempty"`
	Absent    bool    `json:"absent"`
	Justified bool    `json:"justified"`
	EntryTime *string `json:"entryTime,omitempty"`
	Notes     int     `json:"notes"`
}

// RegisterDay is a whole class register for a day
type RegisterDay struct {
	ClassID int64           `json:"classId"`
	Date    time.Time       `json:"date"`
	Entries []RegisterEntry `json:"entries"`
}

// RegisterSaveResult summarizes what a register save changed
type RegisterSaveResult struct {
	AbsencesAdded   int `json:"absencesAdded"`
	AbsencesRemoved int `json:"absencesRemoved"`
	DelaysSaved     int `json:"delaysSaved"`
	DelaysRemoved   int `json:"delaysRemoved"`
}

// StudentRecord gathers a student's attendance and notes for a school year
type StudentRecord struct {
	StudentID    int64     `json:"studentId"`
	AcademicYear int       `json:"academicYear"`
	Absences     []Absence `json:"absences"`
	Delays       []Delay   `json:"delays"`
	Notes        []Note    `json:"notes"`
}

// ReportCard holds a student's grades for one term
type ReportCard struct {
	ID           int64   `json:"id" db:"id"`
	StudentID    int64   `json:"studentId" db:"student_id"`
	ClassID      int64   `json:"classId" db:"class_id"`
	AcademicYear int     `json:"academicYear" db:"academic_year"`
	Term         Term    `json:"term" db:"term"`
	Grades       []Grade `json:"grades"`
}

// Grade is a mark for one teaching, 1..10
type Grade struct {
	TeachingID int64  `json:"teachingId" db:"teaching_id"`
	Teaching   string `json:"teaching,omitempty"`
	Mark       int    `json:"mark" db:"mark"`
}

// EnrollmentStatus is the lifecycle of a registration request
type EnrollmentStatus string

const (
	EnrollmentPending  EnrollmentStatus = "PENDING"
	EnrollmentAccepted EnrollmentStatus = "ACCEPTED"
	EnrollmentRejected EnrollmentStatus = "REJECTED"
)

// EnrollmentRequest is a prospective student's registration request
type EnrollmentRequest struct {
	ID        int64            `json:"id" db:"id"`
	Login     string           `json:"login" db:"login"`
	Email     string           `json:"email" db:"email"`
	Password  string           `json:"-" db:"password"`
	FirstName string           `json:"firstName" db:"first_name"`
	LastName  string           `json:"lastName" db:"last_name"`
	Cell      *string          `json:"cell,omitempty" db:"cell"`
	Status    EnrollmentStatus `json:"status" db:"status"`
	UserID    *int64           `json:"userId,omitempty" db:"user_id"`
	CreatedAt time.Time        `json:"createdAt" db:"created_at"`
	DecidedAt *time.Time       `json:"decidedAt,omitempty" db:"decided_at"`
}

// MonitoredStudent is a student exceeding the monitoring thresholds
type MonitoredStudent struct {
	StudentID int64  `json:"studentId"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Absences  int    `json:"absences"`
	Notes     int    `json:"notes"`
}
