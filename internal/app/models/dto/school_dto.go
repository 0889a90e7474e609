package dto

// AddressRequest creates an address
type AddressRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

// TeachingRequest creates or renames a teaching
type TeachingRequest struct {
	Name string `json:"name" binding:"required,min=2,max=50"`
}

// AssignTeachingsRequest links teachings to an address
type AssignTeachingsRequest struct {
	TeachingIDs []int64 `json:"teachingIds" binding:"required,min=1,dive,gt=0"`
}

// ClassRequest creates or edits a class
type ClassRequest struct {
	AddressID    int64  `json:"addressId" binding:"required,gt=0"`
	Name         string `json:"name" binding:"required,min=1,max=20"`
	AcademicYear int    `json:"academicYear" binding:"required,gte=1990,lte=2100"`
}

// EnrollStudentRequest adds a student to a class
type EnrollStudentRequest struct {
	StudentID int64 `json:"studentId" binding:"required,gt=0"`
}

// AssignTeacherRequest assigns a teacher to a class for a teaching
type AssignTeacherRequest struct {
	TeacherID  int64 `json:"teacherId" binding:"required,gt=0"`
	TeachingID int64 `json:"teachingId" binding:"required,gt=0"`
}

// RegisterEntryRequest is one student's attendance for the day
type RegisterEntryRequest struct {
	StudentID int64   `json:"studentId" binding:"required,gt=0"`
	Absent    bool    `json:"absent"`
	EntryTime *string `json:"entryTime" binding:"omitempty,entrytime"`
}

// SaveRegisterRequest saves the class register for a day
type SaveRegisterRequest struct {
	Date    string                 `json:"date" binding:"required,isodate"`
	Entries []RegisterEntryRequest `json:"entries" binding:"dive"`
}

// UpdateDelayRequest edits a delay's entry time
type UpdateDelayRequest struct {
	EntryTime string `json:"entryTime" binding:"required,entrytime"`
}

// JustificationRequest justifies an absence
type JustificationRequest struct {
	AbsenceID int64  `json:"absenceId" binding:"required,gt=0"`
	Date      string `json:"date" binding:"required,isodate"`
	Reason    string `json:"reason" binding:"required,min=3,max=500"`
}

// UpdateJustificationRequest edits a justification's reason
type UpdateJustificationRequest struct {
	Reason string `json:"reason" binding:"required,min=3,max=500"`
}

// NoteRequest records a disciplinary note
type NoteRequest struct {
	StudentID   int64  `json:"studentId" binding:"required,gt=0"`
	ClassID     int64  `json:"classId" binding:"required,gt=0"`
	Date        string `json:"date" binding:"required,isodate"`
	Description string `json:"description" binding:"required,min=5,max=500"`
}

// UpdateNoteRequest edits a note's description
type UpdateNoteRequest struct {
	Description string `json:"description" binding:"required,min=5,max=500"`
}

// GradeRequest is a mark for one teaching
type GradeRequest struct {
	TeachingID int64 `json:"teachingId" binding:"required,gt=0"`
	Mark       int   `json:"mark" binding:"required,gte=1,lte=10"`
}

// ReportCardRequest inserts a report card
type ReportCardRequest struct {
	StudentID int64          `json:"studentId" binding:"required,gt=0"`
	ClassID   int64          `json:"classId" binding:"required,gt=0"`
	Term      string         `json:"term" binding:"required,oneof=FIRST SECOND"`
	Grades    []GradeRequest `json:"grades" binding:"required,min=1,dive"`
}

// UpdateGradesRequest replaces a report card's grades
type UpdateGradesRequest struct {
	Grades []GradeRequest `json:"grades" binding:"required,min=1,dive"`
}

// EnrollmentSubmitRequest is a public registration request
type EnrollmentSubmitRequest struct {
	Login     string  `json:"login" binding:"required,login"`
	Email     string  `json:"email" binding:"required,email,max=100"`
	Password  string  `json:"password" binding:"required,password"`
	FirstName string  `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string  `json:"lastName" binding:"required,min=2,max=50"`
	Cell      *string `json:"cell" binding:"omitempty,phone"`
}

// MonitoringQuery filters the student monitoring search
type MonitoringQuery struct {
	Absences     *int `form:"absences" binding:"omitempty,gte=0"`
	Notes        *int `form:"notes" binding:"omitempty,gte=0"`
	AcademicYear int  `form:"year" binding:"omitempty,gte=1990,lte=2100"`
}
