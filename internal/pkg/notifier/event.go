package notifier

import (
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/yigit/agora/internal/pkg/websocket"
)

// Kind identifies a notification event
type Kind string

const (
	KindAbsenceRecorded     Kind = "absence.recorded"
	KindNoteRecorded        Kind = "note.recorded"
	KindEnrollmentAccepted  Kind = "enrollment.accepted"
	KindEnrollmentRejected  Kind = "enrollment.rejected"
	KindMonitoringReport    Kind = "monitoring.report"
	KindBannerInserted      Kind = "banner.inserted"
	KindFeedbackInserted    Kind = "feedback.inserted"
	KindConventionRequested Kind = "convention.requested"
	KindConventionDecided   Kind = "convention.decided"
	KindNewsPublished       Kind = "news.published"
)

// Recipient is an e-mail addressee
type Recipient struct {
	Email string
	Name  string
}

// Event is a notification produced by a service
type Event struct {
	Kind Kind

	// Feed topic, empty when the event is e-mail only
	Topic string

	// E-mail addressees, empty when the event is feed only
	Recipients []Recipient

	Subject string
	Body    string

	// Data pushed to feed subscribers
	Payload any
}

func paragraph(format string, args ...any) string {
	for i, a := range args {
		if s, ok := a.(string); ok {
			args[i] = html.EscapeString(s)
		}
	}
	return "<p>" + fmt.Sprintf(format, args...) + "</p>"
}

// AbsenceRecorded tells parents a student was marked absent
func AbsenceRecorded(parents []Recipient, studentID int64, studentName string, classID int64, day time.Time) Event {
	date := day.Format(time.DateOnly)
	return Event{
		Kind:       KindAbsenceRecorded,
		Topic:      websocket.TopicSMOS,
		Recipients: parents,
		Subject:    "Absence recorded for " + studentName,
		Body:       paragraph("%s was recorded absent on %s.", studentName, date),
		Payload: map[string]any{
			"studentId": studentID,
			"classId":   classID,
			"date":      date,
		},
	}
}

// NoteRecorded tells parents a disciplinary note was written
func NoteRecorded(parents []Recipient, studentID int64, studentName string, noteID int64, description string, day time.Time) Event {
	date := day.Format(time.DateOnly)
	return Event{
		Kind:       KindNoteRecorded,
		Topic:      websocket.TopicSMOS,
		Recipients: parents,
		Subject:    "Disciplinary note for " + studentName,
		Body:       paragraph("A note was recorded for %s on %s: %s", studentName, date, description),
		Payload: map[string]any{
			"studentId": studentID,
			"noteId":    noteID,
			"date":      date,
		},
	}
}

// EnrollmentDecided informs an applicant about the outcome of their request
func EnrollmentDecided(applicant Recipient, requestID int64, accepted bool, login string) Event {
	ev := Event{
		Topic:      websocket.TopicSMOS,
		Recipients: []Recipient{applicant},
		Payload: map[string]any{
			"requestId": requestID,
			"accepted":  accepted,
		},
	}
	if accepted {
		ev.Kind = KindEnrollmentAccepted
		ev.Subject = "Your enrollment was accepted"
		ev.Body = paragraph("Welcome %s, you can now sign in with the login %s.", applicant.Name, login)
	} else {
		ev.Kind = KindEnrollmentRejected
		ev.Subject = "Your enrollment was rejected"
		ev.Body = paragraph("Dear %s, your enrollment request could not be accepted.", applicant.Name)
	}
	return ev
}

// MonitoringLine is one row of the monitoring report
type MonitoringLine struct {
	Name     string
	Absences int
	Notes    int
}

// MonitoringReport sends the monitored students list to administrators
func MonitoringReport(admins []Recipient, academicYear, absences, notes int, lines []MonitoringLine) Event {
	var b strings.Builder
	b.WriteString(paragraph("Students with at least %d absences and %d notes in %d/%d:", absences, notes, academicYear, academicYear+1))
	if len(lines) == 0 {
		b.WriteString(paragraph("none"))
	} else {
		b.WriteString("<ul>")
		for _, l := range lines {
			fmt.Fprintf(&b, "<li>%s: %d absences, %d notes</li>", html.EscapeString(l.Name), l.Absences, l.Notes)
		}
		b.WriteString("</ul>")
	}

	return Event{
		Kind:       KindMonitoringReport,
		Topic:      websocket.TopicSMOS,
		Recipients: admins,
		Subject:    fmt.Sprintf("Student monitoring report %d/%d", academicYear, academicYear+1),
		Body:       b.String(),
		Payload: map[string]any{
			"academicYear": academicYear,
			"students":     len(lines),
		},
	}
}

// BannerInserted is a feed-only event for agency staff
func BannerInserted(siteID, bannerID int64, siteName string) Event {
	return Event{
		Kind:    KindBannerInserted,
		Topic:   websocket.TopicETour,
		Subject: "New banner for " + siteName,
		Payload: map[string]any{"siteId": siteID, "bannerId": bannerID},
	}
}

// FeedbackInserted is a feed-only event for agency staff
func FeedbackInserted(siteID, feedbackID int64, siteName string, vote int) Event {
	return Event{
		Kind:    KindFeedbackInserted,
		Topic:   websocket.TopicETour,
		Subject: fmt.Sprintf("New %d-star feedback for %s", vote, siteName),
		Payload: map[string]any{"siteId": siteID, "feedbackId": feedbackID, "vote": vote},
	}
}

// ConventionRequested notifies agency operators about a pending convention
func ConventionRequested(agency []Recipient, siteID, conventionID int64, siteName string, start, end time.Time) Event {
	return Event{
		Kind:       KindConventionRequested,
		Topic:      websocket.TopicETour,
		Recipients: agency,
		Subject:    "Convention requested by " + siteName,
		Body: paragraph("%s requested a convention from %s to %s.",
			siteName, start.Format(time.DateOnly), end.Format(time.DateOnly)),
		Payload: map[string]any{"siteId": siteID, "conventionId": conventionID},
	}
}

// ConventionDecided notifies the requesting operator of the decision
func ConventionDecided(operator Recipient, siteID, conventionID int64, siteName, status string) Event {
	return Event{
		Kind:       KindConventionDecided,
		Topic:      websocket.TopicETour,
		Recipients: []Recipient{operator},
		Subject:    "Convention " + strings.ToLower(status),
		Body:       paragraph("The convention for %s is now %s.", siteName, status),
		Payload:    map[string]any{"siteId": siteID, "conventionId": conventionID, "status": status},
	}
}

// NewsPublished is a feed-only event announcing a published news item
func NewsPublished(newsID int64, title, category string) Event {
	return Event{
		Kind:    KindNewsPublished,
		Topic:   websocket.TopicETour,
		Subject: "News: " + title,
		Payload: map[string]any{"newsId": newsID, "category": category},
	}
}
