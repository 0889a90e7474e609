package models

import (
	"time"
)

// SiteKind distinguishes cultural objects from refreshment points
type SiteKind string

const (
	SiteCulturalObject   SiteKind = "CULTURAL_OBJECT"
	SiteRefreshmentPoint SiteKind = "REFRESHMENT_POINT"
)

// IsValid reports whether k is a known site kind
func (k SiteKind) IsValid() bool {
	return k == SiteCulturalObject || k == SiteRefreshmentPoint
}

// Site is a place tourists can visit and rate
type Site struct {
	ID           int64     `json:"id" db:"id"`
	Kind         SiteKind  `json:"kind" db:"kind"`
	Name         string    `json:"name" db:"name"`
	Description  string    `json:"description" db:"description"`
	City         string    `json:"city" db:"city"`
	Street       string    `json:"street" db:"street"`
	Latitude     float64   `json:"latitude" db:"latitude"`
	Longitude    float64   `json:"longitude" db:"longitude"`
	Phone        *string   `json:"phone,omitempty" db:"phone"`
	Seats        *int      `json:"seats,omitempty" db:"seats"`
	TicketPrice  *float64  `json:"ticketPrice,omitempty" db:"ticket_price"`
	OpeningHours *string   `json:"openingHours,omitempty" db:"opening_hours"`
	OperatorID   *int64    `json:"operatorId,omitempty" db:"operator_id"`
	AverageVote  float64   `json:"averageVote" db:"average_vote"`
	Tags         []Tag     `json:"tags,omitempty"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt    time.Time `json:"updatedAt" db:"updated_at"`
}

// SiteFilter narrows site searches
type SiteFilter struct {
	Kind   SiteKind
	Search string
	City   string
	TagIDs []int64
	Offset uint64
	Limit  int
}

// NearbySite is a site with its distance from the search origin
type NearbySite struct {
	Site
	DistanceKm float64 `json:"distanceKm"`
}

// VisitedSite is a site a tourist has rated, with the vote they gave
type VisitedSite struct {
	Site
	Vote      int       `json:"vote"`
	VisitedAt time.Time `json:"visitedAt"`
}

// Tag classifies sites
type Tag struct {
	ID          int64  `json:"id" db:"id"`
	Name        string `json:"name" db:"name"`
	Description string `json:"description,omitempty" db:"description"`
}

// Banner is an advertising image attached to a refreshment point
type Banner struct {
	ID        int64     `json:"id" db:"id"`
	SiteID    int64     `json:"siteId" db:"site_id"`
	ImageURL  string    `json:"imageUrl" db:"image_url"`
	Width     int       `json:"width" db:"width"`
	Height    int       `json:"height" db:"height"`
	SizeBytes int64     `json:"sizeBytes" db:"size_bytes"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// Feedback is a tourist's rating of a site
type Feedback struct {
	ID        int64     `json:"id" db:"id"`
	SiteID    int64     `json:"siteId" db:"site_id"`
	TouristID int64     `json:"touristId" db:"tourist_id"`
	Vote      int       `json:"vote" db:"vote"`
	Comment   string    `json:"comment" db:"comment"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// ConventionStatus is the lifecycle of an agency/point agreement
type ConventionStatus string

const (
	ConventionPending  ConventionStatus = "PENDING"
	ConventionActive   ConventionStatus = "ACTIVE"
	ConventionExpired  ConventionStatus = "EXPIRED"
	ConventionRejected ConventionStatus = "REJECTED"
)

// Convention is a discount agreement between the agency and a refreshment point
type Convention struct {
	ID          int64            `json:"id" db:"id"`
	SiteID      int64            `json:"siteId" db:"site_id"`
	StartDate   time.Time        `json:"startDate" db:"start_date"`
	EndDate     time.Time        `json:"endDate" db:"end_date"`
	Discount    int              `json:"discount" db:"discount"`
	Description string           `json:"description" db:"description"`
	Status      ConventionStatus `json:"status" db:"status"`
	RequestedBy int64            `json:"requestedBy" db:"requested_by"`
	DecidedBy   *int64           `json:"decidedBy,omitempty" db:"decided_by"`
	CreatedAt   time.Time        `json:"createdAt" db:"created_at"`
	DecidedAt   *time.Time       `json:"decidedAt,omitempty" db:"decided_at"`
}

// MenuDay is the menu of a refreshment point for one weekday (1 = Monday .. 7 = Sunday)
type MenuDay struct {
	SiteID    int64    `json:"siteId" db:"site_id"`
	DayOfWeek int      `json:"dayOfWeek" db:"day_of_week"`
	Items     []string `json:"items" db:"items"`
}

// GenericPreferences are UI preferences of a tourist
type GenericPreferences struct {
	UserID   int64  `json:"userId" db:"user_id"`
	Language string `json:"language" db:"language"`
	FontSize int    `json:"fontSize" db:"font_size"`
	Theme    string `json:"theme" db:"theme"`
}

// DefaultGenericPreferences is used until a tourist saves their own
func DefaultGenericPreferences(userID int64) GenericPreferences {
	return GenericPreferences{UserID: userID, Language: "en", FontSize: 14, Theme: "light"}
}

// PointStatistics aggregates activity for a refreshment point
type PointStatistics struct {
	SiteID           int64       `json:"siteId"`
	FeedbackCount    int         `json:"feedbackCount"`
	AverageVote      float64     `json:"averageVote"`
	VoteDistribution map[int]int `json:"voteDistribution"`
	BookmarkCount    int         `json:"bookmarkCount"`
	BannerCount      int         `json:"bannerCount"`
	ActiveConvention *Convention `json:"activeConvention,omitempty"`
}
