package dto

// SiteRequest creates or modifies a cultural object or refreshment point
type SiteRequest struct {
	Name         string   `json:"name" binding:"required,min=2,max=100"`
	Description  string   `json:"description" binding:"max=1000"`
	City         string   `json:"city" binding:"required,min=2,max=50"`
	Street       string   `json:"street" binding:"max=100"`
	Latitude     float64  `json:"latitude" binding:"gte=-90,lte=90"`
	Longitude    float64  `json:"longitude" binding:"gte=-180,lte=180"`
	Phone        *string  `json:"phone" binding:"omitempty,phone"`
	Seats        *int     `json:"seats" binding:"omitempty,gte=0"`
	TicketPrice  *float64 `json:"ticketPrice" binding:"omitempty,gte=0"`
	OpeningHours *string  `json:"openingHours" binding:"omitempty,max=100"`
	OperatorID   *int64   `json:"operatorId" binding:"omitempty,gt=0"`
}

// SiteSearchQuery filters the site search
type SiteSearchQuery struct {
	Kind   string  `form:"kind" binding:"omitempty,oneof=CULTURAL_OBJECT REFRESHMENT_POINT"`
	Search string  `form:"q" binding:"max=100"`
	City   string  `form:"city" binding:"max=50"`
	TagIDs []int64 `form:"tag" binding:"dive,gt=0"`
}

// NearbyQuery locates sites around a point
type NearbyQuery struct {
	Latitude  *float64 `form:"lat" binding:"required,gte=-90,lte=90"`
	Longitude *float64 `form:"lon" binding:"required,gte=-180,lte=180"`
	RadiusKm  float64  `form:"radius" binding:"omitempty,gt=0,lte=50"`
	Kind      string   `form:"kind" binding:"omitempty,oneof=CULTURAL_OBJECT REFRESHMENT_POINT"`
}

// TagRequest creates or modifies a tag
type TagRequest struct {
	Name        string `json:"name" binding:"required,tagname"`
	Description string `json:"description" binding:"max=200"`
}

// NewsRequest creates or modifies a news item
type NewsRequest struct {
	Title     string `json:"title" binding:"required,min=2,max=200"`
	Content   string `json:"content" binding:"required,max=5000"`
	Category  string `json:"category" binding:"required,min=2,max=50"`
	Published bool   `json:"published"`
}

// SiteTagsRequest attaches tags to a site
type SiteTagsRequest struct {
	TagIDs []int64 `json:"tagIds" binding:"required,min=1,dive,gt=0"`
}

// FeedbackRequest releases feedback on a site
type FeedbackRequest struct {
	Vote    int    `json:"vote" binding:"required,gte=1,lte=5"`
	Comment string `json:"comment" binding:"max=500"`
}

// UpdateFeedbackRequest modifies a feedback comment
type UpdateFeedbackRequest struct {
	Comment string `json:"comment" binding:"required,max=500"`
}

// ConventionRequest asks the agency for a convention
type ConventionRequest struct {
	StartDate   string `json:"startDate" binding:"required,isodate"`
	EndDate     string `json:"endDate" binding:"required,isodate"`
	Discount    int    `json:"discount" binding:"required,gte=1,lte=100"`
	Description string `json:"description" binding:"max=500"`
}

// MenuDayRequest replaces the menu of one weekday
type MenuDayRequest struct {
	Items []string `json:"items" binding:"required,min=1,max=30,dive,min=1,max=100"`
}

// TouristRegistrationRequest is the public tourist sign-up
type TouristRegistrationRequest struct {
	Login     string `json:"login" binding:"required,login"`
	Email     string `json:"email" binding:"required,email,max=100"`
	Password  string `json:"password" binding:"required,password"`
	FirstName string `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string `json:"lastName" binding:"required,min=2,max=50"`
	BirthDate string `json:"birthDate" binding:"required,isodate"`
	City      string `json:"city" binding:"required,min=2,max=50"`
	Address   string `json:"address" binding:"required,min=2,max=100"`
	Phone     string `json:"phone" binding:"required,phone"`
}

// UpdateTouristRequest modifies a tourist's card
type UpdateTouristRequest struct {
	Email     string `json:"email" binding:"required,email,max=100"`
	FirstName string `json:"firstName" binding:"required,min=2,max=50"`
	LastName  string `json:"lastName" binding:"required,min=2,max=50"`
	City      string `json:"city" binding:"required,min=2,max=50"`
	Address   string `json:"address" binding:"required,min=2,max=100"`
	Phone     string `json:"phone" binding:"required,phone"`
}

// SearchPreferencesRequest replaces the tourist's preferred tags
type SearchPreferencesRequest struct {
	TagIDs []int64 `json:"tagIds" binding:"dive,gt=0"`
}

// GenericPreferencesRequest sets UI preferences
type GenericPreferencesRequest struct {
	Language string `json:"language" binding:"required,oneof=en it de fr es"`
	FontSize int    `json:"fontSize" binding:"required,gte=10,lte=24"`
	Theme    string `json:"theme" binding:"required,oneof=light dark"`
}
