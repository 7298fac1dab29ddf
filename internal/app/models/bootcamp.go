package models

import (
	"time"
)

// DefaultPhoto is stored for bootcamps that never had a photo uploaded
const DefaultPhoto = "no-photo.jpg"

// Careers a bootcamp may list
var Careers = []string{
	"Web Development",
	"Mobile Development",
	"UI/UX",
	"Data Science",
	"Business",
	"Other",
}

// IsCareer reports whether s is one of the allowed careers
func IsCareer(s string) bool {
	for _, c := range Careers {
		if c == s {
			return true
		}
	}
	return false
}

// GeoLocation is a GeoJSON point enriched with the geocoder's address parts
type GeoLocation struct {
	Type             string     `json:"type" example:"Point"`
	Coordinates      [2]float64 `json:"coordinates"` // [longitude, latitude]
	FormattedAddress string     `json:"formattedAddress,omitempty"`
	Street           string     `json:"street,omitempty"`
	City             string     `json:"city,omitempty"`
	State            string     `json:"state,omitempty"`
	Zipcode          string     `json:"zipcode,omitempty"`
	Country          string     `json:"country,omitempty"`
}

// Longitude of the point
func (l *GeoLocation) Longitude() float64 { return l.Coordinates[0] }

// Latitude of the point
func (l *GeoLocation) Latitude() float64 { return l.Coordinates[1] }

// NewPoint builds a GeoJSON point from longitude and latitude
func NewPoint(lng, lat float64) *GeoLocation {
	return &GeoLocation{Type: "Point", Coordinates: [2]float64{lng, lat}}
}

// Bootcamp defines the bootcamp model based on the 'bootcamps' table
type Bootcamp struct {
	ID            int64        `json:"id" db:"id" example:"1"`
	Name          string       `json:"name" db:"name" example:"Devworks Bootcamp"`
	Slug          string       `json:"slug" db:"slug" example:"devworks-bootcamp"`
	Description   string       `json:"description" db:"description"`
	Website       string       `json:"website,omitempty" db:"website"`
	Phone         string       `json:"phone,omitempty" db:"phone"`
	Email         string       `json:"email,omitempty" db:"email"`
	Location      *GeoLocation `json:"location"`
	Careers       []string     `json:"careers" db:"careers"`
	AverageRating *float64     `json:"averageRating,omitempty" db:"average_rating"`
	AverageCost   *float64     `json:"averageCost,omitempty" db:"average_cost"`
	Photo         string       `json:"photo" db:"photo"`
	Housing       bool         `json:"housing" db:"housing"`
	JobAssistance bool         `json:"jobAssistance" db:"job_assistance"`
	JobGuarantee  bool         `json:"jobGuarantee" db:"job_guarantee"`
	AcceptGi      bool         `json:"acceptGi" db:"accept_gi"`
	CreatedAt     time.Time    `json:"createdAt" db:"created_at"`
	UserID        int64        `json:"user" db:"user_id"`
}

// BootcampPatch carries the fields of a partial bootcamp update; nil means unchanged
type BootcampPatch struct {
	Name          *string
	Slug          *string
	Description   *string
	Website       *string
	Phone         *string
	Email         *string
	Location      *GeoLocation
	Careers       []string
	AverageRating *float64
	Housing       *bool
	JobAssistance *bool
	JobGuarantee  *bool
	AcceptGi      *bool
}

// BootcampSummary is the slice of a bootcamp embedded in course responses
type BootcampSummary struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}
