package models

import (
	"time"
)

// SkillLevel is the minimum skill a course expects
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Course defines the course model based on the 'courses' table
type Course struct {
	ID                   int64            `json:"id" db:"id" example:"1"`
	Title                string           `json:"title" db:"title" example:"Front End Web Development"`
	Description          string           `json:"description" db:"description"`
	Weeks                string           `json:"weeks" db:"weeks" example:"8"`
	Tuition              float64          `json:"tuition" db:"tuition" example:"8000"`
	MinimumSkill         SkillLevel       `json:"minimumSkill" db:"minimum_skill" example:"beginner"`
	ScholarshipAvailable bool             `json:"scholarshipAvailable" db:"scholarship_available"`
	CreatedAt            time.Time        `json:"createdAt" db:"created_at"`
	BootcampID           int64            `json:"bootcampId" db:"bootcamp_id"`
	Bootcamp             *BootcampSummary `json:"bootcamp,omitempty"` // Relation, no db tag
	UserID               int64            `json:"user" db:"user_id"`
}

// CoursePatch carries the fields of a partial course update; nil means unchanged
type CoursePatch struct {
	Title                *string
	Description          *string
	Weeks                *string
	Tuition              *float64
	MinimumSkill         *SkillLevel
	ScholarshipAvailable *bool
}
