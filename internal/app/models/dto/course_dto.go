package dto

import "github.com/yigit/devcamper/internal/app/models"

// CreateCourseRequest represents the payload for adding a course to a bootcamp
type CreateCourseRequest struct {
	Title                string            `json:"title" binding:"required"`
	Description          string            `json:"description" binding:"required"`
	Weeks                string            `json:"weeks" binding:"required"`
	Tuition              *float64          `json:"tuition" binding:"required,min=0"`
	MinimumSkill         models.SkillLevel `json:"minimumSkill" binding:"required,oneof=beginner intermediate advanced"`
	ScholarshipAvailable bool              `json:"scholarshipAvailable"`
}

// UpdateCourseRequest represents a partial course update
type UpdateCourseRequest struct {
	Title                *string            `json:"title" binding:"omitempty,min=1"`
	Description          *string            `json:"description" binding:"omitempty,min=1"`
	Weeks                *string            `json:"weeks" binding:"omitempty,min=1"`
	Tuition              *float64           `json:"tuition" binding:"omitempty,min=0"`
	MinimumSkill         *models.SkillLevel `json:"minimumSkill" binding:"omitempty,oneof=beginner intermediate advanced"`
	ScholarshipAvailable *bool              `json:"scholarshipAvailable"`
}

// ToPatch converts the request into a repository patch
func (r *UpdateCourseRequest) ToPatch() *models.CoursePatch {
	return &models.CoursePatch{
		Title:                r.Title,
		Description:          r.Description,
		Weeks:                r.Weeks,
		Tuition:              r.Tuition,
		MinimumSkill:         r.MinimumSkill,
		ScholarshipAvailable: r.ScholarshipAvailable,
	}
}
