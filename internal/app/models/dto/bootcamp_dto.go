package dto

import "github.com/yigit/devcamper/internal/app/models"

// CreateBootcampRequest represents the payload for creating a bootcamp.
// Address is geocoded into a location and not stored.
type CreateBootcampRequest struct {
	Name          string   `json:"name" binding:"required,max=50"`
	Description   string   `json:"description" binding:"required,max=500"`
	Website       string   `json:"website" binding:"omitempty,url"`
	Phone         string   `json:"phone" binding:"omitempty,max=20,phone"`
	Email         string   `json:"email" binding:"omitempty,email"`
	Address       string   `json:"address" binding:"required"`
	Careers       []string `json:"careers" binding:"required,min=1,dive,career"`
	AverageRating *float64 `json:"averageRating" binding:"omitempty,min=1,max=10"`
	Housing       bool     `json:"housing"`
	JobAssistance bool     `json:"jobAssistance"`
	JobGuarantee  bool     `json:"jobGuarantee"`
	AcceptGi      bool     `json:"acceptGi"`
}

// UpdateBootcampRequest represents a partial bootcamp update
type UpdateBootcampRequest struct {
	Name          *string  `json:"name" binding:"omitempty,min=1,max=50"`
	Description   *string  `json:"description" binding:"omitempty,min=1,max=500"`
	Website       *string  `json:"website" binding:"omitempty,url"`
	Phone         *string  `json:"phone" binding:"omitempty,max=20,phone"`
	Email         *string  `json:"email" binding:"omitempty,email"`
	Address       *string  `json:"address" binding:"omitempty,min=1"`
	Careers       []string `json:"careers" binding:"omitempty,min=1,dive,career"`
	AverageRating *float64 `json:"averageRating" binding:"omitempty,min=1,max=10"`
	Housing       *bool    `json:"housing"`
	JobAssistance *bool    `json:"jobAssistance"`
	JobGuarantee  *bool    `json:"jobGuarantee"`
	AcceptGi      *bool    `json:"acceptGi"`
}

// ToPatch converts the request into a repository patch. Slug and location
// are derived by the service.
func (r *UpdateBootcampRequest) ToPatch() *models.BootcampPatch {
	return &models.BootcampPatch{
		Name:          r.Name,
		Description:   r.Description,
		Website:       r.Website,
		Phone:         r.Phone,
		Email:         r.Email,
		Careers:       r.Careers,
		AverageRating: r.AverageRating,
		Housing:       r.Housing,
		JobAssistance: r.JobAssistance,
		JobGuarantee:  r.JobGuarantee,
		AcceptGi:      r.AcceptGi,
	}
}

// PhotoResponse is returned after a successful photo upload
type PhotoResponse struct {
	Photo string `json:"photo" example:"photo_1.jpg"`
}
