package dto

import "github.com/monchobi/artschool/internal/app/models"

// SubmitClassRequest is the body of POST /submissions.
type SubmitClassRequest struct {
	Title          string `json:"title" binding:"required,min=2,max=200"`
	Description    string `json:"description" binding:"max=4000"`
	ImageURL       string `json:"imageUrl" binding:"omitempty,url"`
	InstructorName string `json:"instructorName" binding:"required,max=120"`
	Price          int64  `json:"price" binding:"min=0"`
	SeatsAvailable int    `json:"seatsAvailable" binding:"min=0"`
}

// ToDetails converts the request into submission details.
func (r SubmitClassRequest) ToDetails() models.ClassDetails {
	return models.ClassDetails{
		Title:          r.Title,
		Description:    r.Description,
		ImageURL:       r.ImageURL,
		InstructorName: r.InstructorName,
		Price:          r.Price,
		SeatsAvailable: r.SeatsAvailable,
	}
}

// ImageUploadResponse is returned by POST /submissions/images.
type ImageUploadResponse struct {
	URL string `json:"url"`
}

// SetStatusRequest is the body of PUT /submissions/:id/status.
type SetStatusRequest struct {
	Status string `json:"status" binding:"required,classstatus" example:"approved"`
}

// SetFeedbackRequest is the body of PUT /submissions/:id/feedback.
type SetFeedbackRequest struct {
	Feedback string `json:"feedback" binding:"max=4000"`
}
