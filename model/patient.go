package model

import "gorm.io/gorm"

// Patient represents a patient of the practice
// @Description Patient information
type Patient struct {
	gorm.Model
	FirstName string `json:"first_name" gorm:"not null" example:"Maria"`
	LastName  string `json:"last_name" gorm:"not null" example:"Lopez"`
	Email     string `json:"email" gorm:"not null;uniqueIndex;size:100" example:"maria@example.com"`
	Phone     string `json:"phone" gorm:"size:10" example:"5512345678"`
	Active    bool   `json:"active" gorm:"not null;default:true"`
}

// UpdatePatientRequest carries the editable patient fields
type UpdatePatientRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}
