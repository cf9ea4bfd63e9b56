package model

import "gorm.io/gorm"

// Nutritionist represents a practicing nutritionist
// @Description Nutritionist information
type Nutritionist struct {
	gorm.Model
	FirstName string `json:"first_name" gorm:"not null" example:"Ana"`
	LastName  string `json:"last_name" gorm:"not null" example:"Torres"`
	Email     string `json:"email" gorm:"not null;uniqueIndex;size:100" example:"ana@example.com"`
	Phone     string `json:"phone" gorm:"size:10" example:"5587654321"`
	Active    bool   `json:"active" gorm:"not null;default:true"`
}

// UpdateNutritionistRequest carries the editable nutritionist fields
type UpdateNutritionistRequest struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}
