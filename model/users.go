package model

import (
	"time"

	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Name     string `json:"name"`
	Email    string `json:"email" gorm:"not null;uniqueIndex;size:191"`
	Password string `json:"-" gorm:"not null"`
	RoleID   uint   `json:"role_id" gorm:"not null;default:2"`
}

type Role struct {
	gorm.Model
	Name string `json:"name" gorm:"not null;uniqueIndex;size:50"`
}

type Session struct {
	gorm.Model
	UserID       uint      `json:"user_id" gorm:"not null;index"`
	SessionToken string    `json:"session_token" gorm:"not null;index;size:512"`
	IP           string    `json:"ip" gorm:"size:45"`
	UserAgent    string    `json:"user_agent" gorm:"size:512"`
	ExpiresAt    time.Time `json:"expires_at" gorm:"not null"`
}
