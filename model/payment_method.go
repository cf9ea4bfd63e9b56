package model

import (
	"strings"

	"gorm.io/gorm"
)

// PaymentMethod is a named way of paying (cash, card, transfer). The method
// whose name matches the configured cash method exempts payments from
// requiring a card payment type.
type PaymentMethod struct {
	gorm.Model
	Name         string `json:"name" gorm:"not null;size:50"`
	Description  string `json:"description" gorm:"size:200"`
	Active       bool   `json:"active" gorm:"not null;default:true"`
	DisplayOrder *int   `json:"display_order" gorm:"default:null"`
}

// BeforeSave trims name and description so lookups by name stay reliable.
func (m *PaymentMethod) BeforeSave(tx *gorm.DB) error {
	m.Name = strings.TrimSpace(m.Name)
	m.Description = strings.TrimSpace(m.Description)
	return nil
}

// IsCashEquivalent compares the method name with the configured cash method,
// case-insensitively.
func (m *PaymentMethod) IsCashEquivalent(cashMethod string) bool {
	return strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(cashMethod))
}
