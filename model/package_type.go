package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PackageType is a catalog entry describing a sellable block of appointments.
// NutritionistRate is the absolute amount paid to the nutritionist for each
// completed appointment booked against a package of this type.
type PackageType struct {
	gorm.Model
	Name                 string          `json:"name" gorm:"not null;size:50" example:"Seguimiento x5"`
	Description          string          `json:"description" gorm:"size:200"`
	NumberOfAppointments int             `json:"number_of_appointments" gorm:"not null" example:"5"`
	IsBundle             bool            `json:"is_bundle" gorm:"not null;default:false"`
	Price                decimal.Decimal `json:"price" gorm:"not null;type:decimal(10,2)" example:"1500.00"`
	NutritionistRate     decimal.Decimal `json:"nutritionist_rate" gorm:"not null;type:decimal(10,2)" example:"200.00"`
	Active               bool            `json:"active" gorm:"not null;default:true"`
}

// PackageTypeSelect is the reduced shape used by dropdowns.
type PackageTypeSelect struct {
	ID    uint            `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
