package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PackageValidityMonths is how long a purchased package stays usable after
// the purchase date.
const PackageValidityMonths = 6

// PurchasedPackage is one patient's purchase of one package type. The package
// carries its own balance of remaining appointments; scheduling consumes one
// unit, cancellation restores one.
type PurchasedPackage struct {
	gorm.Model
	PatientID             uint            `json:"patient_id" gorm:"not null;index"`
	PackageTypeID         uint            `json:"package_type_id" gorm:"not null;index"`
	PackageType           PackageType     `json:"package_type,omitempty" gorm:"foreignKey:PackageTypeID"`
	PaymentMethodID       uint            `json:"payment_method_id" gorm:"not null"`
	CardPaymentTypeID     *uint           `json:"card_payment_type_id" gorm:"default:null"`
	PurchaseDate          time.Time       `json:"purchase_date" gorm:"not null"`
	TotalAmount           decimal.Decimal `json:"total_amount" gorm:"not null;type:decimal(10,2)"`
	RemainingAppointments int             `json:"remaining_appointments" gorm:"not null"`
	ExpirationDate        time.Time       `json:"expiration_date" gorm:"not null"`
	PaidInFull            bool            `json:"paid_in_full" gorm:"not null;default:false"`
}

// IsValid reports whether the package can still be used for scheduling:
// it must have remaining appointments and now must be strictly before the
// expiration date. now == expiration counts as expired.
func (p *PurchasedPackage) IsValid(now time.Time) bool {
	return p.RemainingAppointments > 0 && now.Before(p.ExpirationDate)
}

// Consume takes one appointment off the package balance. Callers verify
// validity first; this guard keeps the balance from ever going negative.
func (p *PurchasedPackage) Consume() error {
	if p.RemainingAppointments <= 0 {
		return fmt.Errorf("no remaining appointments in package %d", p.ID)
	}
	p.RemainingAppointments--
	return nil
}

// Restore puts one appointment back on the balance after a cancellation.
// No upper bound is enforced; RestoredAboveAllotment lets callers flag the
// anomaly when restore pushes the balance past the original allotment.
func (p *PurchasedPackage) Restore() {
	p.RemainingAppointments++
}

// RestoredAboveAllotment reports whether the current balance exceeds the
// allotment of the given package type.
func (p *PurchasedPackage) RestoredAboveAllotment(packageType *PackageType) bool {
	return p.RemainingAppointments > packageType.NumberOfAppointments
}

// NewPurchasedPackage builds a purchase of packageType for a patient at now:
// full balance, six-month validity, nothing paid yet.
func NewPurchasedPackage(patientID uint, packageType *PackageType, paymentMethodID uint, cardPaymentTypeID *uint, now time.Time) PurchasedPackage {
	return PurchasedPackage{
		PatientID:             patientID,
		PackageTypeID:         packageType.ID,
		PaymentMethodID:       paymentMethodID,
		CardPaymentTypeID:     cardPaymentTypeID,
		PurchaseDate:          now,
		TotalAmount:           packageType.Price,
		RemainingAppointments: packageType.NumberOfAppointments,
		ExpirationDate:        now.AddDate(0, PackageValidityMonths, 0),
		PaidInFull:            false,
	}
}
