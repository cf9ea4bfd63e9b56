package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PatientPayment is one payment event recorded against a purchased package.
// PaymentDate is always set server-side.
type PatientPayment struct {
	gorm.Model
	PurchasedPackageID uint            `json:"purchased_package_id" gorm:"not null;index"`
	PaymentMethodID    uint            `json:"payment_method_id" gorm:"not null"`
	CardPaymentTypeID  *uint           `json:"card_payment_type_id" gorm:"default:null"`
	TotalPaid          decimal.Decimal `json:"total_paid" gorm:"not null;type:decimal(10,2)"`
	PaymentDate        time.Time       `json:"payment_date" gorm:"not null"`
}

// SumPayments adds up the TotalPaid of a payment history; zero when empty.
func SumPayments(payments []PatientPayment) decimal.Decimal {
	total := decimal.Zero
	for _, p := range payments {
		total = total.Add(p.TotalPaid)
	}
	return total
}
