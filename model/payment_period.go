package model

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Payment period statuses. PAID and CANCELLED are terminal.
const (
	PeriodStatusPending   = "PENDING"
	PeriodStatusPaid      = "PAID"
	PeriodStatusCancelled = "CANCELLED"
)

// PaymentPeriodStatuses lists every recognized payment period status.
var PaymentPeriodStatuses = []string{
	PeriodStatusPending,
	PeriodStatusPaid,
	PeriodStatusCancelled,
}

// NutritionistPaymentPeriod is a payable window of completed appointments for
// one nutritionist. Totals are recomputed from the appointment table whenever
// the window changes while the period is still PENDING.
type NutritionistPaymentPeriod struct {
	gorm.Model
	NutritionistID    uint            `json:"nutritionist_id" gorm:"not null;index"`
	PeriodStartDate   time.Time       `json:"period_start_date" gorm:"not null"`
	PeriodEndDate     time.Time       `json:"period_end_date" gorm:"not null"`
	TotalAppointments int             `json:"total_appointments" gorm:"not null"`
	TotalAmount       decimal.Decimal `json:"total_amount" gorm:"not null;type:decimal(10,2)"`
	PaymentStatus     string          `json:"payment_status" gorm:"not null;size:20"`
	ProcessedDate     *time.Time      `json:"processed_date" gorm:"default:null"`
}

// IsValidPeriodStatus reports whether status belongs to the canonical set.
func IsValidPeriodStatus(status string) bool {
	for _, s := range PaymentPeriodStatuses {
		if s == status {
			return true
		}
	}
	return false
}
