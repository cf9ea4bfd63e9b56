package model

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Canonical appointment statuses. The schema stores plain strings but every
// write path validates against this set, so no other value ever persists.
const (
	StatusScheduled   = "SCHEDULED"
	StatusCompleted   = "COMPLETED"
	StatusCancelled   = "CANCELLED"
	StatusRescheduled = "RESCHEDULED"
	StatusNoShow      = "NO_SHOW"
)

// AppointmentStatuses lists every recognized appointment status.
var AppointmentStatuses = []string{
	StatusScheduled,
	StatusCompleted,
	StatusCancelled,
	StatusRescheduled,
	StatusNoShow,
}

// Appointment links one purchased package with one nutritionist at a point
// in time. Creating an appointment consumes one unit of the package balance;
// cancelling restores it.
type Appointment struct {
	gorm.Model
	PurchasedPackageID  uint             `json:"purchased_package_id" gorm:"not null;index"`
	PurchasedPackage    PurchasedPackage `json:"purchased_package,omitempty" gorm:"foreignKey:PurchasedPackageID"`
	NutritionistID      uint             `json:"nutritionist_id" gorm:"not null;index"`
	AppointmentDateTime time.Time        `json:"appointment_date_time" gorm:"not null;index"`
	Status              string           `json:"status" gorm:"not null;size:20"`
	Notes               string           `json:"notes" gorm:"type:text"`
}

// IsValidStatus reports whether status belongs to the canonical set.
func IsValidStatus(status string) bool {
	for _, s := range AppointmentStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether no further transitions are accepted.
func IsTerminalStatus(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// ValidateStatusTransition enforces the appointment state machine:
// COMPLETED and CANCELLED are terminal, and a no-show cannot be moved back
// to SCHEDULED.
func ValidateStatusTransition(current, next string) error {
	if IsTerminalStatus(current) {
		return fmt.Errorf("cannot update status of %s appointment", current)
	}
	if current == StatusNoShow && next == StatusScheduled {
		return fmt.Errorf("cannot change status from %s to %s", StatusNoShow, StatusScheduled)
	}
	return nil
}

// IsCancellable reports whether a cancel call is accepted from this status.
func (a *Appointment) IsCancellable() bool {
	return !IsTerminalStatus(a.Status)
}

// AppointmentNote is a follow-up note attached to an appointment after the
// consultation.
type AppointmentNote struct {
	gorm.Model
	AppointmentID uint   `json:"appointment_id" gorm:"not null;index"`
	Note          string `json:"note" gorm:"not null;type:text"`
}

// PatientAppointmentRow is the flattened read shape for a patient's
// appointment history, joining the nutritionist and package names.
type PatientAppointmentRow struct {
	AppointmentID       uint      `json:"appointment_id" gorm:"column:appointment_id"`
	PatientID           uint      `json:"patient_id" gorm:"column:patient_id"`
	NutritionistID      uint      `json:"nutritionist_id" gorm:"column:nutritionist_id"`
	NutritionistName    string    `json:"nutritionist_name" gorm:"column:nutritionist_name"`
	PackageName         string    `json:"package_name" gorm:"column:package_name"`
	AppointmentDateTime time.Time `json:"appointment_date_time" gorm:"column:appointment_date_time"`
	Status              string    `json:"status" gorm:"column:status"`
}
