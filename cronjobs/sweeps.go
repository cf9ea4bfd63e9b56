package cronjobs

import (
	"fmt"
	"log"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/go-co-op/gocron"
	"gorm.io/gorm"
)

// Sweeper runs the periodic read-only sweeps: appointment reminders for the
// front desk and a heads-up for packages about to expire with balance left.
type Sweeper struct {
	DB *gorm.DB
}

func NewSweeper(db *gorm.DB) *Sweeper {
	return &Sweeper{DB: db}
}

// Start schedules both sweeps and returns the running scheduler so main can
// stop it on shutdown.
func (s *Sweeper) Start() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(15).Minutes().Do(func() {
		if err := s.SweepUpcomingAppointments(); err != nil {
			log.Printf("appointment reminder sweep failed: %v", err)
		}
	})
	scheduler.Every(24).Hours().Do(func() {
		if err := s.SweepExpiringPackages(); err != nil {
			log.Printf("package expiry sweep failed: %v", err)
		}
	})

	scheduler.StartAsync()
	log.Println("background sweeps started")

	return scheduler
}

// upcomingAppointments returns scheduled appointments starting within the
// window [now, now+window).
func upcomingAppointments(db *gorm.DB, now time.Time, window time.Duration) ([]model.Appointment, error) {
	var appointments []model.Appointment
	err := db.Where("status = ? AND appointment_date_time BETWEEN ? AND ?",
		model.StatusScheduled, now, now.Add(window)).
		Order("appointment_date_time ASC").
		Find(&appointments).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming appointments: %w", err)
	}
	return appointments, nil
}

// SweepUpcomingAppointments logs an event per appointment starting within the
// next 24 hours so the front desk can confirm attendance.
func (s *Sweeper) SweepUpcomingAppointments() error {
	appointments, err := upcomingAppointments(s.DB, time.Now(), 24*time.Hour)
	if err != nil {
		return err
	}

	for _, appointment := range appointments {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventAppointmentReminder,
			Message: fmt.Sprintf("Appointment %d with nutritionist %d starts at %s",
				appointment.ID, appointment.NutritionistID,
				appointment.AppointmentDateTime.Format(time.RFC3339)),
		})
	}
	return nil
}

// expiringPackages returns packages that still hold balance but expire within
// the horizon.
func expiringPackages(db *gorm.DB, now time.Time, horizon time.Duration) ([]model.PurchasedPackage, error) {
	var packages []model.PurchasedPackage
	err := db.Where("remaining_appointments > 0 AND expiration_date BETWEEN ? AND ?",
		now, now.Add(horizon)).
		Find(&packages).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query expiring packages: %w", err)
	}
	return packages, nil
}

// SweepExpiringPackages logs an event per package expiring within the next
// seven days while appointments remain on it.
func (s *Sweeper) SweepExpiringPackages() error {
	packages, err := expiringPackages(s.DB, time.Now(), 7*24*time.Hour)
	if err != nil {
		return err
	}

	for _, pkg := range packages {
		util.LogSecurityEvent(util.SecurityEvent{
			EventType: util.EventExpiryWarning,
			Message: fmt.Sprintf("Package %d (patient %d) expires %s with %d appointments left",
				pkg.ID, pkg.PatientID,
				pkg.ExpirationDate.Format("2006-01-02"), pkg.RemainingAppointments),
		})
	}
	return nil
}
