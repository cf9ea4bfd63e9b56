package cronjobs

import (
	"fmt"
	"testing"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSweepTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_sweeps_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test DB: %v", err)
	}
	if err := db.AutoMigrate(&model.Appointment{}, &model.PurchasedPackage{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestUpcomingAppointmentsWindow(t *testing.T) {
	db := setupSweepTestDB(t)
	now := time.Now()

	inWindow := model.Appointment{PurchasedPackageID: 1, NutritionistID: 1,
		AppointmentDateTime: now.Add(2 * time.Hour), Status: model.StatusScheduled}
	outOfWindow := model.Appointment{PurchasedPackageID: 1, NutritionistID: 1,
		AppointmentDateTime: now.Add(48 * time.Hour), Status: model.StatusScheduled}
	cancelled := model.Appointment{PurchasedPackageID: 1, NutritionistID: 1,
		AppointmentDateTime: now.Add(2 * time.Hour), Status: model.StatusCancelled}
	assert.NoError(t, db.Create(&inWindow).Error)
	assert.NoError(t, db.Create(&outOfWindow).Error)
	assert.NoError(t, db.Create(&cancelled).Error)

	appointments, err := upcomingAppointments(db, now, 24*time.Hour)
	assert.NoError(t, err)
	assert.Len(t, appointments, 1)
	assert.Equal(t, inWindow.ID, appointments[0].ID)
}

func TestExpiringPackagesHorizon(t *testing.T) {
	db := setupSweepTestDB(t)
	now := time.Now()

	expiring := model.PurchasedPackage{PatientID: 1, PackageTypeID: 1, PaymentMethodID: 1,
		PurchaseDate: now.AddDate(0, -6, 0), RemainingAppointments: 2,
		ExpirationDate: now.Add(3 * 24 * time.Hour)}
	empty := model.PurchasedPackage{PatientID: 1, PackageTypeID: 1, PaymentMethodID: 1,
		PurchaseDate: now.AddDate(0, -6, 0), RemainingAppointments: 0,
		ExpirationDate: now.Add(3 * 24 * time.Hour)}
	farOut := model.PurchasedPackage{PatientID: 1, PackageTypeID: 1, PaymentMethodID: 1,
		PurchaseDate: now, RemainingAppointments: 5,
		ExpirationDate: now.AddDate(0, 6, 0)}
	assert.NoError(t, db.Create(&expiring).Error)
	assert.NoError(t, db.Create(&empty).Error)
	assert.NoError(t, db.Create(&farOut).Error)

	packages, err := expiringPackages(db, now, 7*24*time.Hour)
	assert.NoError(t, err)
	assert.Len(t, packages, 1)
	assert.Equal(t, expiring.ID, packages[0].ID)
}
