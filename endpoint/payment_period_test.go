package endpoint

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func registerPeriodRoutes(r *gin.Engine) {
	r.POST("/payment-period", CreatePaymentPeriod)
	r.GET("/payment-period", ListPaymentPeriods)
	r.GET("/payment-period/:id", GetPaymentPeriod)
	r.PUT("/payment-period/:id", UpdatePaymentPeriod)
	r.PUT("/payment-period/:id/process", ProcessPaymentPeriod)
	r.PUT("/payment-period/:id/cancel", CancelPaymentPeriod)
}

// seedCompletedAppointments books count completed appointments on consecutive
// days starting at base, all paying the given package type's rate.
func seedCompletedAppointments(t *testing.T, db *gorm.DB, pkg model.PurchasedPackage, nutritionistID uint, base time.Time, count int) {
	t.Helper()
	for i := 0; i < count; i++ {
		appt := model.Appointment{
			PurchasedPackageID:  pkg.ID,
			NutritionistID:      nutritionistID,
			AppointmentDateTime: base.Add(time.Duration(i) * 24 * time.Hour),
			Status:              model.StatusCompleted,
		}
		if err := db.Create(&appt).Error; err != nil {
			t.Fatalf("failed to seed appointment: %v", err)
		}
	}
}

func TestCreatePaymentPeriodTotals(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)

	patient := seedPatient(t, db, "maria@example.com")
	nutritionist := seedNutritionist(t, db, "ana@example.com")
	packageType := seedPackageType(t, db, 10, "500.00", "20.00")
	method := seedPaymentMethod(t, db, "Cash")
	pkg := seedPurchasedPackage(t, db, patient, packageType, method)

	base := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)
	seedCompletedAppointments(t, db, pkg, nutritionist.ID, base, 3)

	// A scheduled appointment in range and a completed one outside the range
	// must not count.
	scheduled := model.Appointment{
		PurchasedPackageID:  pkg.ID,
		NutritionistID:      nutritionist.ID,
		AppointmentDateTime: base.Add(12 * time.Hour),
		Status:              model.StatusScheduled,
	}
	assert.NoError(t, db.Create(&scheduled).Error)
	outside := model.Appointment{
		PurchasedPackageID:  pkg.ID,
		NutritionistID:      nutritionist.ID,
		AppointmentDateTime: base.AddDate(0, 1, 0),
		Status:              model.StatusCompleted,
	}
	assert.NoError(t, db.Create(&outside).Error)

	w := performRequest(r, http.MethodPost, "/payment-period", gin.H{
		"nutritionist_id":   nutritionist.ID,
		"period_start_date": base,
		"period_end_date":   base.Add(48 * time.Hour),
	})
	assertStatus(t, w, http.StatusOK)

	var period model.NutritionistPaymentPeriod
	assert.NoError(t, db.First(&period).Error)
	assert.Equal(t, 3, period.TotalAppointments)
	assert.True(t, period.TotalAmount.Equal(decimal.RequireFromString("60.00")), period.TotalAmount.String())
	assert.Equal(t, model.PeriodStatusPending, period.PaymentStatus)
	assert.Nil(t, period.ProcessedDate)
}

func TestCreatePaymentPeriodEmptyRange(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)
	nutritionist := seedNutritionist(t, db, "ana@example.com")

	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	w := performRequest(r, http.MethodPost, "/payment-period", gin.H{
		"nutritionist_id":   nutritionist.ID,
		"period_start_date": base,
		"period_end_date":   base.Add(48 * time.Hour),
	})
	assertStatus(t, w, http.StatusOK)

	var period model.NutritionistPaymentPeriod
	assert.NoError(t, db.First(&period).Error)
	assert.Equal(t, 0, period.TotalAppointments)
	assert.True(t, period.TotalAmount.IsZero())
}

func TestCreatePaymentPeriodInvalidRange(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)
	nutritionist := seedNutritionist(t, db, "ana@example.com")

	base := time.Date(2026, 7, 10, 0, 0, 0, 0, time.UTC)
	w := performRequest(r, http.MethodPost, "/payment-period", gin.H{
		"nutritionist_id":   nutritionist.ID,
		"period_start_date": base,
		"period_end_date":   base.AddDate(0, 0, -5),
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestCreatePaymentPeriodNutritionistNotFound(t *testing.T) {
	r, _ := setupEndpointTest(t)
	registerPeriodRoutes(r)

	base := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	w := performRequest(r, http.MethodPost, "/payment-period", gin.H{
		"nutritionist_id":   99999,
		"period_start_date": base,
		"period_end_date":   base.AddDate(0, 0, 5),
	})
	assertStatus(t, w, http.StatusNotFound)
}

func seedPeriod(t *testing.T, db *gorm.DB, nutritionistID uint, status string) model.NutritionistPaymentPeriod {
	t.Helper()
	period := model.NutritionistPaymentPeriod{
		NutritionistID:  nutritionistID,
		PeriodStartDate: time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC),
		PeriodEndDate:   time.Date(2026, 7, 15, 0, 0, 0, 0, time.UTC),
		TotalAmount:     decimal.RequireFromString("60.00"),
		PaymentStatus:   status,
	}
	if err := db.Create(&period).Error; err != nil {
		t.Fatalf("failed to seed payment period: %v", err)
	}
	return period
}

func TestProcessPaymentPeriod(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)
	nutritionist := seedNutritionist(t, db, "ana@example.com")
	period := seedPeriod(t, db, nutritionist.ID, model.PeriodStatusPending)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/payment-period/%d/process", period.ID), nil)
	assertStatus(t, w, http.StatusOK)

	var reloaded model.NutritionistPaymentPeriod
	assert.NoError(t, db.First(&reloaded, period.ID).Error)
	assert.Equal(t, model.PeriodStatusPaid, reloaded.PaymentStatus)
	assert.NotNil(t, reloaded.ProcessedDate)

	// Processing twice is rejected.
	again := performRequest(r, http.MethodPut, fmt.Sprintf("/payment-period/%d/process", period.ID), nil)
	assertStatus(t, again, http.StatusBadRequest)
}

func TestProcessCancelledPeriodRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)
	nutritionist := seedNutritionist(t, db, "ana@example.com")
	period := seedPeriod(t, db, nutritionist.ID, model.PeriodStatusCancelled)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/payment-period/%d/process", period.ID), nil)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestUpdatePaidPeriodRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)
	nutritionist := seedNutritionist(t, db, "ana@example.com")
	period := seedPeriod(t, db, nutritionist.ID, model.PeriodStatusPaid)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/payment-period/%d", period.ID), gin.H{
		"nutritionist_id":   nutritionist.ID,
		"period_start_date": period.PeriodStartDate,
		"period_end_date":   period.PeriodEndDate,
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestUpdatePaymentPeriodRecomputesTotals(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)

	patient := seedPatient(t, db, "maria@example.com")
	nutritionist := seedNutritionist(t, db, "ana@example.com")
	packageType := seedPackageType(t, db, 10, "500.00", "20.00")
	method := seedPaymentMethod(t, db, "Cash")
	pkg := seedPurchasedPackage(t, db, patient, packageType, method)

	base := time.Date(2026, 7, 1, 11, 0, 0, 0, time.UTC)
	seedCompletedAppointments(t, db, pkg, nutritionist.ID, base, 3)

	period := seedPeriod(t, db, nutritionist.ID, model.PeriodStatusPending)

	// Narrow the range to a single day: only one appointment remains inside.
	w := performRequest(r, http.MethodPut, fmt.Sprintf("/payment-period/%d", period.ID), gin.H{
		"nutritionist_id":   nutritionist.ID,
		"period_start_date": base,
		"period_end_date":   base,
	})
	assertStatus(t, w, http.StatusOK)

	var reloaded model.NutritionistPaymentPeriod
	assert.NoError(t, db.First(&reloaded, period.ID).Error)
	assert.Equal(t, 1, reloaded.TotalAppointments)
	assert.True(t, reloaded.TotalAmount.Equal(decimal.RequireFromString("20.00")), reloaded.TotalAmount.String())
}

func TestCancelPaymentPeriod(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)
	nutritionist := seedNutritionist(t, db, "ana@example.com")
	period := seedPeriod(t, db, nutritionist.ID, model.PeriodStatusPending)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/payment-period/%d/cancel", period.ID), nil)
	assertStatus(t, w, http.StatusOK)

	var reloaded model.NutritionistPaymentPeriod
	assert.NoError(t, db.First(&reloaded, period.ID).Error)
	assert.Equal(t, model.PeriodStatusCancelled, reloaded.PaymentStatus)
}

func TestCancelPaidPeriodRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPeriodRoutes(r)
	nutritionist := seedNutritionist(t, db, "ana@example.com")
	period := seedPeriod(t, db, nutritionist.ID, model.PeriodStatusPaid)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/payment-period/%d/cancel", period.ID), nil)
	assertStatus(t, w, http.StatusBadRequest)
}
