package endpoint

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func registerAppointmentRoutes(r *gin.Engine) {
	r.POST("/appointment", ScheduleAppointment)
	r.GET("/appointment/upcoming", ListUpcomingAppointments)
	r.GET("/appointment/:id", GetAppointment)
	r.PUT("/appointment/:id/status", UpdateAppointmentStatus)
	r.PUT("/appointment/:id/cancel", CancelAppointment)
	r.POST("/appointment/:id/notes", CreateAppointmentNote)
	r.GET("/appointment/:id/notes", ListAppointmentNotes)
	r.GET("/nutritionist/:id/appointments", ListNutritionistAppointments)
	r.GET("/patient/:id/appointments", ListPatientAppointments)
}

func seedAppointmentFixtures(t *testing.T, db *gorm.DB) (model.PurchasedPackage, model.Nutritionist) {
	t.Helper()
	patient := seedPatient(t, db, "maria@example.com")
	nutritionist := seedNutritionist(t, db, "ana@example.com")
	packageType := seedPackageType(t, db, 5, "1500.00", "200.00")
	method := seedPaymentMethod(t, db, "Cash")
	pkg := seedPurchasedPackage(t, db, patient, packageType, method)
	return pkg, nutritionist
}

func TestScheduleAppointmentConsumesBalance(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	w := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": time.Now().Add(48 * time.Hour),
	})

	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, 4, packageBalance(t, db, pkg.ID))

	var appt model.Appointment
	assert.NoError(t, db.Where("purchased_package_id = ?", pkg.ID).First(&appt).Error)
	assert.Equal(t, model.StatusScheduled, appt.Status)
}

func TestScheduleAppointmentExhaustedPackage(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)
	assert.NoError(t, db.Model(&pkg).Update("remaining_appointments", 0).Error)

	w := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": time.Now().Add(48 * time.Hour),
	})

	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 0, packageBalance(t, db, pkg.ID))

	var count int64
	db.Model(&model.Appointment{}).Count(&count)
	assert.Zero(t, count)
}

func TestScheduleAppointmentExpiredPackage(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)
	assert.NoError(t, db.Model(&pkg).Update("expiration_date", time.Now().Add(-time.Hour)).Error)

	w := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": time.Now().Add(48 * time.Hour),
	})

	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 5, packageBalance(t, db, pkg.ID))
}

func TestScheduleAppointmentPackageNotFound(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	_, nutritionist := seedAppointmentFixtures(t, db)

	w := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  99999,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": time.Now().Add(48 * time.Hour),
	})

	assertStatus(t, w, http.StatusNotFound)
}

func TestScheduleAppointmentPastTimeRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	w := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": time.Now().Add(-time.Hour),
	})

	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 5, packageBalance(t, db, pkg.ID))
}

func TestScheduleAppointmentSlotTaken(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	slot := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	first := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": slot,
	})
	assertStatus(t, first, http.StatusOK)

	second := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": slot,
	})
	assertStatus(t, second, http.StatusConflict)
	assert.Equal(t, 4, packageBalance(t, db, pkg.ID))
}

func TestCancelledSlotCanBeRebooked(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	slot := time.Now().Add(72 * time.Hour).Truncate(time.Second)
	first := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": slot,
	})
	assertStatus(t, first, http.StatusOK)

	var appt model.Appointment
	assert.NoError(t, db.Where("purchased_package_id = ?", pkg.ID).First(&appt).Error)

	cancel := performRequest(r, http.MethodPut, fmt.Sprintf("/appointment/%d/cancel", appt.ID), nil)
	assertStatus(t, cancel, http.StatusOK)

	rebook := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": slot,
	})
	assertStatus(t, rebook, http.StatusOK)
}

func TestCancelAppointmentRestoresBalance(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	w := performRequest(r, http.MethodPost, "/appointment", gin.H{
		"purchased_package_id":  pkg.ID,
		"nutritionist_id":       nutritionist.ID,
		"appointment_date_time": time.Now().Add(48 * time.Hour),
	})
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, 4, packageBalance(t, db, pkg.ID))

	var appt model.Appointment
	assert.NoError(t, db.Where("purchased_package_id = ?", pkg.ID).First(&appt).Error)

	cancel := performRequest(r, http.MethodPut, fmt.Sprintf("/appointment/%d/cancel", appt.ID), nil)
	assertStatus(t, cancel, http.StatusOK)
	assert.Equal(t, 5, packageBalance(t, db, pkg.ID))

	assert.NoError(t, db.First(&appt, appt.ID).Error)
	assert.Equal(t, model.StatusCancelled, appt.Status)
}

func TestCancelCompletedAppointmentRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	appt := model.Appointment{
		PurchasedPackageID:  pkg.ID,
		NutritionistID:      nutritionist.ID,
		AppointmentDateTime: time.Now().Add(-24 * time.Hour),
		Status:              model.StatusCompleted,
	}
	assert.NoError(t, db.Create(&appt).Error)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/appointment/%d/cancel", appt.ID), nil)
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 5, packageBalance(t, db, pkg.ID))
}

func TestUpdateStatusTerminalImmutable(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	for _, terminal := range []string{model.StatusCompleted, model.StatusCancelled} {
		appt := model.Appointment{
			PurchasedPackageID:  pkg.ID,
			NutritionistID:      nutritionist.ID,
			AppointmentDateTime: time.Now().Add(24 * time.Hour),
			Status:              terminal,
		}
		assert.NoError(t, db.Create(&appt).Error)

		w := performRequest(r, http.MethodPut, fmt.Sprintf("/appointment/%d/status", appt.ID),
			gin.H{"status": model.StatusScheduled})
		assertStatus(t, w, http.StatusBadRequest)

		assert.NoError(t, db.First(&appt, appt.ID).Error)
		assert.Equal(t, terminal, appt.Status)
	}
}

func TestUpdateStatusNoShowToScheduledRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	appt := model.Appointment{
		PurchasedPackageID:  pkg.ID,
		NutritionistID:      nutritionist.ID,
		AppointmentDateTime: time.Now().Add(-24 * time.Hour),
		Status:              model.StatusNoShow,
	}
	assert.NoError(t, db.Create(&appt).Error)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/appointment/%d/status", appt.ID),
		gin.H{"status": model.StatusScheduled})
	assertStatus(t, w, http.StatusBadRequest)

	allowed := performRequest(r, http.MethodPut, fmt.Sprintf("/appointment/%d/status", appt.ID),
		gin.H{"status": model.StatusCompleted})
	assertStatus(t, allowed, http.StatusOK)
}

func TestUpdateStatusUnknownValueRejected(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	appt := model.Appointment{
		PurchasedPackageID:  pkg.ID,
		NutritionistID:      nutritionist.ID,
		AppointmentDateTime: time.Now().Add(24 * time.Hour),
		Status:              model.StatusScheduled,
	}
	assert.NoError(t, db.Create(&appt).Error)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/appointment/%d/status", appt.ID),
		gin.H{"status": "AGENDADA"})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestListNutritionistAppointmentsRange(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	base := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	for _, offset := range []time.Duration{0, 24 * time.Hour, 30 * 24 * time.Hour} {
		appt := model.Appointment{
			PurchasedPackageID:  pkg.ID,
			NutritionistID:      nutritionist.ID,
			AppointmentDateTime: base.Add(offset),
			Status:              model.StatusScheduled,
		}
		assert.NoError(t, db.Create(&appt).Error)
	}

	path := fmt.Sprintf("/nutritionist/%d/appointments?start=%s&end=%s",
		nutritionist.ID,
		base.Format(time.RFC3339),
		base.Add(24*time.Hour).Format(time.RFC3339))
	w := performRequest(r, http.MethodGet, path, nil)
	assertStatus(t, w, http.StatusOK)

	response := decodeResponse(t, w)
	data := response["data"].([]interface{})
	assert.Len(t, data, 2)
}

func TestListNutritionistAppointmentsInvalidRange(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	_, nutritionist := seedAppointmentFixtures(t, db)

	base := time.Date(2026, 10, 1, 10, 0, 0, 0, time.UTC)
	path := fmt.Sprintf("/nutritionist/%d/appointments?start=%s&end=%s",
		nutritionist.ID,
		base.Format(time.RFC3339),
		base.Add(-24*time.Hour).Format(time.RFC3339))
	w := performRequest(r, http.MethodGet, path, nil)
	assertStatus(t, w, http.StatusBadRequest)
}

func TestPatientAppointmentHistory(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	appt := model.Appointment{
		PurchasedPackageID:  pkg.ID,
		NutritionistID:      nutritionist.ID,
		AppointmentDateTime: time.Now().Add(24 * time.Hour),
		Status:              model.StatusScheduled,
	}
	assert.NoError(t, db.Create(&appt).Error)

	w := performRequest(r, http.MethodGet, fmt.Sprintf("/patient/%d/appointments", pkg.PatientID), nil)
	assertStatus(t, w, http.StatusOK)

	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
	rows := data["appointments"].([]interface{})
	row := rows[0].(map[string]interface{})
	assert.Equal(t, "Ana Torres", row["nutritionist_name"])
	assert.Equal(t, "Seguimiento", row["package_name"])
}

func TestAppointmentNotes(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerAppointmentRoutes(r)
	pkg, nutritionist := seedAppointmentFixtures(t, db)

	appt := model.Appointment{
		PurchasedPackageID:  pkg.ID,
		NutritionistID:      nutritionist.ID,
		AppointmentDateTime: time.Now().Add(24 * time.Hour),
		Status:              model.StatusScheduled,
	}
	assert.NoError(t, db.Create(&appt).Error)

	create := performRequest(r, http.MethodPost, fmt.Sprintf("/appointment/%d/notes", appt.ID),
		gin.H{"note": "reviewed meal plan"})
	assertStatus(t, create, http.StatusOK)

	list := performRequest(r, http.MethodGet, fmt.Sprintf("/appointment/%d/notes", appt.ID), nil)
	assertStatus(t, list, http.StatusOK)
	response := decodeResponse(t, list)
	notes := response["data"].([]interface{})
	assert.Len(t, notes, 1)
}
