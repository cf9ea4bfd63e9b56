package endpoint

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func registerPurchasedPackageRoutes(r *gin.Engine) {
	r.POST("/purchased-package", CreatePurchasedPackage)
	r.GET("/purchased-package", ListPurchasedPackages)
	r.GET("/purchased-package/:id", GetPurchasedPackage)
	r.PUT("/purchased-package/:id", UpdatePurchasedPackage)
	r.GET("/purchased-package/:id/valid", CheckPackageValidity)
	r.GET("/patient/:id/packages", ListPatientPackages)
}

func TestCreatePurchasedPackageDefaults(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPurchasedPackageRoutes(r)

	patient := seedPatient(t, db, "maria@example.com")
	packageType := seedPackageType(t, db, 5, "1500.00", "200.00")
	method := seedPaymentMethod(t, db, "Cash")

	w := performRequest(r, http.MethodPost, "/purchased-package", gin.H{
		"patient_id":        patient.ID,
		"package_type_id":   packageType.ID,
		"payment_method_id": method.ID,
	})
	assertStatus(t, w, http.StatusOK)

	var pkg model.PurchasedPackage
	assert.NoError(t, db.First(&pkg).Error)
	assert.Equal(t, 5, pkg.RemainingAppointments)
	assert.False(t, pkg.PaidInFull)
	assert.True(t, pkg.TotalAmount.Equal(packageType.Price))
	assert.WithinDuration(t, pkg.PurchaseDate.AddDate(0, model.PackageValidityMonths, 0), pkg.ExpirationDate, time.Second)
}

func TestCreatePurchasedPackageUnknownPatient(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPurchasedPackageRoutes(r)

	packageType := seedPackageType(t, db, 5, "1500.00", "200.00")
	method := seedPaymentMethod(t, db, "Cash")

	w := performRequest(r, http.MethodPost, "/purchased-package", gin.H{
		"patient_id":        99999,
		"package_type_id":   packageType.ID,
		"payment_method_id": method.ID,
	})
	assertStatus(t, w, http.StatusNotFound)
}

func TestCheckPackageValidity(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPurchasedPackageRoutes(r)

	patient := seedPatient(t, db, "maria@example.com")
	packageType := seedPackageType(t, db, 5, "1500.00", "200.00")
	method := seedPaymentMethod(t, db, "Cash")
	pkg := seedPurchasedPackage(t, db, patient, packageType, method)

	w := performRequest(r, http.MethodGet, fmt.Sprintf("/purchased-package/%d/valid", pkg.ID), nil)
	assertStatus(t, w, http.StatusOK)
	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, true, data["valid"])
	assert.Equal(t, false, data["expired"])

	assert.NoError(t, db.Model(&pkg).Update("expiration_date", time.Now().Add(-time.Hour)).Error)

	w = performRequest(r, http.MethodGet, fmt.Sprintf("/purchased-package/%d/valid", pkg.ID), nil)
	assertStatus(t, w, http.StatusOK)
	response = decodeResponse(t, w)
	data = response["data"].(map[string]interface{})
	assert.Equal(t, false, data["valid"])
	assert.Equal(t, true, data["expired"])
}

func TestUpdatePurchasedPackageRejectsNegativeBalance(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPurchasedPackageRoutes(r)

	patient := seedPatient(t, db, "maria@example.com")
	packageType := seedPackageType(t, db, 5, "1500.00", "200.00")
	method := seedPaymentMethod(t, db, "Cash")
	pkg := seedPurchasedPackage(t, db, patient, packageType, method)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/purchased-package/%d", pkg.ID), gin.H{
		"remaining_appointments": -1,
	})
	assertStatus(t, w, http.StatusBadRequest)
	assert.Equal(t, 5, packageBalance(t, db, pkg.ID))
}

func TestUpdatePurchasedPackageAdjustsBalance(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPurchasedPackageRoutes(r)

	patient := seedPatient(t, db, "maria@example.com")
	packageType := seedPackageType(t, db, 5, "1500.00", "200.00")
	method := seedPaymentMethod(t, db, "Cash")
	pkg := seedPurchasedPackage(t, db, patient, packageType, method)

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/purchased-package/%d", pkg.ID), gin.H{
		"remaining_appointments": 2,
		"paid_in_full":           true,
	})
	assertStatus(t, w, http.StatusOK)

	var reloaded model.PurchasedPackage
	assert.NoError(t, db.First(&reloaded, pkg.ID).Error)
	assert.Equal(t, 2, reloaded.RemainingAppointments)
	assert.True(t, reloaded.PaidInFull)
}

func TestListPatientPackages(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPurchasedPackageRoutes(r)

	patient := seedPatient(t, db, "maria@example.com")
	other := seedPatient(t, db, "jose@example.com")
	packageType := seedPackageType(t, db, 5, "1500.00", "200.00")
	method := seedPaymentMethod(t, db, "Cash")
	seedPurchasedPackage(t, db, patient, packageType, method)
	seedPurchasedPackage(t, db, patient, packageType, method)
	seedPurchasedPackage(t, db, other, packageType, method)

	w := performRequest(r, http.MethodGet, fmt.Sprintf("/patient/%d/packages", patient.ID), nil)
	assertStatus(t, w, http.StatusOK)
	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["total"])
}

func TestListPatientPackagesUnknownPatient(t *testing.T) {
	r, _ := setupEndpointTest(t)
	registerPurchasedPackageRoutes(r)

	w := performRequest(r, http.MethodGet, "/patient/99999/packages", nil)
	assertStatus(t, w, http.StatusNotFound)
}
