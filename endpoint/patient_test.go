package endpoint

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func registerPatientRoutes(r *gin.Engine) {
	r.POST("/patient", CreatePatient)
	r.GET("/patient", ListPatients)
	r.GET("/patient/:id", GetPatient)
	r.PUT("/patient/:id", UpdatePatient)
	r.DELETE("/patient/:id", DeactivatePatient)
}

func TestCreatePatientLowercasesEmail(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPatientRoutes(r)

	w := performRequest(r, http.MethodPost, "/patient", gin.H{
		"first_name": "  Maria ",
		"last_name":  "Lopez",
		"email":      "Maria.Lopez@Example.com",
	})
	assertStatus(t, w, http.StatusOK)

	var patient model.Patient
	assert.NoError(t, db.First(&patient).Error)
	assert.Equal(t, "maria.lopez@example.com", patient.Email)
	assert.Equal(t, "Maria", patient.FirstName)
	assert.True(t, patient.Active)
}

func TestCreatePatientDuplicateEmailConflict(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPatientRoutes(r)
	seedPatient(t, db, "maria@example.com")

	w := performRequest(r, http.MethodPost, "/patient", gin.H{
		"first_name": "Maria",
		"last_name":  "Lopez",
		"email":      "MARIA@example.com",
	})
	assertStatus(t, w, http.StatusConflict)

	var count int64
	db.Model(&model.Patient{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdatePatientNotFound(t *testing.T) {
	r, _ := setupEndpointTest(t)
	registerPatientRoutes(r)

	w := performRequest(r, http.MethodPut, "/patient/99999", gin.H{"first_name": "Maria"})
	assertStatus(t, w, http.StatusNotFound)
}

func TestUpdatePatientEmailConflict(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPatientRoutes(r)
	seedPatient(t, db, "maria@example.com")
	other := seedPatient(t, db, "jose@example.com")

	w := performRequest(r, http.MethodPut, fmt.Sprintf("/patient/%d", other.ID),
		gin.H{"email": "maria@example.com"})
	assertStatus(t, w, http.StatusConflict)
}

func TestDeactivatePatientKeepsRow(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPatientRoutes(r)
	patient := seedPatient(t, db, "maria@example.com")

	w := performRequest(r, http.MethodDelete, fmt.Sprintf("/patient/%d", patient.ID), nil)
	assertStatus(t, w, http.StatusOK)

	var reloaded model.Patient
	assert.NoError(t, db.First(&reloaded, patient.ID).Error)
	assert.False(t, reloaded.Active)
}

func TestListPatientsKeywordAndActiveFilter(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerPatientRoutes(r)
	seedPatient(t, db, "maria@example.com")
	inactive := seedPatient(t, db, "jose@example.com")
	assert.NoError(t, db.Model(&inactive).Update("active", false).Error)

	w := performRequest(r, http.MethodGet, "/patient?keyword=maria", nil)
	assertStatus(t, w, http.StatusOK)
	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])

	w = performRequest(r, http.MethodGet, "/patient?active=true", nil)
	assertStatus(t, w, http.StatusOK)
	response = decodeResponse(t, w)
	data = response["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["total"])
}
