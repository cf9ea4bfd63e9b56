package endpoint

import (
	"errors"
	"fmt"
	"strings"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type createPatientRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
}

// findPatient loads a patient by primary key, classifying the miss.
func findPatient(db *gorm.DB, id uint) (*model.Patient, error) {
	var patient model.Patient
	if err := db.First(&patient, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundError(fmt.Sprintf("Patient with ID %d not found", id))
		}
		return nil, util.PersistenceError("Failed to fetch patient", err)
	}
	return &patient, nil
}

func patientEmailTaken(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var count int64
	query := db.Model(&model.Patient{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, util.PersistenceError("Failed to check patient email", err)
	}
	return count > 0, nil
}

// CreatePatient godoc
// @Summary      Register a patient
// @Description  Create a patient record; email must be unique across patients
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        patient body createPatientRequest true "Patient data"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient created"
// @Failure      400 {object} util.APIResponse "Invalid input"
// @Failure      409 {object} util.APIResponse "Email already registered"
// @Router       /patient [post]
func CreatePatient(c *gin.Context) {
	req := createPatientRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := patientEmailTaken(db, email, 0)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	if taken {
		util.RespondServiceError(c, util.ConflictError("A patient with this email already exists"))
		return
	}

	patient := model.Patient{
		FirstName: util.NormalizeName(req.FirstName),
		LastName:  util.NormalizeName(req.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Active:    true,
	}
	if err := db.Create(&patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient created successfully", Data: patient})
}

// ListPatients godoc
// @Summary      List patients
// @Description  Paginated patient list with optional keyword search and active filter
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Substring match on name or email"
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} util.APIResponse{data=object} "Patients retrieved"
// @Router       /patient [get]
func ListPatients(c *gin.Context) {
	q := parseListQuery(c)

	db := getDB(c)
	if db == nil {
		return
	}

	query := db.Model(&model.Patient{}).Order("last_name ASC, first_name ASC")
	countQuery := db.Model(&model.Patient{})
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		cond := "first_name LIKE ? OR last_name LIKE ? OR email LIKE ?"
		query = query.Where(cond, kw, kw, kw)
		countQuery = countQuery.Where(cond, kw, kw, kw)
	}
	if q.Active != nil {
		query = query.Where("active = ?", *q.Active)
		countQuery = countQuery.Where("active = ?", *q.Active)
	}

	var patients []model.Patient
	if err := applyPagination(query, q).Find(&patients).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch patients", Err: err})
		return
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count patients", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patients fetched successfully",
		Data: map[string]interface{}{"total": total, "total_fetched": len(patients), "patients": patients},
	})
}

// GetPatient godoc
// @Summary      Get a patient
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient retrieved"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id} [get]
func GetPatient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	patient, err := findPatient(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient fetched successfully", Data: patient})
}

// UpdatePatient godoc
// @Summary      Update a patient
// @Description  Update patient contact data; a changed email must stay unique
// @Tags         Patient
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Param        patient body model.UpdatePatientRequest true "Editable fields"
// @Success      200 {object} util.APIResponse{data=model.Patient} "Patient updated"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Failure      409 {object} util.APIResponse "Email already registered"
// @Router       /patient/{id} [put]
func UpdatePatient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := model.UpdatePatientRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	patient, err := findPatient(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email != patient.Email {
			taken, err := patientEmailTaken(db, email, patient.ID)
			if err != nil {
				util.RespondServiceError(c, err)
				return
			}
			if taken {
				util.RespondServiceError(c, util.ConflictError("A patient with this email already exists"))
				return
			}
		}
		patient.Email = email
	}
	if req.FirstName != "" {
		patient.FirstName = util.NormalizeName(req.FirstName)
	}
	if req.LastName != "" {
		patient.LastName = util.NormalizeName(req.LastName)
	}
	if req.Phone != "" {
		patient.Phone = strings.TrimSpace(req.Phone)
	}

	if err := db.Save(patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient updated successfully", Data: patient})
}

// DeactivatePatient godoc
// @Summary      Deactivate a patient
// @Description  Business delete: the row is kept, the active flag is cleared
// @Tags         Patient
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Success      200 {object} util.APIResponse "Patient deactivated"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id} [delete]
func DeactivatePatient(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	patient, err := findPatient(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	patient.Active = false
	if err := db.Save(patient).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to deactivate patient", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Patient deactivated successfully", Data: nil})
}
