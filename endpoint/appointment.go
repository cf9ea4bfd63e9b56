package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type scheduleAppointmentRequest struct {
	PurchasedPackageID  uint      `json:"purchased_package_id" binding:"required"`
	NutritionistID      uint      `json:"nutritionist_id" binding:"required"`
	AppointmentDateTime time.Time `json:"appointment_date_time" binding:"required"`
	Notes               string    `json:"notes"`
}

type updateAppointmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type appointmentNoteRequest struct {
	Note string `json:"note" binding:"required"`
}

func findAppointment(db *gorm.DB, id uint) (*model.Appointment, error) {
	var appt model.Appointment
	if err := db.First(&appt, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundError(fmt.Sprintf("Appointment with ID %d not found", id))
		}
		return nil, util.PersistenceError("Failed to fetch appointment", err)
	}
	return &appt, nil
}

// slotTaken reports whether the nutritionist already has a live appointment at
// the exact instant. Cancelled rows stay in the table, so they must not block
// rebooking the slot.
func slotTaken(db *gorm.DB, nutritionistID uint, at time.Time) (bool, error) {
	var count int64
	err := db.Model(&model.Appointment{}).
		Where("nutritionist_id = ? AND appointment_date_time = ? AND status <> ?",
			nutritionistID, at, model.StatusCancelled).
		Count(&count).Error
	if err != nil {
		return false, util.PersistenceError("Failed to check appointment slot", err)
	}
	return count > 0, nil
}

// ScheduleAppointment godoc
// @Summary      Schedule an appointment
// @Description  Books a future slot against a valid package and consumes one appointment from its balance
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        appointment body scheduleAppointmentRequest true "Appointment data"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment scheduled"
// @Failure      400 {object} util.APIResponse "Package exhausted, expired, or time not in the future"
// @Failure      404 {object} util.APIResponse "Package or nutritionist not found"
// @Failure      409 {object} util.APIResponse "Slot already taken"
// @Router       /appointment [post]
func ScheduleAppointment(c *gin.Context) {
	req := scheduleAppointmentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	var created model.Appointment
	err := db.Transaction(func(tx *gorm.DB) error {
		pkg, err := findPurchasedPackage(tx, req.PurchasedPackageID)
		if err != nil {
			return err
		}
		now := time.Now()
		if pkg.RemainingAppointments <= 0 {
			return util.PackageExhaustedError("Package has no remaining appointments")
		}
		if !now.Before(pkg.ExpirationDate) {
			return util.PackageExpiredError("Package has expired")
		}
		if _, err := findNutritionist(tx, req.NutritionistID); err != nil {
			return err
		}
		if !req.AppointmentDateTime.After(now) {
			return util.ValidationError("Appointment date must be in the future")
		}
		taken, err := slotTaken(tx, req.NutritionistID, req.AppointmentDateTime)
		if err != nil {
			return err
		}
		if taken {
			return util.ConflictError("The nutritionist already has an appointment at this time")
		}

		if err := pkg.Consume(); err != nil {
			return util.PackageExhaustedError("Package has no remaining appointments")
		}
		created = model.Appointment{
			PurchasedPackageID:  pkg.ID,
			NutritionistID:      req.NutritionistID,
			AppointmentDateTime: req.AppointmentDateTime,
			Status:              model.StatusScheduled,
			Notes:               req.Notes,
		}
		if err := tx.Create(&created).Error; err != nil {
			return util.PersistenceError("Failed to create appointment", err)
		}
		if err := tx.Model(&model.PurchasedPackage{}).Where("id = ?", pkg.ID).
			Update("remaining_appointments", pkg.RemainingAppointments).Error; err != nil {
			return util.PersistenceError("Failed to decrement package balance", err)
		}
		return nil
	})
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment scheduled successfully", Data: created})
}

// GetAppointment godoc
// @Summary      Get an appointment
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment retrieved"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointment/{id} [get]
func GetAppointment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	var appt model.Appointment
	err := db.Preload("PurchasedPackage").Preload("PurchasedPackage.PackageType").First(&appt, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.RespondServiceError(c, util.NotFoundError(fmt.Sprintf("Appointment with ID %d not found", id)))
			return
		}
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointment", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment fetched successfully", Data: appt})
}

// UpdateAppointmentStatus godoc
// @Summary      Update an appointment's status
// @Description  Completed and cancelled appointments are immutable; a no-show cannot go back to scheduled
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Param        status body updateAppointmentStatusRequest true "New status"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Status updated"
// @Failure      400 {object} util.APIResponse "Unknown status or forbidden transition"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointment/{id}/status [put]
func UpdateAppointmentStatus(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := updateAppointmentStatusRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	appt, err := findAppointment(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	if !model.IsValidStatus(req.Status) {
		util.RespondServiceError(c, util.ValidationError(fmt.Sprintf("Unknown appointment status %q", req.Status)))
		return
	}
	if err := model.ValidateStatusTransition(appt.Status, req.Status); err != nil {
		util.RespondServiceError(c, util.InvalidTransitionError(err.Error()))
		return
	}

	appt.Status = req.Status
	if err := db.Save(appt).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update appointment status", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment status updated successfully", Data: appt})
}

// CancelAppointment godoc
// @Summary      Cancel an appointment
// @Description  Marks the appointment cancelled and restores one appointment to the package balance
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=model.Appointment} "Appointment cancelled"
// @Failure      400 {object} util.APIResponse "Appointment already completed or cancelled"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointment/{id}/cancel [put]
func CancelAppointment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	var cancelled *model.Appointment
	err := db.Transaction(func(tx *gorm.DB) error {
		appt, err := findAppointment(tx, id)
		if err != nil {
			return err
		}
		if !appt.IsCancellable() {
			return util.InvalidTransitionError(fmt.Sprintf("Cannot cancel a %s appointment", appt.Status))
		}

		pkg, err := findPurchasedPackage(tx, appt.PurchasedPackageID)
		if err != nil {
			return err
		}
		pkg.Restore()
		if pkg.RestoredAboveAllotment(&pkg.PackageType) {
			util.LogBalanceAnomaly(pkg.ID, pkg.RemainingAppointments, pkg.PackageType.NumberOfAppointments)
		}

		appt.Status = model.StatusCancelled
		if err := tx.Save(appt).Error; err != nil {
			return util.PersistenceError("Failed to cancel appointment", err)
		}
		if err := tx.Model(&model.PurchasedPackage{}).Where("id = ?", pkg.ID).
			Update("remaining_appointments", pkg.RemainingAppointments).Error; err != nil {
			return util.PersistenceError("Failed to restore package balance", err)
		}
		cancelled = appt
		return nil
	})
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment cancelled successfully", Data: cancelled})
}

// ListNutritionistAppointments godoc
// @Summary      A nutritionist's appointments in a date range
// @Description  Inclusive window on the appointment instant
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Nutritionist ID"
// @Param        start query string true "Range start (RFC 3339)"
// @Param        end query string true "Range end (RFC 3339)"
// @Success      200 {object} util.APIResponse{data=[]model.Appointment} "Appointments retrieved"
// @Failure      400 {object} util.APIResponse "Invalid range"
// @Failure      404 {object} util.APIResponse "Nutritionist not found"
// @Router       /nutritionist/{id}/appointments [get]
func ListNutritionistAppointments(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	start, err := time.Parse(time.RFC3339, c.Query("start"))
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid start parameter, expected RFC 3339", Err: err})
		return
	}
	end, err := time.Parse(time.RFC3339, c.Query("end"))
	if err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid end parameter, expected RFC 3339", Err: err})
		return
	}
	if end.Before(start) {
		util.RespondServiceError(c, util.ValidationError("Range end must not be before range start"))
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	if _, err := findNutritionist(db, id); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	var appointments []model.Appointment
	err = db.Where("nutritionist_id = ? AND appointment_date_time BETWEEN ? AND ?", id, start, end).
		Order("appointment_date_time ASC").
		Find(&appointments).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointments fetched successfully", Data: appointments})
}

// ListUpcomingAppointments godoc
// @Summary      Upcoming scheduled appointments
// @Description  Scheduled appointments from now through one month ahead, across all nutritionists
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=[]model.Appointment} "Appointments retrieved"
// @Router       /appointment/upcoming [get]
func ListUpcomingAppointments(c *gin.Context) {
	db := getDB(c)
	if db == nil {
		return
	}

	now := time.Now()
	var appointments []model.Appointment
	err := db.Where("status = ? AND appointment_date_time BETWEEN ? AND ?",
		model.StatusScheduled, now, now.AddDate(0, 1, 0)).
		Order("appointment_date_time ASC").
		Find(&appointments).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch upcoming appointments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Upcoming appointments fetched successfully", Data: appointments})
}

// ListPatientAppointments godoc
// @Summary      A patient's appointment history
// @Description  Flattened rows joining the nutritionist name and package name, newest first
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Appointment history retrieved"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id}/appointments [get]
func ListPatientAppointments(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	q := parseListQuery(c)

	db := getDB(c)
	if db == nil {
		return
	}

	if _, err := findPatient(db, id); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	baseQuery := db.Table("appointments").
		Joins("JOIN purchased_packages ON purchased_packages.id = appointments.purchased_package_id").
		Joins("JOIN package_types ON package_types.id = purchased_packages.package_type_id").
		Joins("JOIN nutritionists ON nutritionists.id = appointments.nutritionist_id").
		Where("purchased_packages.patient_id = ? AND appointments.deleted_at IS NULL", id)

	// The nutritionist name is composed in Go so the select stays portable
	// across MySQL and the sqlite test driver.
	type historyRow struct {
		model.PatientAppointmentRow
		NutritionistFirstName string `gorm:"column:nutritionist_first_name"`
		NutritionistLastName  string `gorm:"column:nutritionist_last_name"`
	}
	var scanned []historyRow
	query := baseQuery.Session(&gorm.Session{}).
		Select("appointments.id AS appointment_id, " +
			"purchased_packages.patient_id AS patient_id, " +
			"nutritionists.id AS nutritionist_id, " +
			"nutritionists.first_name AS nutritionist_first_name, " +
			"nutritionists.last_name AS nutritionist_last_name, " +
			"package_types.name AS package_name, " +
			"appointments.appointment_date_time AS appointment_date_time, " +
			"appointments.status AS status").
		Order("appointments.appointment_date_time DESC")
	if err := applyPagination(query, q).Scan(&scanned).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointment history", Err: err})
		return
	}
	rows := make([]model.PatientAppointmentRow, 0, len(scanned))
	for _, r := range scanned {
		row := r.PatientAppointmentRow
		row.NutritionistName = r.NutritionistFirstName + " " + r.NutritionistLastName
		rows = append(rows, row)
	}

	var total int64
	if err := baseQuery.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count appointment history", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Appointment history fetched successfully",
		Data: map[string]interface{}{"total": total, "total_fetched": len(rows), "appointments": rows},
	})
}

// CreateAppointmentNote godoc
// @Summary      Attach a note to an appointment
// @Tags         Appointment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Param        note body appointmentNoteRequest true "Note text"
// @Success      200 {object} util.APIResponse{data=model.AppointmentNote} "Note created"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointment/{id}/notes [post]
func CreateAppointmentNote(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := appointmentNoteRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	if _, err := findAppointment(db, id); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	note := model.AppointmentNote{AppointmentID: id, Note: req.Note}
	if err := db.Create(&note).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create appointment note", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment note created successfully", Data: note})
}

// ListAppointmentNotes godoc
// @Summary      Notes attached to an appointment
// @Tags         Appointment
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Appointment ID"
// @Success      200 {object} util.APIResponse{data=[]model.AppointmentNote} "Notes retrieved"
// @Failure      404 {object} util.APIResponse "Appointment not found"
// @Router       /appointment/{id}/notes [get]
func ListAppointmentNotes(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	if _, err := findAppointment(db, id); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	var notes []model.AppointmentNote
	if err := db.Where("appointment_id = ?", id).Order("created_at ASC").Find(&notes).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch appointment notes", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Appointment notes fetched successfully", Data: notes})
}
