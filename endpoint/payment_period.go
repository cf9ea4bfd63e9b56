package endpoint

import (
	"errors"
	"fmt"
	"time"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type paymentPeriodRequest struct {
	NutritionistID  uint      `json:"nutritionist_id" binding:"required"`
	PeriodStartDate time.Time `json:"period_start_date" binding:"required"`
	PeriodEndDate   time.Time `json:"period_end_date" binding:"required"`
	PaymentStatus   string    `json:"payment_status"`
}

func findPaymentPeriod(db *gorm.DB, id uint) (*model.NutritionistPaymentPeriod, error) {
	var period model.NutritionistPaymentPeriod
	if err := db.First(&period, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundError(fmt.Sprintf("Payment period with ID %d not found", id))
		}
		return nil, util.PersistenceError("Failed to fetch payment period", err)
	}
	return &period, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// computePeriodTotals counts the nutritionist's completed appointments whose
// instant falls inside the day-expanded range and sums the per-appointment
// rate of the package type each one was booked against.
func computePeriodTotals(db *gorm.DB, nutritionistID uint, start, end time.Time) (int, decimal.Decimal, error) {
	type rateRow struct {
		NutritionistRate decimal.Decimal `gorm:"column:nutritionist_rate"`
	}
	var rows []rateRow
	err := db.Table("appointments").
		Joins("JOIN purchased_packages ON purchased_packages.id = appointments.purchased_package_id").
		Joins("JOIN package_types ON package_types.id = purchased_packages.package_type_id").
		Where("appointments.nutritionist_id = ? AND appointments.status = ? AND appointments.deleted_at IS NULL", nutritionistID, model.StatusCompleted).
		Where("appointments.appointment_date_time BETWEEN ? AND ?", startOfDay(start), endOfDay(end)).
		Select("package_types.nutritionist_rate AS nutritionist_rate").
		Scan(&rows).Error
	if err != nil {
		return 0, decimal.Zero, util.PersistenceError("Failed to compute period totals", err)
	}

	total := decimal.Zero
	for _, r := range rows {
		total = total.Add(r.NutritionistRate)
	}
	return len(rows), total, nil
}

// CreatePaymentPeriod godoc
// @Summary      Open a nutritionist payment period
// @Description  Totals are computed from completed appointments inside the range; the period starts pending
// @Tags         PaymentPeriod
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        period body paymentPeriodRequest true "Period data"
// @Success      200 {object} util.APIResponse{data=model.NutritionistPaymentPeriod} "Period created"
// @Failure      400 {object} util.APIResponse "Invalid range"
// @Failure      404 {object} util.APIResponse "Nutritionist not found"
// @Router       /payment-period [post]
func CreatePaymentPeriod(c *gin.Context) {
	req := paymentPeriodRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	var period model.NutritionistPaymentPeriod
	err := db.Transaction(func(tx *gorm.DB) error {
		if _, err := findNutritionist(tx, req.NutritionistID); err != nil {
			return err
		}
		if req.PeriodEndDate.Before(req.PeriodStartDate) {
			return util.ValidationError("Period end date must not be before the start date")
		}

		count, total, err := computePeriodTotals(tx, req.NutritionistID, req.PeriodStartDate, req.PeriodEndDate)
		if err != nil {
			return err
		}

		period = model.NutritionistPaymentPeriod{
			NutritionistID:    req.NutritionistID,
			PeriodStartDate:   startOfDay(req.PeriodStartDate),
			PeriodEndDate:     startOfDay(req.PeriodEndDate),
			TotalAppointments: count,
			TotalAmount:       total,
			PaymentStatus:     model.PeriodStatusPending,
		}
		if err := tx.Create(&period).Error; err != nil {
			return util.PersistenceError("Failed to create payment period", err)
		}
		return nil
	})
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment period created successfully", Data: period})
}

// ListPaymentPeriods godoc
// @Summary      List payment periods
// @Tags         PaymentPeriod
// @Produce      json
// @Security     SessionToken
// @Param        nutritionist_id query int false "Filter by nutritionist"
// @Param        status query string false "Filter by payment status"
// @Success      200 {object} util.APIResponse{data=[]model.NutritionistPaymentPeriod} "Periods retrieved"
// @Router       /payment-period [get]
func ListPaymentPeriods(c *gin.Context) {
	db := getDB(c)
	if db == nil {
		return
	}

	query := db.Model(&model.NutritionistPaymentPeriod{}).Order("period_start_date DESC")
	if raw := c.Query("nutritionist_id"); raw != "" {
		query = query.Where("nutritionist_id = ?", raw)
	}
	if status := c.Query("status"); status != "" {
		if !model.IsValidPeriodStatus(status) {
			util.RespondServiceError(c, util.ValidationError(fmt.Sprintf("Unknown period status %q", status)))
			return
		}
		query = query.Where("payment_status = ?", status)
	}

	var periods []model.NutritionistPaymentPeriod
	if err := query.Find(&periods).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch payment periods", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment periods fetched successfully", Data: periods})
}

// GetPaymentPeriod godoc
// @Summary      Get a payment period
// @Tags         PaymentPeriod
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Payment period ID"
// @Success      200 {object} util.APIResponse{data=model.NutritionistPaymentPeriod} "Period retrieved"
// @Failure      404 {object} util.APIResponse "Period not found"
// @Router       /payment-period/{id} [get]
func GetPaymentPeriod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	period, err := findPaymentPeriod(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment period fetched successfully", Data: period})
}

// ProcessPaymentPeriod godoc
// @Summary      Mark a payment period as paid
// @Description  Only a pending period can be processed; processing stamps the processed date
// @Tags         PaymentPeriod
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Payment period ID"
// @Success      200 {object} util.APIResponse{data=model.NutritionistPaymentPeriod} "Period processed"
// @Failure      400 {object} util.APIResponse "Period already paid or cancelled"
// @Failure      404 {object} util.APIResponse "Period not found"
// @Router       /payment-period/{id}/process [put]
func ProcessPaymentPeriod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	var processed *model.NutritionistPaymentPeriod
	err := db.Transaction(func(tx *gorm.DB) error {
		period, err := findPaymentPeriod(tx, id)
		if err != nil {
			return err
		}
		switch period.PaymentStatus {
		case model.PeriodStatusPaid:
			return util.InvalidTransitionError("Payment period has already been paid")
		case model.PeriodStatusCancelled:
			return util.InvalidTransitionError("Cannot process a cancelled payment period")
		}

		now := time.Now()
		period.PaymentStatus = model.PeriodStatusPaid
		period.ProcessedDate = &now
		if err := tx.Save(period).Error; err != nil {
			return util.PersistenceError("Failed to process payment period", err)
		}
		processed = period
		return nil
	})
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment period processed successfully", Data: processed})
}

// UpdatePaymentPeriod godoc
// @Summary      Update a payment period
// @Description  Paid periods are immutable; totals are recomputed for the new range
// @Tags         PaymentPeriod
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Payment period ID"
// @Param        period body paymentPeriodRequest true "Period data"
// @Success      200 {object} util.APIResponse{data=model.NutritionistPaymentPeriod} "Period updated"
// @Failure      400 {object} util.APIResponse "Period already paid or invalid range"
// @Failure      404 {object} util.APIResponse "Period not found"
// @Router       /payment-period/{id} [put]
func UpdatePaymentPeriod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := paymentPeriodRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	var updated *model.NutritionistPaymentPeriod
	err := db.Transaction(func(tx *gorm.DB) error {
		period, err := findPaymentPeriod(tx, id)
		if err != nil {
			return err
		}
		if period.PaymentStatus == model.PeriodStatusPaid {
			return util.InvalidTransitionError("Cannot update a paid payment period")
		}
		if _, err := findNutritionist(tx, req.NutritionistID); err != nil {
			return err
		}
		if req.PeriodEndDate.Before(req.PeriodStartDate) {
			return util.ValidationError("Period end date must not be before the start date")
		}
		if req.PaymentStatus != "" && !model.IsValidPeriodStatus(req.PaymentStatus) {
			return util.ValidationError(fmt.Sprintf("Unknown period status %q", req.PaymentStatus))
		}

		count, total, err := computePeriodTotals(tx, req.NutritionistID, req.PeriodStartDate, req.PeriodEndDate)
		if err != nil {
			return err
		}

		period.NutritionistID = req.NutritionistID
		period.PeriodStartDate = startOfDay(req.PeriodStartDate)
		period.PeriodEndDate = startOfDay(req.PeriodEndDate)
		period.TotalAppointments = count
		period.TotalAmount = total
		if req.PaymentStatus != "" {
			period.PaymentStatus = req.PaymentStatus
		}
		if err := tx.Save(period).Error; err != nil {
			return util.PersistenceError("Failed to update payment period", err)
		}
		updated = period
		return nil
	})
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment period updated successfully", Data: updated})
}

// CancelPaymentPeriod godoc
// @Summary      Cancel a payment period
// @Description  Paid periods cannot be cancelled
// @Tags         PaymentPeriod
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Payment period ID"
// @Success      200 {object} util.APIResponse{data=model.NutritionistPaymentPeriod} "Period cancelled"
// @Failure      400 {object} util.APIResponse "Period already paid"
// @Failure      404 {object} util.APIResponse "Period not found"
// @Router       /payment-period/{id}/cancel [put]
func CancelPaymentPeriod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	period, err := findPaymentPeriod(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	if period.PaymentStatus == model.PeriodStatusPaid {
		util.RespondServiceError(c, util.InvalidTransitionError("Cannot cancel a paid payment period"))
		return
	}

	period.PaymentStatus = model.PeriodStatusCancelled
	if err := db.Save(period).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to cancel payment period", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment period cancelled successfully", Data: period})
}
