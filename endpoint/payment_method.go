package endpoint

import (
	"errors"
	"fmt"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type paymentMethodRequest struct {
	Name         string `json:"name" binding:"required"`
	Description  string `json:"description"`
	Active       *bool  `json:"active"`
	DisplayOrder *int   `json:"display_order"`
}

func findPaymentMethod(db *gorm.DB, id uint) (*model.PaymentMethod, error) {
	var method model.PaymentMethod
	if err := db.First(&method, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundError(fmt.Sprintf("Payment method with ID %d not found", id))
		}
		return nil, util.PersistenceError("Failed to fetch payment method", err)
	}
	return &method, nil
}

// CreatePaymentMethod godoc
// @Summary      Create a payment method
// @Tags         PaymentMethod
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        payment_method body paymentMethodRequest true "Payment method data"
// @Success      200 {object} util.APIResponse{data=model.PaymentMethod} "Payment method created"
// @Failure      400 {object} util.APIResponse "Invalid input"
// @Router       /payment-method [post]
func CreatePaymentMethod(c *gin.Context) {
	req := paymentMethodRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	method := model.PaymentMethod{
		Name:         req.Name,
		Description:  req.Description,
		Active:       true,
		DisplayOrder: req.DisplayOrder,
	}
	if req.Active != nil {
		method.Active = *req.Active
	}
	if err := db.Create(&method).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create payment method", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment method created successfully", Data: method})
}

// ListPaymentMethods godoc
// @Summary      List payment methods
// @Tags         PaymentMethod
// @Produce      json
// @Security     SessionToken
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} util.APIResponse{data=[]model.PaymentMethod} "Payment methods retrieved"
// @Router       /payment-method [get]
func ListPaymentMethods(c *gin.Context) {
	q := parseListQuery(c)

	db := getDB(c)
	if db == nil {
		return
	}

	query := db.Model(&model.PaymentMethod{}).Order("display_order ASC, name ASC")
	if q.Active != nil {
		query = query.Where("active = ?", *q.Active)
	}

	var methods []model.PaymentMethod
	if err := query.Find(&methods).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch payment methods", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment methods fetched successfully", Data: methods})
}

// GetPaymentMethod godoc
// @Summary      Get a payment method
// @Tags         PaymentMethod
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Payment method ID"
// @Success      200 {object} util.APIResponse{data=model.PaymentMethod} "Payment method retrieved"
// @Failure      404 {object} util.APIResponse "Payment method not found"
// @Router       /payment-method/{id} [get]
func GetPaymentMethod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	method, err := findPaymentMethod(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment method fetched successfully", Data: method})
}

// UpdatePaymentMethod godoc
// @Summary      Update a payment method
// @Tags         PaymentMethod
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Payment method ID"
// @Param        payment_method body paymentMethodRequest true "Payment method data"
// @Success      200 {object} util.APIResponse{data=model.PaymentMethod} "Payment method updated"
// @Failure      404 {object} util.APIResponse "Payment method not found"
// @Router       /payment-method/{id} [put]
func UpdatePaymentMethod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := paymentMethodRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	method, err := findPaymentMethod(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	method.Name = req.Name
	method.Description = req.Description
	method.DisplayOrder = req.DisplayOrder
	if req.Active != nil {
		method.Active = *req.Active
	}

	if err := db.Save(method).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update payment method", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment method updated successfully", Data: method})
}

// DeletePaymentMethod godoc
// @Summary      Delete a payment method
// @Description  Hard delete; existing payments keep the method ID they recorded
// @Tags         PaymentMethod
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Payment method ID"
// @Success      200 {object} util.APIResponse "Payment method deleted"
// @Failure      404 {object} util.APIResponse "Payment method not found"
// @Router       /payment-method/{id} [delete]
func DeletePaymentMethod(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	method, err := findPaymentMethod(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	if err := db.Delete(method).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to delete payment method", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payment method deleted successfully", Data: nil})
}
