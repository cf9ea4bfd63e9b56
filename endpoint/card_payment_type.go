package endpoint

import (
	"errors"
	"fmt"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type cardPaymentTypeRequest struct {
	Name                 string          `json:"name" binding:"required"`
	Description          string          `json:"description"`
	BankFeePercentage    decimal.Decimal `json:"bank_fee_percentage"`
	NumberOfInstallments int             `json:"number_of_installments" binding:"required"`
}

func (r *cardPaymentTypeRequest) validate() error {
	if r.BankFeePercentage.IsNegative() || r.BankFeePercentage.GreaterThan(decimal.NewFromInt(100)) {
		return util.ValidationError("Bank fee percentage must be between 0 and 100")
	}
	if r.NumberOfInstallments < 1 || r.NumberOfInstallments > 48 {
		return util.ValidationError("Number of installments must be between 1 and 48")
	}
	return nil
}

func findCardPaymentType(db *gorm.DB, id uint) (*model.CardPaymentType, error) {
	var cardType model.CardPaymentType
	if err := db.First(&cardType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundError(fmt.Sprintf("Card payment type with ID %d not found", id))
		}
		return nil, util.PersistenceError("Failed to fetch card payment type", err)
	}
	return &cardType, nil
}

// CreateCardPaymentType godoc
// @Summary      Create a card payment type
// @Description  Add an installment plan with its bank fee percentage
// @Tags         CardPaymentType
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        card_payment_type body cardPaymentTypeRequest true "Card payment type data"
// @Success      200 {object} util.APIResponse{data=model.CardPaymentType} "Card payment type created"
// @Failure      400 {object} util.APIResponse "Invalid input"
// @Router       /card-payment-type [post]
func CreateCardPaymentType(c *gin.Context) {
	req := cardPaymentTypeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}
	if err := req.validate(); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	cardType := model.CardPaymentType{
		Name:                 util.NormalizeName(req.Name),
		Description:          req.Description,
		BankFeePercentage:    req.BankFeePercentage,
		NumberOfInstallments: req.NumberOfInstallments,
		Active:               true,
	}
	if err := db.Create(&cardType).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create card payment type", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Card payment type created successfully", Data: cardType})
}

// ListCardPaymentTypes godoc
// @Summary      List card payment types
// @Tags         CardPaymentType
// @Produce      json
// @Security     SessionToken
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} util.APIResponse{data=[]model.CardPaymentType} "Card payment types retrieved"
// @Router       /card-payment-type [get]
func ListCardPaymentTypes(c *gin.Context) {
	q := parseListQuery(c)

	db := getDB(c)
	if db == nil {
		return
	}

	query := db.Model(&model.CardPaymentType{}).Order("number_of_installments ASC")
	if q.Active != nil {
		query = query.Where("active = ?", *q.Active)
	}

	var cardTypes []model.CardPaymentType
	if err := query.Find(&cardTypes).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch card payment types", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Card payment types fetched successfully", Data: cardTypes})
}

// GetCardPaymentType godoc
// @Summary      Get a card payment type
// @Tags         CardPaymentType
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Card payment type ID"
// @Success      200 {object} util.APIResponse{data=model.CardPaymentType} "Card payment type retrieved"
// @Failure      404 {object} util.APIResponse "Card payment type not found"
// @Router       /card-payment-type/{id} [get]
func GetCardPaymentType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	cardType, err := findCardPaymentType(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Card payment type fetched successfully", Data: cardType})
}

// UpdateCardPaymentType godoc
// @Summary      Update a card payment type
// @Tags         CardPaymentType
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Card payment type ID"
// @Param        card_payment_type body cardPaymentTypeRequest true "Card payment type data"
// @Success      200 {object} util.APIResponse{data=model.CardPaymentType} "Card payment type updated"
// @Failure      404 {object} util.APIResponse "Card payment type not found"
// @Router       /card-payment-type/{id} [put]
func UpdateCardPaymentType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := cardPaymentTypeRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}
	if err := req.validate(); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	cardType, err := findCardPaymentType(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	cardType.Name = util.NormalizeName(req.Name)
	cardType.Description = req.Description
	cardType.BankFeePercentage = req.BankFeePercentage
	cardType.NumberOfInstallments = req.NumberOfInstallments

	if err := db.Save(cardType).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update card payment type", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Card payment type updated successfully", Data: cardType})
}

// DeactivateCardPaymentType godoc
// @Summary      Deactivate a card payment type
// @Tags         CardPaymentType
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Card payment type ID"
// @Success      200 {object} util.APIResponse "Card payment type deactivated"
// @Failure      404 {object} util.APIResponse "Card payment type not found"
// @Router       /card-payment-type/{id} [delete]
func DeactivateCardPaymentType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	cardType, err := findCardPaymentType(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	cardType.Active = false
	if err := db.Save(cardType).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to deactivate card payment type", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Card payment type deactivated successfully", Data: nil})
}

// QuoteCardPayment godoc
// @Summary      Quote fee and installments
// @Description  Returns the bank fee and per-installment amount for a purchase amount
// @Tags         CardPaymentType
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Card payment type ID"
// @Param        amount query string true "Purchase amount"
// @Success      200 {object} util.APIResponse{data=object} "Quote calculated"
// @Failure      400 {object} util.APIResponse "Invalid amount"
// @Failure      404 {object} util.APIResponse "Card payment type not found"
// @Router       /card-payment-type/{id}/quote [get]
func QuoteCardPayment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	amount, err := decimal.NewFromString(c.Query("amount"))
	if err != nil || !amount.IsPositive() {
		util.CallUserError(c, util.APIErrorParams{
			Msg: "Amount must be a positive decimal",
			Err: fmt.Errorf("invalid amount %q", c.Query("amount")),
		})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	cardType, findErr := findCardPaymentType(db, id)
	if findErr != nil {
		util.RespondServiceError(c, findErr)
		return
	}

	fee := cardType.FeeAmount(amount)
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Quote calculated successfully",
		Data: map[string]interface{}{
			"amount":                 amount,
			"bank_fee":               fee,
			"total_with_fee":         amount.Add(fee),
			"number_of_installments": cardType.NumberOfInstallments,
			"installment_amount":     cardType.InstallmentAmount(amount),
		},
	})
}
