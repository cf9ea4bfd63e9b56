package endpoint

import (
	"fmt"
	"time"

	"github.com/effisoft/nutrilab-api/config"
	"github.com/effisoft/nutrilab-api/model"
	"github.com/effisoft/nutrilab-api/util"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type recordPaymentRequest struct {
	PurchasedPackageID uint            `json:"purchased_package_id" binding:"required"`
	PaymentMethodID    uint            `json:"payment_method_id" binding:"required"`
	CardPaymentTypeID  *uint           `json:"card_payment_type_id"`
	TotalPaid          decimal.Decimal `json:"total_paid"`
}

// fetchPackageWithPayments loads a purchased package together with its payment
// history. Shared by the payment recorder and the package payments view.
func fetchPackageWithPayments(db *gorm.DB, packageID uint) (*model.PurchasedPackage, []model.PatientPayment, error) {
	pkg, err := findPurchasedPackage(db, packageID)
	if err != nil {
		return nil, nil, err
	}
	var payments []model.PatientPayment
	if err := db.Where("purchased_package_id = ?", packageID).Order("payment_date ASC").Find(&payments).Error; err != nil {
		return nil, nil, util.PersistenceError("Failed to fetch payment history", err)
	}
	return pkg, payments, nil
}

// RecordPayment godoc
// @Summary      Record a payment against a purchased package
// @Description  Rejects payments that would exceed the catalog price; the exact remaining amount flips the paid-in-full flag
// @Tags         PatientPayment
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        payment body recordPaymentRequest true "Payment data"
// @Success      200 {object} util.APIResponse{data=object} "Payment recorded"
// @Failure      400 {object} util.APIResponse "Overpayment, missing card type, or amount below minimum"
// @Failure      404 {object} util.APIResponse "Package, method or card type not found"
// @Router       /patient-payment [post]
func RecordPayment(c *gin.Context) {
	req := recordPaymentRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	cfg := config.LoadConfig()

	var payment model.PatientPayment
	var paidInFull bool
	txErr := db.Transaction(func(tx *gorm.DB) error {
		pkg, payments, err := fetchPackageWithPayments(tx, req.PurchasedPackageID)
		if err != nil {
			return err
		}
		method, err := findPaymentMethod(tx, req.PaymentMethodID)
		if err != nil {
			return err
		}
		if !method.IsCashEquivalent(cfg.CashMethod) {
			if req.CardPaymentTypeID == nil {
				return util.ValidationError("Card payment type is required for non-cash payments")
			}
			if _, err := findCardPaymentType(tx, *req.CardPaymentTypeID); err != nil {
				return err
			}
		}
		if req.TotalPaid.LessThan(decimal.NewFromInt(1)) {
			return util.ValidationError("Payment amount must be at least 1")
		}

		price := pkg.PackageType.Price
		newTotal := model.SumPayments(payments).Add(req.TotalPaid)
		if newTotal.GreaterThan(price) {
			return util.OverpaymentError(fmt.Sprintf(
				"Payment would exceed the package price: paid total %s, price %s", newTotal.String(), price.String()))
		}

		payment = model.PatientPayment{
			PurchasedPackageID: pkg.ID,
			PaymentMethodID:    req.PaymentMethodID,
			CardPaymentTypeID:  req.CardPaymentTypeID,
			TotalPaid:          req.TotalPaid,
			PaymentDate:        time.Now(),
		}
		if err := tx.Create(&payment).Error; err != nil {
			return util.PersistenceError("Failed to record payment", err)
		}

		if newTotal.Equal(price) && !pkg.PaidInFull {
			if err := tx.Model(&model.PurchasedPackage{}).Where("id = ?", pkg.ID).
				Update("paid_in_full", true).Error; err != nil {
				return util.PersistenceError("Failed to mark package paid in full", err)
			}
			paidInFull = true
		} else {
			paidInFull = pkg.PaidInFull
		}
		return nil
	})
	if txErr != nil {
		util.RespondServiceError(c, txErr)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Payment recorded successfully",
		Data: map[string]interface{}{
			"payment":      payment,
			"paid_in_full": paidInFull,
		},
	})
}

// ListPackagePayments godoc
// @Summary      List the payments of a purchased package
// @Tags         PatientPayment
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Purchased package ID"
// @Success      200 {object} util.APIResponse{data=[]model.PatientPayment} "Payments retrieved"
// @Failure      404 {object} util.APIResponse "Purchased package not found"
// @Router       /patient-payment/package/{id} [get]
func ListPackagePayments(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	if _, err := findPurchasedPackage(db, id); err != nil {
		util.RespondServiceError(c, err)
		return
	}

	var payments []model.PatientPayment
	if err := db.Where("purchased_package_id = ?", id).Order("payment_date ASC").Find(&payments).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch payments", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Payments fetched successfully", Data: payments})
}
