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

type createPurchasedPackageRequest struct {
	PatientID         uint  `json:"patient_id" binding:"required"`
	PackageTypeID     uint  `json:"package_type_id" binding:"required"`
	PaymentMethodID   uint  `json:"payment_method_id" binding:"required"`
	CardPaymentTypeID *uint `json:"card_payment_type_id"`
}

type updatePurchasedPackageRequest struct {
	RemainingAppointments *int       `json:"remaining_appointments"`
	ExpirationDate        *time.Time `json:"expiration_date"`
	PaidInFull            *bool      `json:"paid_in_full"`
}

func findPurchasedPackage(db *gorm.DB, id uint) (*model.PurchasedPackage, error) {
	var pkg model.PurchasedPackage
	if err := db.Preload("PackageType").First(&pkg, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundError(fmt.Sprintf("Purchased package with ID %d not found", id))
		}
		return nil, util.PersistenceError("Failed to fetch purchased package", err)
	}
	return &pkg, nil
}

// CreatePurchasedPackage godoc
// @Summary      Sell a package to a patient
// @Description  Records a purchase: balance set to the catalog allotment, expiration six months out
// @Tags         PurchasedPackage
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        purchase body createPurchasedPackageRequest true "Purchase data"
// @Success      200 {object} util.APIResponse{data=model.PurchasedPackage} "Package purchased"
// @Failure      400 {object} util.APIResponse "Invalid input"
// @Failure      404 {object} util.APIResponse "Patient, package type or payment method not found"
// @Router       /purchased-package [post]
func CreatePurchasedPackage(c *gin.Context) {
	req := createPurchasedPackageRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	if _, err := findPatient(db, req.PatientID); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	packageType, err := findPackageType(db, req.PackageTypeID)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	if _, err := findPaymentMethod(db, req.PaymentMethodID); err != nil {
		util.RespondServiceError(c, err)
		return
	}
	if req.CardPaymentTypeID != nil {
		if _, err := findCardPaymentType(db, *req.CardPaymentTypeID); err != nil {
			util.RespondServiceError(c, err)
			return
		}
	}

	pkg := model.NewPurchasedPackage(req.PatientID, packageType, req.PaymentMethodID, req.CardPaymentTypeID, time.Now())
	if err := db.Create(&pkg).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create purchased package", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Package purchased successfully", Data: pkg})
}

// ListPurchasedPackages godoc
// @Summary      List purchased packages
// @Tags         PurchasedPackage
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Purchased packages retrieved"
// @Router       /purchased-package [get]
func ListPurchasedPackages(c *gin.Context) {
	q := parseListQuery(c)

	db := getDB(c)
	if db == nil {
		return
	}

	var packages []model.PurchasedPackage
	query := db.Preload("PackageType").Order("purchase_date DESC")
	if err := applyPagination(query, q).Find(&packages).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch purchased packages", Err: err})
		return
	}
	var total int64
	if err := db.Model(&model.PurchasedPackage{}).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count purchased packages", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Purchased packages fetched successfully",
		Data: map[string]interface{}{"total": total, "total_fetched": len(packages), "purchased_packages": packages},
	})
}

// ListPatientPackages godoc
// @Summary      List a patient's purchased packages
// @Tags         PurchasedPackage
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Patient ID"
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Success      200 {object} util.APIResponse{data=object} "Purchased packages retrieved"
// @Failure      404 {object} util.APIResponse "Patient not found"
// @Router       /patient/{id}/packages [get]
func ListPatientPackages(c *gin.Context) {
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

	var packages []model.PurchasedPackage
	query := db.Preload("PackageType").Where("patient_id = ?", id).Order("purchase_date DESC")
	if err := applyPagination(query, q).Find(&packages).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch patient packages", Err: err})
		return
	}
	var total int64
	if err := db.Model(&model.PurchasedPackage{}).Where("patient_id = ?", id).Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count patient packages", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Patient packages fetched successfully",
		Data: map[string]interface{}{"total": total, "total_fetched": len(packages), "purchased_packages": packages},
	})
}

// GetPurchasedPackage godoc
// @Summary      Get a purchased package
// @Tags         PurchasedPackage
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Purchased package ID"
// @Success      200 {object} util.APIResponse{data=model.PurchasedPackage} "Purchased package retrieved"
// @Failure      404 {object} util.APIResponse "Purchased package not found"
// @Router       /purchased-package/{id} [get]
func GetPurchasedPackage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	pkg, err := findPurchasedPackage(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Purchased package fetched successfully", Data: pkg})
}

// UpdatePurchasedPackage godoc
// @Summary      Adjust a purchased package
// @Description  Front-desk correction of balance, expiration or paid flag; nothing else is editable
// @Tags         PurchasedPackage
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Purchased package ID"
// @Param        adjustment body updatePurchasedPackageRequest true "Adjustable fields"
// @Success      200 {object} util.APIResponse{data=model.PurchasedPackage} "Purchased package updated"
// @Failure      400 {object} util.APIResponse "Invalid adjustment"
// @Failure      404 {object} util.APIResponse "Purchased package not found"
// @Router       /purchased-package/{id} [put]
func UpdatePurchasedPackage(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := updatePurchasedPackageRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	pkg, err := findPurchasedPackage(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	if req.RemainingAppointments != nil {
		if *req.RemainingAppointments < 0 {
			util.RespondServiceError(c, util.ValidationError("Remaining appointments cannot be negative"))
			return
		}
		pkg.RemainingAppointments = *req.RemainingAppointments
	}
	if req.ExpirationDate != nil {
		pkg.ExpirationDate = *req.ExpirationDate
	}
	if req.PaidInFull != nil {
		pkg.PaidInFull = *req.PaidInFull
	}

	if err := db.Save(pkg).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update purchased package", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Purchased package updated successfully", Data: pkg})
}

// CheckPackageValidity godoc
// @Summary      Check whether a package can still book appointments
// @Description  Valid means a positive balance and an expiration date still in the future
// @Tags         PurchasedPackage
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Purchased package ID"
// @Success      200 {object} util.APIResponse{data=object} "Validity evaluated"
// @Failure      404 {object} util.APIResponse "Purchased package not found"
// @Router       /purchased-package/{id}/valid [get]
func CheckPackageValidity(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	pkg, err := findPurchasedPackage(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	now := time.Now()
	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Package validity evaluated successfully",
		Data: map[string]interface{}{
			"valid":                  pkg.IsValid(now),
			"remaining_appointments": pkg.RemainingAppointments,
			"expiration_date":        pkg.ExpirationDate,
			"expired":                !now.Before(pkg.ExpirationDate),
		},
	})
}

// GetPackagePayments godoc
// @Summary      Payment history of a purchased package
// @Description  Package, its payment rows and the running paid total
// @Tags         PurchasedPackage
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Purchased package ID"
// @Success      200 {object} util.APIResponse{data=object} "Payments retrieved"
// @Failure      404 {object} util.APIResponse "Purchased package not found"
// @Router       /purchased-package/{id}/payments [get]
func GetPackagePayments(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	pkg, payments, err := fetchPackageWithPayments(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg: "Package payments fetched successfully",
		Data: map[string]interface{}{
			"purchased_package": pkg,
			"payments":          payments,
			"paid_total":        model.SumPayments(payments),
			"paid_in_full":      pkg.PaidInFull,
		},
	})
}
