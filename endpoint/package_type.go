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

type packageTypeRequest struct {
	Name                 string          `json:"name" binding:"required"`
	Description          string          `json:"description"`
	NumberOfAppointments int             `json:"number_of_appointments" binding:"required"`
	IsBundle             bool            `json:"is_bundle"`
	Price                decimal.Decimal `json:"price"`
	NutritionistRate     decimal.Decimal `json:"nutritionist_rate"`
}

func (r *packageTypeRequest) validate() error {
	if r.NumberOfAppointments <= 0 {
		return util.ValidationError("Number of appointments must be greater than zero")
	}
	if !r.Price.IsPositive() {
		return util.ValidationError("Price must be greater than zero")
	}
	if r.NutritionistRate.IsNegative() {
		return util.ValidationError("Nutritionist rate cannot be negative")
	}
	return nil
}

func findPackageType(db *gorm.DB, id uint) (*model.PackageType, error) {
	var packageType model.PackageType
	if err := db.First(&packageType, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundError(fmt.Sprintf("Package type with ID %d not found", id))
		}
		return nil, util.PersistenceError("Failed to fetch package type", err)
	}
	return &packageType, nil
}

// CreatePackageType godoc
// @Summary      Create a package type
// @Description  Add a catalog entry describing a sellable block of appointments
// @Tags         PackageType
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        package_type body packageTypeRequest true "Package type data"
// @Success      200 {object} util.APIResponse{data=model.PackageType} "Package type created"
// @Failure      400 {object} util.APIResponse "Invalid input"
// @Router       /package-type [post]
func CreatePackageType(c *gin.Context) {
	req := packageTypeRequest{}
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

	packageType := model.PackageType{
		Name:                 util.NormalizeName(req.Name),
		Description:          req.Description,
		NumberOfAppointments: req.NumberOfAppointments,
		IsBundle:             req.IsBundle,
		Price:                req.Price,
		NutritionistRate:     req.NutritionistRate,
		Active:               true,
	}
	if err := db.Create(&packageType).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create package type", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Package type created successfully", Data: packageType})
}

// ListPackageTypes godoc
// @Summary      List package types
// @Tags         PackageType
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Substring match on name"
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} util.APIResponse{data=object} "Package types retrieved"
// @Router       /package-type [get]
func ListPackageTypes(c *gin.Context) {
	q := parseListQuery(c)

	db := getDB(c)
	if db == nil {
		return
	}

	query := db.Model(&model.PackageType{}).Order("name ASC")
	countQuery := db.Model(&model.PackageType{})
	if q.Keyword != "" {
		kw := "%" + q.Keyword + "%"
		query = query.Where("name LIKE ?", kw)
		countQuery = countQuery.Where("name LIKE ?", kw)
	}
	if q.Active != nil {
		query = query.Where("active = ?", *q.Active)
		countQuery = countQuery.Where("active = ?", *q.Active)
	}

	var packageTypes []model.PackageType
	if err := applyPagination(query, q).Find(&packageTypes).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch package types", Err: err})
		return
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count package types", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Package types fetched successfully",
		Data: map[string]interface{}{"total": total, "total_fetched": len(packageTypes), "package_types": packageTypes},
	})
}

// ListPackageTypeOptions godoc
// @Summary      Package type dropdown options
// @Description  Reduced id/name/price list of active package types
// @Tags         PackageType
// @Produce      json
// @Security     SessionToken
// @Success      200 {object} util.APIResponse{data=[]model.PackageTypeSelect} "Options retrieved"
// @Router       /package-type/options [get]
func ListPackageTypeOptions(c *gin.Context) {
	db := getDB(c)
	if db == nil {
		return
	}

	var options []model.PackageTypeSelect
	err := db.Model(&model.PackageType{}).
		Select("id, name, price").
		Where("active = ?", true).
		Order("name ASC").
		Find(&options).Error
	if err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch package type options", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Package type options fetched successfully", Data: options})
}

// GetPackageType godoc
// @Summary      Get a package type
// @Tags         PackageType
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Package type ID"
// @Success      200 {object} util.APIResponse{data=model.PackageType} "Package type retrieved"
// @Failure      404 {object} util.APIResponse "Package type not found"
// @Router       /package-type/{id} [get]
func GetPackageType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	packageType, err := findPackageType(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Package type fetched successfully", Data: packageType})
}

// UpdatePackageType godoc
// @Summary      Update a package type
// @Description  Replaces catalog data; existing purchased packages keep the price captured at purchase
// @Tags         PackageType
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Package type ID"
// @Param        package_type body packageTypeRequest true "Package type data"
// @Success      200 {object} util.APIResponse{data=model.PackageType} "Package type updated"
// @Failure      404 {object} util.APIResponse "Package type not found"
// @Router       /package-type/{id} [put]
func UpdatePackageType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := packageTypeRequest{}
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

	packageType, err := findPackageType(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	packageType.Name = util.NormalizeName(req.Name)
	packageType.Description = req.Description
	packageType.NumberOfAppointments = req.NumberOfAppointments
	packageType.IsBundle = req.IsBundle
	packageType.Price = req.Price
	packageType.NutritionistRate = req.NutritionistRate

	if err := db.Save(packageType).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update package type", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Package type updated successfully", Data: packageType})
}

// DeactivatePackageType godoc
// @Summary      Deactivate a package type
// @Description  Removes the entry from the sellable catalog without touching sold packages
// @Tags         PackageType
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Package type ID"
// @Success      200 {object} util.APIResponse "Package type deactivated"
// @Failure      404 {object} util.APIResponse "Package type not found"
// @Router       /package-type/{id} [delete]
func DeactivatePackageType(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	packageType, err := findPackageType(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	packageType.Active = false
	if err := db.Save(packageType).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to deactivate package type", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Package type deactivated successfully", Data: nil})
}
