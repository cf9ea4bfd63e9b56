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

type createNutritionistRequest struct {
	FirstName string `json:"first_name" binding:"required"`
	LastName  string `json:"last_name" binding:"required"`
	Email     string `json:"email" binding:"required,email"`
	Phone     string `json:"phone"`
}

func findNutritionist(db *gorm.DB, id uint) (*model.Nutritionist, error) {
	var nutritionist model.Nutritionist
	if err := db.First(&nutritionist, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.NotFoundError(fmt.Sprintf("Nutritionist with ID %d not found", id))
		}
		return nil, util.PersistenceError("Failed to fetch nutritionist", err)
	}
	return &nutritionist, nil
}

func nutritionistEmailTaken(db *gorm.DB, email string, excludeID uint) (bool, error) {
	var count int64
	query := db.Model(&model.Nutritionist{}).Where("email = ?", email)
	if excludeID != 0 {
		query = query.Where("id <> ?", excludeID)
	}
	if err := query.Count(&count).Error; err != nil {
		return false, util.PersistenceError("Failed to check nutritionist email", err)
	}
	return count > 0, nil
}

// CreateNutritionist godoc
// @Summary      Register a nutritionist
// @Tags         Nutritionist
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        nutritionist body createNutritionistRequest true "Nutritionist data"
// @Success      200 {object} util.APIResponse{data=model.Nutritionist} "Nutritionist created"
// @Failure      400 {object} util.APIResponse "Invalid input"
// @Failure      409 {object} util.APIResponse "Email already registered"
// @Router       /nutritionist [post]
func CreateNutritionist(c *gin.Context) {
	req := createNutritionistRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	taken, err := nutritionistEmailTaken(db, email, 0)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}
	if taken {
		util.RespondServiceError(c, util.ConflictError("A nutritionist with this email already exists"))
		return
	}

	nutritionist := model.Nutritionist{
		FirstName: util.NormalizeName(req.FirstName),
		LastName:  util.NormalizeName(req.LastName),
		Email:     email,
		Phone:     strings.TrimSpace(req.Phone),
		Active:    true,
	}
	if err := db.Create(&nutritionist).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to create nutritionist", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Nutritionist created successfully", Data: nutritionist})
}

// ListNutritionists godoc
// @Summary      List nutritionists
// @Tags         Nutritionist
// @Produce      json
// @Security     SessionToken
// @Param        limit query int false "Limit number of results"
// @Param        offset query int false "Offset for pagination"
// @Param        keyword query string false "Substring match on name or email"
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} util.APIResponse{data=object} "Nutritionists retrieved"
// @Router       /nutritionist [get]
func ListNutritionists(c *gin.Context) {
	q := parseListQuery(c)

	db := getDB(c)
	if db == nil {
		return
	}

	query := db.Model(&model.Nutritionist{}).Order("last_name ASC, first_name ASC")
	countQuery := db.Model(&model.Nutritionist{})
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

	var nutritionists []model.Nutritionist
	if err := applyPagination(query, q).Find(&nutritionists).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to fetch nutritionists", Err: err})
		return
	}
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to count nutritionists", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{
		Msg:  "Nutritionists fetched successfully",
		Data: map[string]interface{}{"total": total, "total_fetched": len(nutritionists), "nutritionists": nutritionists},
	})
}

// GetNutritionist godoc
// @Summary      Get a nutritionist
// @Tags         Nutritionist
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Nutritionist ID"
// @Success      200 {object} util.APIResponse{data=model.Nutritionist} "Nutritionist retrieved"
// @Failure      404 {object} util.APIResponse "Nutritionist not found"
// @Router       /nutritionist/{id} [get]
func GetNutritionist(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	nutritionist, err := findNutritionist(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Nutritionist fetched successfully", Data: nutritionist})
}

// UpdateNutritionist godoc
// @Summary      Update a nutritionist
// @Tags         Nutritionist
// @Accept       json
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Nutritionist ID"
// @Param        nutritionist body model.UpdateNutritionistRequest true "Editable fields"
// @Success      200 {object} util.APIResponse{data=model.Nutritionist} "Nutritionist updated"
// @Failure      404 {object} util.APIResponse "Nutritionist not found"
// @Failure      409 {object} util.APIResponse "Email already registered"
// @Router       /nutritionist/{id} [put]
func UpdateNutritionist(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	req := model.UpdateNutritionistRequest{}
	if err := c.ShouldBindJSON(&req); err != nil {
		util.CallUserError(c, util.APIErrorParams{Msg: "Invalid input data", Err: err})
		return
	}

	db := getDB(c)
	if db == nil {
		return
	}

	nutritionist, err := findNutritionist(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	if req.Email != "" {
		email := strings.ToLower(strings.TrimSpace(req.Email))
		if email != nutritionist.Email {
			taken, err := nutritionistEmailTaken(db, email, nutritionist.ID)
			if err != nil {
				util.RespondServiceError(c, err)
				return
			}
			if taken {
				util.RespondServiceError(c, util.ConflictError("A nutritionist with this email already exists"))
				return
			}
		}
		nutritionist.Email = email
	}
	if req.FirstName != "" {
		nutritionist.FirstName = util.NormalizeName(req.FirstName)
	}
	if req.LastName != "" {
		nutritionist.LastName = util.NormalizeName(req.LastName)
	}
	if req.Phone != "" {
		nutritionist.Phone = strings.TrimSpace(req.Phone)
	}

	if err := db.Save(nutritionist).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to update nutritionist", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Nutritionist updated successfully", Data: nutritionist})
}

// DeactivateNutritionist godoc
// @Summary      Deactivate a nutritionist
// @Tags         Nutritionist
// @Produce      json
// @Security     SessionToken
// @Param        id path int true "Nutritionist ID"
// @Success      200 {object} util.APIResponse "Nutritionist deactivated"
// @Failure      404 {object} util.APIResponse "Nutritionist not found"
// @Router       /nutritionist/{id} [delete]
func DeactivateNutritionist(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	db := getDB(c)
	if db == nil {
		return
	}

	nutritionist, err := findNutritionist(db, id)
	if err != nil {
		util.RespondServiceError(c, err)
		return
	}

	nutritionist.Active = false
	if err := db.Save(nutritionist).Error; err != nil {
		util.CallServerError(c, util.APIErrorParams{Msg: "Failed to deactivate nutritionist", Err: err})
		return
	}

	util.CallSuccessOK(c, util.APISuccessParams{Msg: "Nutritionist deactivated successfully", Data: nil})
}
