package endpoint

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/effisoft/nutrilab-api/model"
	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func registerCardPaymentTypeRoutes(r *gin.Engine) {
	r.POST("/card-payment-type", CreateCardPaymentType)
	r.GET("/card-payment-type", ListCardPaymentTypes)
	r.GET("/card-payment-type/:id", GetCardPaymentType)
	r.GET("/card-payment-type/:id/quote", QuoteCardPayment)
}

func seedCardType(t *testing.T, db *gorm.DB, pct string, installments int) model.CardPaymentType {
	t.Helper()
	cardType := model.CardPaymentType{
		Name:                 fmt.Sprintf("%d MSI", installments),
		BankFeePercentage:    decimal.RequireFromString(pct),
		NumberOfInstallments: installments,
		Active:               true,
	}
	if err := db.Create(&cardType).Error; err != nil {
		t.Fatalf("failed to seed card payment type: %v", err)
	}
	return cardType
}

func TestCreateCardPaymentTypeValidation(t *testing.T) {
	r, _ := setupEndpointTest(t)
	registerCardPaymentTypeRoutes(r)

	w := performRequest(r, http.MethodPost, "/card-payment-type", gin.H{
		"name":                   "Bad plan",
		"bank_fee_percentage":    "101.00",
		"number_of_installments": 3,
	})
	assertStatus(t, w, http.StatusBadRequest)

	w = performRequest(r, http.MethodPost, "/card-payment-type", gin.H{
		"name":                   "Bad plan",
		"bank_fee_percentage":    "5.00",
		"number_of_installments": 60,
	})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestQuoteCardPayment(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerCardPaymentTypeRoutes(r)
	cardType := seedCardType(t, db, "5.00", 3)

	w := performRequest(r, http.MethodGet,
		fmt.Sprintf("/card-payment-type/%d/quote?amount=1000.00", cardType.ID), nil)
	assertStatus(t, w, http.StatusOK)

	response := decodeResponse(t, w)
	data := response["data"].(map[string]interface{})

	fee, err := decimal.NewFromString(data["bank_fee"].(string))
	assert.NoError(t, err)
	assert.True(t, fee.Equal(decimal.RequireFromString("50.00")), fee.String())

	installment, err := decimal.NewFromString(data["installment_amount"].(string))
	assert.NoError(t, err)
	assert.True(t, installment.Equal(decimal.RequireFromString("350.00")), installment.String())
}

func TestQuoteCardPaymentInvalidAmount(t *testing.T) {
	r, db := setupEndpointTest(t)
	registerCardPaymentTypeRoutes(r)
	cardType := seedCardType(t, db, "5.00", 3)

	w := performRequest(r, http.MethodGet,
		fmt.Sprintf("/card-payment-type/%d/quote?amount=-10", cardType.ID), nil)
	assertStatus(t, w, http.StatusBadRequest)

	w = performRequest(r, http.MethodGet,
		fmt.Sprintf("/card-payment-type/%d/quote", cardType.ID), nil)
	assertStatus(t, w, http.StatusBadRequest)
}
