package model

import (
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var oneHundred = decimal.NewFromInt(100)

// CardPaymentType is a named installment plan with a bank fee percentage.
type CardPaymentType struct {
	gorm.Model
	Name                 string          `json:"name" gorm:"not null;size:50"`
	Description          string          `json:"description" gorm:"size:200"`
	BankFeePercentage    decimal.Decimal `json:"bank_fee_percentage" gorm:"not null;type:decimal(5,2)"`
	NumberOfInstallments int             `json:"number_of_installments" gorm:"not null"`
	Active               bool            `json:"active" gorm:"not null;default:true"`
}

// FeeAmount is the bank fee for a purchase amount: amount * pct / 100,
// rounded half-up to 2 decimals.
func (c *CardPaymentType) FeeAmount(amount decimal.Decimal) decimal.Decimal {
	return amount.Mul(c.BankFeePercentage).Div(oneHundred).Round(2)
}

// InstallmentAmount is the per-installment charge: (amount + fee) divided by
// the number of installments, rounded half-up to 2 decimals.
func (c *CardPaymentType) InstallmentAmount(amount decimal.Decimal) decimal.Decimal {
	total := amount.Add(c.FeeAmount(amount))
	return total.Div(decimal.NewFromInt(int64(c.NumberOfInstallments))).Round(2)
}
