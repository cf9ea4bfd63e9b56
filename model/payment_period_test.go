package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPeriodStatus(t *testing.T) {
	assert.True(t, IsValidPeriodStatus(PeriodStatusPending))
	assert.True(t, IsValidPeriodStatus(PeriodStatusPaid))
	assert.True(t, IsValidPeriodStatus(PeriodStatusCancelled))
	assert.False(t, IsValidPeriodStatus("CANCELADA"))
	assert.False(t, IsValidPeriodStatus("pending"))
}
