package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "Maria Lopez", NormalizeName("  Maria   Lopez  "))
	assert.Equal(t, "Ana", NormalizeName("Ana"))
	assert.Equal(t, "", NormalizeName("   "))
}
