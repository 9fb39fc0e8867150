package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0.00", FormatNumber(0))
	assert.Equal(t, "8.00", FormatNumber(8))
	assert.Equal(t, "120.50", FormatNumber(120.5))
	assert.Equal(t, "1,234.50", FormatNumber(1234.5))
	assert.Equal(t, "1,234,567.89", FormatNumber(1234567.891))
	assert.Equal(t, "-1,234.50", FormatNumber(-1234.5))
}

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$120.00", FormatCurrency(120))
	assert.Equal(t, "$8.00", FormatCurrency(8))
	assert.Equal(t, "$1,050.25", FormatCurrency(1050.25))
}
