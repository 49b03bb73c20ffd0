package currency

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormat(t *testing.T) {
	assert.Equal(t, "EUR 412.30", Format(412.3, "EUR"))
	assert.Equal(t, "USD 1,234.56", Format(1234.56, "USD"))
	assert.Equal(t, "EUR 1,000,000.00", Format(1000000, "EUR"))
	assert.Equal(t, "GBP 0.99", Format(0.99, "GBP"))
	assert.Equal(t, "-EUR 42.00", Format(-42, "EUR"))
}
