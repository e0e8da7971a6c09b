package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalCPF(t *testing.T) {
	assert.Equal(t, "12345678900", CanonicalCPF("123.456.789-00"))
	assert.Equal(t, "12345678900", CanonicalCPF(" 123 456 789 00 "))
	assert.Equal(t, "12345678900", CanonicalCPF("12345678900"))
	assert.Equal(t, "", CanonicalCPF("abc"))
}

func TestFormatCPF(t *testing.T) {
	assert.Equal(t, "123.456.789-00", FormatCPF("12345678900"))
	assert.Equal(t, "123.456.789-00", FormatCPF("123.456.789-00"))
	assert.Equal(t, "1234", FormatCPF("12-34"))
}
