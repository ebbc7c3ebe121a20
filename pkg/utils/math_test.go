package utils_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/andrescamacho/glp-fleet-go/pkg/utils"
)

func TestMinMax(t *testing.T) {
	assert.Equal(t, 2, utils.Min(2, 7))
	assert.Equal(t, -3, utils.Min(5, -3))
	assert.Equal(t, 7, utils.Max(2, 7))
	assert.Equal(t, 5, utils.Max(5, -3))
}

func TestMinF(t *testing.T) {
	assert.Equal(t, 1.5, utils.MinF(1.5, 2.0))
	assert.Equal(t, -0.5, utils.MinF(-0.5, 0))
}

func TestCeilHours(t *testing.T) {
	// Any started hour counts as a whole one.
	assert.Equal(t, 1.0, utils.CeilHours(0.01))
	assert.Equal(t, 2.0, utils.CeilHours(1.5))
	assert.Equal(t, 3.0, utils.CeilHours(3.0))
	assert.Equal(t, 0.0, utils.CeilHours(0))
}
