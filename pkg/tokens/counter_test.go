package tokens

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEstimate(t *testing.T) {
	assert.Equal(t, 0, Estimate(""))
	assert.Equal(t, 1, Estimate("abc"))
	assert.Equal(t, 1, Estimate("abcd"))
	assert.Equal(t, 2, Estimate("abcde"))
	assert.Equal(t, 1, Estimate("👋"))
}

func TestEstimator_NeverLoadsEncoding(t *testing.T) {
	c := NewEstimator()
	assert.Equal(t, Estimate("What is quantum computing?"), c.Count("What is quantum computing?"))
	assert.NoError(t, c.Err())
}
