package adapter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalCanonical(t *testing.T) {
	j := NewJSON()

	a, err := j.MarshalCanonical(map[string]interface{}{"b": 1.50, "a": []int{2, 1}})
	require.NoError(t, err)
	assert.Equal(t, `{"a":[2,1],"b":1.5}`, string(a))

	type doc struct {
		Z string  `json:"z"`
		A float64 `json:"a"`
	}
	b, err := j.MarshalCanonical(doc{Z: "x", A: 0.0125})
	require.NoError(t, err)
	assert.Equal(t, `{"a":0.0125,"z":"x"}`, string(b))
}

func TestMarshalCanonical_Error(t *testing.T) {
	_, err := NewJSON().MarshalCanonical(make(chan int))
	assert.Error(t, err)
}
