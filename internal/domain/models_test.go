package domain

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFlexiblePrice(t *testing.T) {
	var p FlexiblePrice
	require.NoError(t, json.Unmarshal([]byte(`29.5`), &p))
	assert.Equal(t, FlexiblePrice(29.5), p)
	require.NoError(t, json.Unmarshal([]byte(`"12"`), &p))
	assert.Equal(t, FlexiblePrice(12), p)

	for _, raw := range []string{`"NaN"`, `"Inf"`, `"+Inf"`, `"-Infinity"`, `"cheap"`} {
		assert.Error(t, json.Unmarshal([]byte(raw), &p), raw)
	}
}

func TestProductValidatePrice(t *testing.T) {
	p := Product{
		UUID:     "u1",
		Brand:    "loom",
		Name:     "Tee",
		Price:    10,
		Link:     "https://loom.example/tee",
		Released: NewReleaseDate(time.Date(2024, 5, 20, 0, 0, 0, 0, time.UTC)),
	}
	require.NoError(t, p.Validate())

	for _, price := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -1} {
		p.Price = FlexiblePrice(price)
		assert.Error(t, p.Validate(), price)
	}
}
