package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/YuminosukeSato/goglmnet/pkg/errors"
)

func TestStateManager(t *testing.T) {
	s := NewStateManager()
	assert.False(t, s.IsFitted())

	err := s.RequireFitted("ElasticNetCV", "Predict")
	require.Error(t, err)
	var nf *errors.NotFittedError
	assert.True(t, errors.As(err, &nf))

	s.SetDimensions(5, 100)
	s.SetFitted()
	assert.NoError(t, s.RequireFitted("ElasticNetCV", "Predict"))
	assert.NoError(t, s.RequireFeatures("Predict", 5))

	err = s.RequireFeatures("Predict", 4)
	var de *errors.DimensionError
	assert.True(t, errors.As(err, &de))

	f, n := s.GetDimensions()
	assert.Equal(t, 5, f)
	assert.Equal(t, 100, n)

	s.Reset()
	assert.False(t, s.IsFitted())
	f, n = s.GetDimensions()
	assert.Zero(t, f)
	assert.Zero(t, n)
}

func TestModelWeightsRoundTrip(t *testing.T) {
	mw := &ModelWeights{
		ModelType:       "ElasticNetCV",
		Version:         "1.0.0",
		Family:          "normal",
		Lambda:          0.05,
		Coefficients:    []float64{1.5, 0, -2},
		Intercept:       0.3,
		Hyperparameters: map[string]interface{}{"alpha": 0.5},
		IsFitted:        true,
	}
	data, err := mw.ToJSON()
	require.NoError(t, err)

	var got ModelWeights
	require.NoError(t, got.FromJSON(data))
	assert.Equal(t, mw.Coefficients, got.Coefficients)
	assert.Equal(t, mw.Family, got.Family)
	assert.InDelta(t, 0.05, got.Lambda, 0)

	clone := mw.Clone()
	clone.Coefficients[0] = 99
	assert.Equal(t, 1.5, mw.Coefficients[0])
}

func TestModelWeightsValidate(t *testing.T) {
	tests := []struct {
		name string
		mw   ModelWeights
	}{
		{"missing type", ModelWeights{Version: "1"}},
		{"missing version", ModelWeights{ModelType: "x"}},
		{"unfitted with coefficients", ModelWeights{ModelType: "x", Version: "1", Coefficients: []float64{1}}},
		{"fitted without coefficients", ModelWeights{ModelType: "x", Version: "1", IsFitted: true}},
		{"negative lambda", ModelWeights{ModelType: "x", Version: "1", IsFitted: true, Coefficients: []float64{1}, Lambda: -1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.mw.Validate())
		})
	}
}
