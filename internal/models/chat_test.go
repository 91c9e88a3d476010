package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSamplingParamsRoundTrip(t *testing.T) {
	temp := 0.7
	maxTokens := 2048
	params := SamplingParams{Temperature: &temp, MaxTokens: &maxTokens}

	raw, err := params.Value()
	require.NoError(t, err)

	var decoded SamplingParams
	require.NoError(t, decoded.Scan(raw))
	require.NotNil(t, decoded.Temperature)
	assert.Equal(t, 0.7, *decoded.Temperature)
	require.NotNil(t, decoded.MaxTokens)
	assert.Equal(t, 2048, *decoded.MaxTokens)
	assert.Nil(t, decoded.TopP)
}

func TestSamplingParamsScanNil(t *testing.T) {
	temp := 0.2
	params := SamplingParams{Temperature: &temp}
	require.NoError(t, params.Scan(nil))
	assert.Nil(t, params.Temperature)
}

func TestSamplingParamsScanUnsupported(t *testing.T) {
	var params SamplingParams
	assert.Error(t, params.Scan(42))
}
