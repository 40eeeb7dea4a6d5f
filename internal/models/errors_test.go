package models

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalysisError_Kinds(t *testing.T) {
	cases := []struct {
		err  error
		kind ErrorKind
	}{
		{NewInvalidInput("bad portfolio"), ErrKindInvalidInput},
		{NewEngineUnavailable(errors.New("dial tcp: refused")), ErrKindEngineUnavailable},
		{NewEngineTimeout(errors.New("deadline exceeded")), ErrKindEngineTimeout},
		{NewEngineRejected(422, &EngineErrorDetail{Message: "unknown symbol"}), ErrKindEngineRejected},
		{NewEmptyResult(), ErrKindEmptyResult},
	}
	for _, tc := range cases {
		t.Run(string(tc.kind), func(t *testing.T) {
			assert.Equal(t, tc.kind, KindOf(tc.err))
			assert.True(t, IsKind(tc.err, tc.kind))
		})
	}
}

func TestKindOf_NonAnalysisError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
	assert.False(t, IsKind(errors.New("plain"), ErrKindInvalidInput))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("analysis failed: %w", NewEngineTimeout(errors.New("slow")))
	assert.Equal(t, ErrKindEngineTimeout, KindOf(err))
	assert.True(t, IsKind(err, ErrKindEngineTimeout))
}

func TestEngineRejected_Detail(t *testing.T) {
	detail := &EngineErrorDetail{
		Message:         "symbols not available",
		AvailableStocks: []string{"RELIANCE", "TCS"},
	}
	err := NewEngineRejected(422, detail)

	var ae *AnalysisError
	require.True(t, errors.As(err, &ae))
	require.NotNil(t, ae.Detail)
	assert.Equal(t, []string{"RELIANCE", "TCS"}, ae.Detail.AvailableStocks)
	assert.Contains(t, err.Error(), "symbols not available")
}

func TestNewInvalidInput_Formats(t *testing.T) {
	err := NewInvalidInput("stock '%s' must have a positive quantity", "TCS")
	assert.Contains(t, err.Error(), "stock 'TCS'")
}
