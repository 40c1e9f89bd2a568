package lifecycle

import (
	stderrors "errors"
	"testing"

	"github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type valueError struct {
	msg string
}

func (e *valueError) Error() string { return e.msg }

func TestTaxonomyConstructorsCarryCodes(t *testing.T) {
	cases := []struct {
		err  *errors.Error
		code string
	}{
		{AccessDenied("no"), CodeAccessDenied},
		{InvalidRequest("no"), CodeInvalidRequest},
		{NotFound("no"), CodeNotFound},
		{AlreadyExists("no"), CodeAlreadyExists},
		{ResourceConflict("no"), CodeResourceConflict},
		{Throttling("no"), CodeThrottling},
		{ServiceTimeout("no"), CodeServiceTimeout},
		{NetworkFailure("no"), CodeNetworkFailure},
		{ServiceLimitExceeded("no"), CodeServiceLimitExceeded},
		{InternalFailure("no"), CodeInternalFailure},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.code, tc.err.TextCode)
		assert.Equal(t, tc.code, CodeOf(tc.err))
		assert.True(t, IsTaxonomy(tc.err))
		assert.Equal(t, "no", tc.err.Message)
	}
}

func TestTaxonomyConstructorKeepsBaseMessageWhenEmpty(t *testing.T) {
	err := Throttling("")
	assert.Equal(t, "request throttled", err.Message)
}

func TestCodeOfRejectsForeignErrors(t *testing.T) {
	assert.Empty(t, CodeOf(stderrors.New("boom")))
	assert.False(t, IsTaxonomy(stderrors.New("boom")))

	foreign := errors.New("custom failure", errors.CategoryBadInput).WithTextCode("NotInTheSet")
	assert.Empty(t, CodeOf(foreign))
}

func TestNormalizeKeepsTaxonomyMember(t *testing.T) {
	norm := Normalize(AccessDenied("blah"))
	require.NotNil(t, norm)
	assert.Equal(t, CodeAccessDenied, norm.TextCode)
	assert.Equal(t, "AccessDenied: blah", norm.Message)
}

func TestNormalizeCoercesUnknownErrors(t *testing.T) {
	norm := Normalize(&valueError{msg: "blah"})
	require.NotNil(t, norm)
	assert.Equal(t, CodeInternalFailure, norm.TextCode)
	assert.Equal(t, "valueError: blah", norm.Message)
}

func TestNormalizeCoercesForeignCodedErrors(t *testing.T) {
	foreign := errors.New("blah", errors.CategoryExternal).WithTextCode("SomethingElse")
	norm := Normalize(foreign)
	require.NotNil(t, norm)
	assert.Equal(t, CodeInternalFailure, norm.TextCode)
	assert.Contains(t, norm.Message, "SomethingElse: ")
	assert.Contains(t, norm.Message, "blah")
}

func TestNormalizeNil(t *testing.T) {
	assert.Nil(t, Normalize(nil))
}
