package errors_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/scoredock/scoredock/pkg/errors"
)

func TestErrorCode_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "DOCK_001", errors.CodeInputMissing.String())
	assert.Equal(t, "DOCK_002", errors.CodeToolMissing.String())
	assert.Equal(t, "DOCK_003", errors.CodeToolFailure.String())
	assert.Equal(t, "DOCK_004", errors.CodeParseFailure.String())
	assert.Equal(t, "DOCK_005", errors.CodeArtifactMissing.String())
}

func TestIsScoringCode(t *testing.T) {
	t.Parallel()

	for _, code := range []errors.ErrorCode{
		errors.CodeInputMissing,
		errors.CodeToolMissing,
		errors.CodeToolFailure,
		errors.CodeParseFailure,
		errors.CodeArtifactMissing,
	} {
		assert.True(t, errors.IsScoringCode(code), code)
	}

	assert.False(t, errors.IsScoringCode(errors.CodeInternal))
	assert.False(t, errors.IsScoringCode(errors.CodeOK))
	assert.False(t, errors.IsScoringCode(errors.CodeUnknown))
}
