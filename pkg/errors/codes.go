package errors

// ErrorCode is a string representation of a specific failure condition.
type ErrorCode string

func (c ErrorCode) String() string {
	return string(c)
}

// Common error codes.
const (
	CodeOK           ErrorCode = "OK"
	CodeUnknown      ErrorCode = "COMMON_000"
	CodeInternal     ErrorCode = "COMMON_001"
	CodeInvalidParam ErrorCode = "COMMON_002"
	CodeNotFound     ErrorCode = "COMMON_003"
	CodeTimeout      ErrorCode = "COMMON_004"
	CodeValidation   ErrorCode = "COMMON_005"
)

// Scoring-pipeline error codes.  These five form the complete classification
// of everything that can go wrong between a score request entering the façade
// and a number coming out; the façade degrades each of them to an unscored
// outcome rather than aborting the batch.
const (
	// ErrCodeInputMissing: a source structure file is absent, including after
	// the data-root re-rooting retry.
	ErrCodeInputMissing ErrorCode = "DOCK_001"

	// ErrCodeToolMissing: every candidate path for an external binary
	// (converter, grid generator, docking engine) failed to resolve.
	ErrCodeToolMissing ErrorCode = "DOCK_002"

	// ErrCodeToolFailure: an external process started but exited non-zero.
	ErrCodeToolFailure ErrorCode = "DOCK_003"

	// ErrCodeParseFailure: engine output was captured but no recognized
	// result pattern matched.
	ErrCodeParseFailure ErrorCode = "DOCK_004"

	// ErrCodeArtifactMissing: a tool exited zero but the output artifact it
	// was expected to write does not exist.
	ErrCodeArtifactMissing ErrorCode = "DOCK_005"
)

// Short aliases used throughout the codebase.
const (
	CodeInputMissing    = ErrCodeInputMissing
	CodeToolMissing     = ErrCodeToolMissing
	CodeToolFailure     = ErrCodeToolFailure
	CodeParseFailure    = ErrCodeParseFailure
	CodeArtifactMissing = ErrCodeArtifactMissing
)

// scoringCodes is the closed set of codes the façade treats as an expected,
// per-request degradation rather than a programming error.
var scoringCodes = map[ErrorCode]struct{}{
	CodeInputMissing:    {},
	CodeToolMissing:     {},
	CodeToolFailure:     {},
	CodeParseFailure:    {},
	CodeArtifactMissing: {},
}

// IsScoringCode reports whether code belongs to the scoring failure taxonomy.
func IsScoringCode(code ErrorCode) bool {
	_, ok := scoringCodes[code]
	return ok
}
