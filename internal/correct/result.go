package correct

// Result statuses and error codes, stable strings consumed by the batch
// ledger and the CLI JSON output.
const (
	StatusOK              = "ok"
	StatusWhisperRequired = "whisper_required"
	StatusError           = "error"

	CodeBadAnalysis      = "bad_syncinfo"
	CodeBadSubtitle      = "bad_subtitle"
	CodeEmptySubtitles   = "empty_subtitles"
	CodeCorrectionFailed = "correction_failed"
	CodeWriteFailed      = "write_failed"
	CodeProviderFailed   = "provider_failed"
)

// Result is the structured outcome of one correction invocation. Every
// invocation produces exactly one Result; failures are reported here
// rather than as a bare process error so batch runs keep going.
type Result struct {
	Status     string   `json:"status"`
	Method     Method   `json:"method,omitempty"`
	OutputFile string   `json:"output_file,omitempty"`
	Meta       *Meta    `json:"meta,omitempty"`
	Verdict    *Verdict `json:"verdict,omitempty"`
	ErrorCode  string   `json:"error,omitempty"`
	Detail     string   `json:"detail,omitempty"`
}

// ErrorResult builds a failed Result with a stable error code and a
// human-readable detail.
func ErrorResult(code, detail string) Result {
	return Result{Status: StatusError, ErrorCode: code, Detail: detail}
}

// WhisperResult marks a pair that needs a transcription-based reference
// instead of an automatic correction.
func WhisperResult() Result {
	return Result{Status: StatusWhisperRequired, Method: MethodWhisperRequired}
}
