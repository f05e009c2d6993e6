package descriptor

// ClassifyStatus maps an HTTP status code to an Outcome using the
// authoritative table in spec.md section 6. Both the GET and PUT workers
// share this classifier.
func ClassifyStatus(status int) Outcome {
	switch {
	case status == 200 || status == 206:
		return OutcomeOK
	case status == 404:
		return OutcomeNotFound
	case status == 401 || status == 403 || status == 407:
		return OutcomeAuthDenied
	case status >= 300:
		return OutcomeIOError
	default:
		// Other 2xx (e.g. 204) -> SUCCESS.
		return OutcomeOK
	}
}

// ErrorForStatus builds the typed error matching a non-OK classification,
// per spec.md section 7's per-descriptor variant wrapping.
func ErrorForStatus(path string, status int) error {
	switch ClassifyStatus(status) {
	case OutcomeNotFound:
		return &ResourceNotFoundError{Path: path}
	case OutcomeAuthDenied:
		return &AuthDeniedError{Path: path, StatusCode: status}
	case OutcomeIOError:
		return &TransferFailedError{Path: path, StatusCode: status}
	default:
		return nil
	}
}
