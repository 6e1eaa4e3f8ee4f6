package refstore

import "errors"

var (
	// ErrStorageUnavailable indicates the on-device reference database could
	// not be opened or reached.
	ErrStorageUnavailable = errors.New("reference storage unavailable")

	// ErrImportAborted indicates a ReplaceAll transaction failed and was
	// rolled back; the prior dataset is retained.
	ErrImportAborted = errors.New("import aborted, prior data retained")
)
