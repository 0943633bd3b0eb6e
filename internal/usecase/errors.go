package usecase

import "errors"

var (
	// ErrOperationPending is returned when the same delete or submit is requested again
	// before the first call has resolved. No request is issued.
	ErrOperationPending = errors.New("a previous request for this item is still pending")
	// ErrInvalidForm is returned when schema validation blocks a submit.
	ErrInvalidForm = errors.New("form value is not valid")
	// ErrSchemaNotLoaded is returned when the editor is used before its schema is ready.
	ErrSchemaNotLoaded = errors.New("form schema has not been loaded")
	// ErrAssetsNotReady is returned by views that depend on the asset sequencer before
	// it has completed.
	ErrAssetsNotReady = errors.New("console assets are not loaded")
)
