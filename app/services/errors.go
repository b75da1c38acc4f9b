package services

import "errors"

var (
	// ErrInvalidMediaType is returned for uploads outside the image
	// allow-list. Nothing is written to the object store.
	ErrInvalidMediaType = errors.New("unsupported media type")

	// ErrPayloadTooLarge is returned for uploads above the size cap.
	ErrPayloadTooLarge = errors.New("payload exceeds size limit")

	// ErrUploadFailed wraps an object store failure during upload.
	ErrUploadFailed = errors.New("image upload failed")

	// ErrPublishFailed wraps a broker failure. The mutation that triggered
	// the event has already been persisted when this is returned.
	ErrPublishFailed = errors.New("event publish failed")

	// ErrInvalidQuantity is returned for non-positive deduction quantities
	// and negative availability checks.
	ErrInvalidQuantity = errors.New("quantity must be a positive number")
)
