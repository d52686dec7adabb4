package app

import "errors"

var (
	ErrInvalidInput    = errors.New("invalid input")
	ErrPayloadTooLarge = errors.New("payload too large")
	ErrMessageNotFound = errors.New("message not found")
	ErrFileNotFound    = errors.New("file not found")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrStorage         = errors.New("storage failure")
)
