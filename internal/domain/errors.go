package domain

import "errors"

var (
	ErrNoDocument          = errors.New("no document provided")
	ErrRasterizationFailed = errors.New("document rasterization failed")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrInvalidModelConfig  = errors.New("invalid model configuration")
)
