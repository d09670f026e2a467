package services

import "errors"

var (
	ErrUnknownFormat = errors.New("unknown front matter format")
	ErrDuplicateSlug = errors.New("duplicate slug")
	ErrInvalidPath   = errors.New("invalid path")
	ErrDraftExists   = errors.New("draft already exists")
	ErrNoDrafts      = errors.New("no drafts found")
)
