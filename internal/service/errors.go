package service

import "errors"

var (
	ErrNotFound        = errors.New("service: not found")
	ErrInvalidName     = errors.New("service: name must not be empty")
	ErrDuplicateName   = errors.New("service: name already exists")
	ErrRenameCollision = errors.New("service: another counterparty already uses that name")
	ErrCategoryInUse   = errors.New("service: category is assigned to transactions")
)
