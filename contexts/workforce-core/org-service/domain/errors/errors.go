package errors

import "errors"

var (
	ErrEmployeeNotFound = errors.New("employee not found")
	ErrManagerNotFound  = errors.New("manager not found")
	ErrInvalidPage      = errors.New("invalid page parameters")
)
