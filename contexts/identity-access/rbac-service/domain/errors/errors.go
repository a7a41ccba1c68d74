package errors

import "errors"

var (
	ErrRoleNotFound        = errors.New("role not found")
	ErrRoleNameRequired    = errors.New("role name is required")
	ErrRoleAlreadyExists   = errors.New("role already exists")
	ErrSystemRoleImmutable = errors.New("system role cannot be modified")
	ErrPolicyNotFound      = errors.New("policy not found")
	ErrInvalidPermission   = errors.New("invalid permission")
	ErrUserNotFound        = errors.New("user not found")
	ErrUnknownRole         = errors.New("unknown role")
)
