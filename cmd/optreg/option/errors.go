package option

import "errors"

var (
	ErrDuplicateName     = errors.New("duplicate option name")
	ErrInvalidDefault    = errors.New("invalid default value")
	ErrUnknownOption     = errors.New("unknown option")
	ErrInvalidValue      = errors.New("invalid value")
	ErrInvalidDefinition = errors.New("invalid option definition")
)
