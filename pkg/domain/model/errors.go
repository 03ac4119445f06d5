package model

import "github.com/m-mizutani/goerr/v2"

var (
	ErrInvalidEntityType  = goerr.New("invalid entity type")
	ErrInvalidMemoryScope = goerr.New("invalid memory scope")
	ErrEmptyMemoryContent = goerr.New("empty memory content")
)
