package interfaces

import "github.com/m-mizutani/goerr/v2"

// ErrNotFound is returned by repositories when a record does not exist, or
// exists but does not belong to the requesting owner. It lives here so
// callers can test for it without knowing which backend they run on.
var ErrNotFound = goerr.New("record not found")
