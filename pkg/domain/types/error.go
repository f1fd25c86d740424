package types

import "github.com/m-mizutani/goerr/v2"

// Error tags classify failures so callers can decide on exit behavior
// without string matching.
var (
	ErrTagConfig    = goerr.NewTag("config")
	ErrTagAuth      = goerr.NewTag("auth")
	ErrTagRemote    = goerr.NewTag("remote")
	ErrTagChecksum  = goerr.NewTag("checksum")
	ErrTagSizeLimit = goerr.NewTag("size_limit")
)
