package linking

import "errors"

// ErrMissingAssertion is returned when resolution is attempted without a profile
var ErrMissingAssertion = errors.New("missing identity assertion")

// ErrMissingStores is returned when the linker has no repository manager
var ErrMissingStores = errors.New("linker requires a repository manager")

// ErrDanglingLink is returned when a link points at an account that does not exist
var ErrDanglingLink = errors.New("identity link references unknown account")
