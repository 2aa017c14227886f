package fault

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for fault handling
var (
	ErrListenerAlreadyStarted = goerr.New("fault listener already started")
)
