package pagestore

import "errors"

// ErrStore wraps every durable store read or write failure.
// A mutation that returns ErrStore was not applied and emitted no event.
var ErrStore = errors.New("page store failure")
