// Package service contains the application's business logic, orchestrating
// the stores, the listing cache, and the notification queue.
package service

import "errors"

// ErrTaskAlreadyCompleted indicates an attempt to complete a task that is
// already in the completed state.
var ErrTaskAlreadyCompleted = errors.New("task already completed")
