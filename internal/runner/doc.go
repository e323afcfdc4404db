// Package runner provides scoped invocation of external processes with a
// uniform timeout and cancellation contract.
//
// Processes are spawned in their own process group so that expiry of the
// wall-clock budget, or cancellation of the caller's context, terminates
// the full process tree. Platform-specific group handling lives behind
// build-tagged helpers; callers see one interface.
package runner
