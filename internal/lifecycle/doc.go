// Package lifecycle drives a custom resource through its
// Create, PollCreate, Update and Delete phases.
//
// A [Machine] is bound to one [Provisioner] at construction time. Each
// invocation carries a CloudFormation custom resource event, optionally
// extended with the poll block written by a previous Create. The machine
// calls exactly one phase handler, converts the typed result into a
// completion report and, while creation is pending, asks a [Scheduler] to
// invoke it again. Nothing is kept in memory between invocations: the poll
// block travels inside the request and the bounded poll counter lives in a
// statestore.Store.
package lifecycle
