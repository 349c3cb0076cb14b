// Package poll implements the relay's bounded poll sequence.
//
// An Executor GETs a caller-supplied URL until the downstream answers with a
// terminal 200, or until its attempt budget runs out. Every other outcome
// (202, the literal "Accepted" body on a 200, any other status, and transport
// failures) consumes one attempt and is retried after a fixed delay.
package poll
