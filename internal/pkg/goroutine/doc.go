// Package goroutine runs work off the calling goroutine.
//
// Manager supervises long-lived background jobs such as broker consumers.
// Pool bounds short blocking calls, such as a mail send, and hands their
// result back on a channel.
package goroutine
