// Package envelope carries a message to a remote identity and, optionally,
// brings its reply back.
//
// A Sender seals each message for its target's recipient, posts the sealed
// bytes through a transport and, for round trips, decodes the response as
// I2P base64 text before unsealing it with the local identity. Requests go
// out as raw bytes while responses come back as text; both ends of the relay
// protocol rely on that asymmetry.
//
// Calls block until the transport answers or the context is done. Nothing is
// retried.
package envelope
