// Package relay terminates envelope transports over HTTP.
//
// A relay owns an identity. Clients seal messages for it and POST the raw
// sealed bytes to the relay path. The relay unseals each request, records it
// in a transfer tree and passes the tree to a Handler. When the handler
// produces a reply the relay seals it for the message origin and answers
// with the sealed reply as I2P base64 text.
//
// # Status Codes
//
//   - 200: reply body follows
//   - 204: handled, no reply
//   - 400: empty body or the envelope did not open
//   - 405: method other than POST
//   - 413: body larger than MaxBodyBytes
//   - 429: rate limited
//   - 500: handler or sealing failure
//   - 502: a forwarding hop failed
//
// # Handlers
//
// Echo answers with the request content. A Forwarder re-sends the content
// from the relay identity to another relay and hands that relay's answer
// back, attaching the forwarded exchange under the incoming node so the
// trace shows every hop.
//
// Server.Traces keeps the most recent request trees for inspection.
package relay
