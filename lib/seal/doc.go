// Package seal turns a message into opaque bytes only one recipient can open,
// and back.
//
// The ECIES sealer agrees an ephemeral P-384 key with the recipient, derives
// a ChaCha20-Poly1305 key with HKDF-SHA384 and encrypts a signed frame:
//
//	ephemeral public (97) | nonce (12) | aead(frame)
//
// The frame carries the version, the origin's public key, the content and the
// origin's signature, so a successful Unseal proves who sent the message and
// that it was sealed for the unsealing identity.
package seal
