// Package identity implements beam identities: NIST P-384 key pairs whose
// public half is carried as a 120 byte X.509 SubjectPublicKeyInfo.
//
// An Identity built with Generate or FromPrivateBytes controls its private
// key and can sign and unseal. An Identity built with FromPublicBytes is a
// peer reference holding only the public key, which is what locators carry.
//
// The public encoding length is fixed for the curve; the address codec's
// fixed-offset parsing depends on PublicKeySize never changing.
package identity
