// Package address implements beam locators, the shareable strings naming a
// relay and optionally one of its clients by their public keys.
//
// A full locator looks like
//
//	beam:<164 base58 chars>/<164 base58 chars>?name=<base58 name>
//
// and a server-only locator is just the scheme and the first key segment.
// Keys are the 120 byte P-384 SubjectPublicKeyInfo of each identity in
// fixed-width base58, so segments are found by offset, not by tokenizing.
// This only holds while every key encodes to exactly KeyLength characters,
// which the package asserts at init. Supporting a second key scheme would
// need length-prefixed or delimited segments instead.
//
// Locators never carry private key material. All functions are pure and
// safe for concurrent use.
package address
