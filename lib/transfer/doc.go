// Package transfer records how a message travels between relays.
//
// Each Node pairs a message's plaintext and/or sealed ciphertext. A relay
// that cannot decrypt what it forwards keeps only the ciphertext. Nodes form
// a tree that only grows: a child is appended each time the message crosses
// a hop, its parent is fixed when it is attached, and nothing is ever
// removed or re-parented.
//
// Children are owned by their parent; the parent pointer is a plain back
// reference. Nodes are not synchronized. A tree must be confined to one
// goroutine or guarded by the caller.
package transfer
