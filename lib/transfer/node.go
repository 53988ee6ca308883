package transfer

import (
	"bytes"

	"github.com/go-i2p/logger"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/go-i2p/go-beam/lib/message"
)

// Node is one step of a message's forwarding trace.
type Node struct {
	id         ulid.ULID
	plaintext  *message.Message
	ciphertext []byte
	parent     *Node
	children   []*Node
}

// New creates a detached, empty node.
func New() *Node {
	return &Node{id: ulid.Make()}
}

// NewWithPlaintext creates a detached node seeded with msg.
func NewWithPlaintext(msg *message.Message) (*Node, error) {
	n := New()
	if err := n.SetPlaintext(msg); err != nil {
		return nil, err
	}
	return n, nil
}

// ID returns the node's sortable identifier.
func (n *Node) ID() ulid.ULID {
	return n.id
}

// SetPlaintext sets the decrypted message.
func (n *Node) SetPlaintext(msg *message.Message) error {
	if msg == nil {
		return oops.Wrapf(ErrInvalidArgument, "plaintext is nil")
	}
	n.plaintext = msg
	return nil
}

// SetCiphertext sets the sealed wire form. The bytes are copied.
func (n *Node) SetCiphertext(data []byte) error {
	if len(data) == 0 {
		return oops.Wrapf(ErrInvalidArgument, "ciphertext is empty")
	}
	n.ciphertext = bytes.Clone(data)
	return nil
}

// Plaintext returns the decrypted message, or nil.
func (n *Node) Plaintext() *message.Message {
	return n.plaintext
}

// Ciphertext returns a copy of the sealed wire form, or nil.
func (n *Node) Ciphertext() []byte {
	return bytes.Clone(n.ciphertext)
}

// HasPlaintext reports whether the node carries a decrypted message.
func (n *Node) HasPlaintext() bool {
	return n.plaintext != nil
}

// HasCiphertext reports whether the node carries sealed bytes.
func (n *Node) HasCiphertext() bool {
	return len(n.ciphertext) > 0
}

// AddChild attaches child under n and fixes child's parent to n.
// Children keep insertion order.
func (n *Node) AddChild(child *Node) error {
	if child == nil {
		return oops.Wrapf(ErrInvalidArgument, "child is nil")
	}
	for anc := n; anc != nil; anc = anc.parent {
		if anc == child {
			return oops.Wrapf(ErrCycle, "node %s", child.id)
		}
	}
	if err := child.setParent(n); err != nil {
		return err
	}
	n.children = append(n.children, child)
	log.WithFields(logger.Fields{
		"at":       "AddChild",
		"parent":   n.id.String(),
		"child":    child.id.String(),
		"children": len(n.children),
	}).Debug("Attached transfer node")
	return nil
}

func (n *Node) setParent(parent *Node) error {
	if parent == nil {
		return oops.Wrapf(ErrInvalidArgument, "parent is nil")
	}
	if n.parent != nil {
		return oops.Wrapf(ErrAlreadyParented, "node %s is under %s", n.id, n.parent.id)
	}
	n.parent = parent
	return nil
}

// HasChildren reports whether any child is attached.
func (n *Node) HasChildren() bool {
	return len(n.children) > 0
}

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the children in insertion order. Never nil.
func (n *Node) Children() []*Node {
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// Root follows parent pointers to the top of the tree.
func (n *Node) Root() *Node {
	root := n
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Depth is the number of hops between n and its root.
func (n *Node) Depth() int {
	depth := 0
	for p := n.parent; p != nil; p = p.parent {
		depth++
	}
	return depth
}

// Len counts the nodes of the subtree rooted at n.
func (n *Node) Len() int {
	count := 0
	_ = n.Walk(func(*Node, int) error {
		count++
		return nil
	})
	return count
}

// Walk visits the subtree rooted at n depth-first in pre-order, passing each
// node's depth relative to n. It stops at the first error fn returns.
func (n *Node) Walk(fn func(node *Node, depth int) error) error {
	return n.walk(fn, 0)
}

func (n *Node) walk(fn func(*Node, int) error, depth int) error {
	if err := fn(n, depth); err != nil {
		return err
	}
	for _, child := range n.children {
		if err := child.walk(fn, depth+1); err != nil {
			return err
		}
	}
	return nil
}
