package message

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/go-i2p/go-beam/lib/identity"
)

func TestValidate(t *testing.T) {
	origin, err := identity.Generate()
	require.NoError(t, err)

	assert.NoError(t, New(origin, []byte("hi")).Validate())
	assert.NoError(t, New(origin, nil).Validate())
	assert.ErrorIs(t, New(nil, []byte("hi")).Validate(), ErrInvalidMessage)
	assert.ErrorIs(t, (&Message{Origin: origin}).Validate(), ErrInvalidMessage)

	var none *Message
	assert.ErrorIs(t, none.Validate(), ErrInvalidMessage)
}

func TestEqual(t *testing.T) {
	origin, err := identity.Generate()
	require.NoError(t, err)
	other, err := identity.Generate()
	require.NoError(t, err)

	m := New(origin, []byte("hi"))
	assert.True(t, m.Equal(New(origin.PublicOnly(), []byte("hi"))))
	assert.False(t, m.Equal(New(other, []byte("hi"))))
	assert.False(t, m.Equal(New(origin, []byte("bye"))))
	assert.False(t, m.Equal(&Message{Version: "2", Origin: origin, Content: []byte("hi")}))
	assert.False(t, m.Equal(nil))
}
