package notify

import (
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRegisterMessage(t *testing.T) {
	msg, err := parseRegisterMessage([]byte(`{"type":"register","client_id":"sweeper-1"}`))
	require.NoError(t, err)
	assert.Equal(t, RegisterMessageType, msg.Type)
	assert.Equal(t, "sweeper-1", msg.ClientID)

	_, err = parseRegisterMessage([]byte(`{"type":"register"}`))
	assert.Error(t, err)

	_, err = parseRegisterMessage([]byte("garbage"))
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	addr := &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 9999}

	r.Register("a", addr)
	r.Register("b", addr)
	r.Register("", addr) // ignored
	r.Register("c", nil) // ignored
	assert.Len(t, r.Snapshot(), 2)

	// re-registering the same id replaces, not duplicates
	r.Register("a", addr)
	assert.Len(t, r.Snapshot(), 2)

	r.Remove("a")
	assert.Len(t, r.Snapshot(), 1)
}
