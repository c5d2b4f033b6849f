package sync

import (
	"bufio"
	"encoding/json"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHubBroadcastToTCPSubscriber(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	hub := NewHub()

	clientDone := make(chan PriceEvent, 1)
	go func() {
		conn, err := net.Dial("tcp", ln.Addr().String())
		if err != nil {
			close(clientDone)
			return
		}
		defer conn.Close()

		sc := bufio.NewScanner(conn)
		if sc.Scan() {
			var ev PriceEvent
			if json.Unmarshal(sc.Bytes(), &ev) == nil {
				clientDone <- ev
			}
		}
		close(clientDone)
	}()

	serverConn, err := ln.Accept()
	require.NoError(t, err)
	defer serverConn.Close()
	hub.Add(serverConn)

	sent := NewPriceEvent(EventPriceAdded, "2003_topps_chrome_lebron_james_111", "PSA 10", 1000, 1500)
	hub.Broadcast(sent)

	got, ok := <-clientDone
	require.True(t, ok)
	assert.Equal(t, sent.ID, got.ID)
	assert.Equal(t, EventPriceAdded, got.Type)
	assert.Equal(t, "2003_topps_chrome_lebron_james_111", got.Key)
	assert.Equal(t, 1000.0, got.Min)

	stats := hub.Stats()
	assert.Equal(t, 1, stats.TCPClients)
	assert.Equal(t, 1, stats.EventsPublished)
}

func TestHubRemoveDropsSubscriber(t *testing.T) {
	hub := NewHub()
	a, b := net.Pipe()
	defer a.Close()
	defer b.Close()

	hub.Add(a)
	assert.Equal(t, 1, hub.Stats().TCPClients)

	hub.Remove(a)
	assert.Equal(t, 0, hub.Stats().TCPClients)
}

func TestNewPriceEventFields(t *testing.T) {
	ev := NewPriceEvent(EventPriceDeleted, "some_key", "", 0, 0)

	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, EventPriceDeleted, ev.Type)
	assert.Equal(t, "some_key", ev.Key)
	assert.False(t, ev.At.IsZero())
}
