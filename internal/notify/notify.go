// Package notify pushes stale-price alerts over UDP to registered clients
// (re-verification worklists for whoever maintains the verified store).
package notify

import (
	"encoding/json"
	"errors"
	"log"
	"net"
	"sync"

	"cardvault/pkg/models"
)

const (
	RegisterMessageType   = "register"
	StalePriceMessageType = "stale_price"
)

type RegisterMessage struct {
	Type     string `json:"type"`
	ClientID string `json:"client_id"`
}

// StalePriceMessage is one (card, grade) pair due for re-verification.
type StalePriceMessage struct {
	Type         string `json:"type"`
	Key          string `json:"key"`
	Name         string `json:"name"`
	Grade        string `json:"grade"`
	LastVerified string `json:"last_verified"`
	AgeDays      int    `json:"age_days"`
}

type Client struct {
	ClientID string
	Addr     *net.UDPAddr
}

type Registry struct {
	mu      sync.RWMutex
	clients map[string]Client
}

func NewRegistry() *Registry {
	return &Registry{clients: make(map[string]Client)}
}

func (r *Registry) Register(clientID string, addr *net.UDPAddr) {
	if clientID == "" || addr == nil {
		return
	}
	r.mu.Lock()
	r.clients[clientID] = Client{ClientID: clientID, Addr: addr}
	r.mu.Unlock()
}

func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	delete(r.clients, clientID)
	r.mu.Unlock()
}

func (r *Registry) Snapshot() []Client {
	r.mu.RLock()
	defer r.mu.RUnlock()
	clients := make([]Client, 0, len(r.clients))
	for _, client := range r.clients {
		clients = append(clients, client)
	}
	return clients
}

type Server struct {
	addr     string
	registry *Registry
	logger   *log.Logger
	conn     *net.UDPConn
}

func NewServer(addr string, registry *Registry, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	return &Server{addr: addr, registry: registry, logger: logger}
}

func (s *Server) Run() error {
	udpAddr, err := net.ResolveUDPAddr("udp", s.addr)
	if err != nil {
		return err
	}
	conn, err := net.ListenUDP("udp", udpAddr)
	if err != nil {
		return err
	}
	s.conn = conn
	defer conn.Close()

	s.logger.Printf("UDP stale-price notifier listening on %s", s.addr)

	buffer := make([]byte, 2048)
	for {
		n, addr, err := conn.ReadFromUDP(buffer)
		if err != nil {
			return err
		}
		msg, err := parseRegisterMessage(buffer[:n])
		if err != nil {
			s.logger.Printf("invalid UDP message from %s: %v", addr, err)
			continue
		}
		if msg.Type != RegisterMessageType {
			continue
		}
		s.registry.Register(msg.ClientID, addr)
		s.logger.Printf("registered UDP client %s (%s)", msg.ClientID, addr)
	}
}

// BroadcastStale sends one alert per stale entry to every registered
// client. Clients that fail twice in a row are dropped from the registry.
func (s *Server) BroadcastStale(entries []models.StaleEntry) {
	if s.conn == nil {
		s.logger.Printf("UDP stale-price notifier not running")
		return
	}
	if len(entries) == 0 {
		return
	}

	clients := s.registry.Snapshot()
	for _, entry := range entries {
		payload, err := json.Marshal(StalePriceMessage{
			Type:         StalePriceMessageType,
			Key:          entry.Key,
			Name:         entry.Name,
			Grade:        entry.Grade,
			LastVerified: entry.LastVerified,
			AgeDays:      entry.AgeDays,
		})
		if err != nil {
			s.logger.Printf("failed to marshal stale alert: %v", err)
			continue
		}
		for _, client := range clients {
			s.sendWithRetry(client, payload)
		}
	}
}

func (s *Server) sendWithRetry(client Client, payload []byte) {
	if err := s.sendOnce(client, payload); err == nil {
		return
	}
	if err := s.sendOnce(client, payload); err != nil {
		s.logger.Printf("failed to notify client %s at %s: %v", client.ClientID, client.Addr, err)
		s.registry.Remove(client.ClientID)
	}
}

func (s *Server) sendOnce(client Client, payload []byte) error {
	if client.Addr == nil {
		return errors.New("missing client address")
	}
	_, err := s.conn.WriteToUDP(payload, client.Addr)
	return err
}

func parseRegisterMessage(data []byte) (RegisterMessage, error) {
	var msg RegisterMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return msg, err
	}
	if msg.ClientID == "" || msg.Type == "" {
		return msg, errors.New("missing required fields")
	}
	return msg, nil
}
