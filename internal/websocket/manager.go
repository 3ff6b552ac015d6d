package websocket

import (
	"encoding/json"
	"log"
	"sync"
	"time"
)

type ClientMessage struct {
	Client  *Client
	Message []byte
}

// Manager tracks connected terminals per user and fans change events out to
// them. It implements the sync service's Notifier interface.
type Manager struct {
	clients        map[string]*Client
	userIndex      map[string]map[string]bool
	mu             sync.RWMutex
	Register       chan *Client
	Unregister     chan *Client
	Inbound        chan *ClientMessage
	maxConnPerUser int
	writeWait      time.Duration
	pongWait       time.Duration
	pingPeriod     time.Duration
}

func NewManager(maxConnPerUser int, writeWait, pongWait, pingPeriod time.Duration) *Manager {
	return &Manager{
		clients:        make(map[string]*Client),
		userIndex:      make(map[string]map[string]bool),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
		Inbound:        make(chan *ClientMessage),
		maxConnPerUser: maxConnPerUser,
		writeWait:      writeWait,
		pongWait:       pongWait,
		pingPeriod:     pingPeriod,
	}
}

func (m *Manager) Run() {
	for {
		select {
		case client := <-m.Register:
			m.registerClient(client)

		case client := <-m.Unregister:
			m.unregisterClient(client)

		case clientMsg := <-m.Inbound:
			m.processInbound(clientMsg)
		}
	}
}

func (m *Manager) registerClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.userIndex[client.UserID] == nil {
		m.userIndex[client.UserID] = make(map[string]bool)
	}

	if len(m.userIndex[client.UserID]) >= m.maxConnPerUser {
		log.Printf("max connections reached for user %s", client.UserID)
		close(client.Send)
		return
	}

	m.clients[client.ID] = client
	m.userIndex[client.UserID][client.ID] = true

	log.Printf("client registered: %s (user: %s, terminal: %s)", client.ID, client.UserID, client.TerminalID)
}

func (m *Manager) unregisterClient(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.clients[client.ID]; ok {
		delete(m.clients, client.ID)
		delete(m.userIndex[client.UserID], client.ID)

		if len(m.userIndex[client.UserID]) == 0 {
			delete(m.userIndex, client.UserID)
		}

		close(client.Send)
		log.Printf("client unregistered: %s", client.ID)
	}
}

// processInbound answers pings; terminals only receive change events, all
// mutations go through the HTTP API.
func (m *Manager) processInbound(clientMsg *ClientMessage) {
	var msg Message
	if err := json.Unmarshal(clientMsg.Message, &msg); err != nil {
		log.Printf("error unmarshaling message: %v", err)
		return
	}

	if msg.Event == EventPing {
		pong, err := NewMessage(EventPong, nil)
		if err != nil {
			return
		}
		data, err := json.Marshal(pong)
		if err != nil {
			return
		}
		select {
		case clientMsg.Client.Send <- data:
		default:
		}
	}
}

// NotifyUser sends an event to every connection a user has open. Send
// failures drop the message; terminals reconcile on their next sync.
func (m *Manager) NotifyUser(userID, event string, payload any) {
	message, err := NewMessage(EventType(event), payload)
	if err != nil {
		log.Printf("failed to build ws message: %v", err)
		return
	}

	if err := m.BroadcastToUser(userID, message, ""); err != nil {
		log.Printf("failed to broadcast to user %s: %v", userID, err)
	}
}

// BroadcastToUser fans a message out to the user's connections, skipping
// the terminal the change came from.
func (m *Manager) BroadcastToUser(userID string, message *Message, excludeTerminalID string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, err := json.Marshal(message)
	if err != nil {
		return err
	}

	clientIDs, exists := m.userIndex[userID]
	if !exists {
		return nil
	}

	for clientID := range clientIDs {
		client := m.clients[clientID]
		if excludeTerminalID != "" && client.TerminalID == excludeTerminalID {
			continue
		}
		select {
		case client.Send <- data:
		default:
			log.Printf("client %s send buffer full, dropping message", clientID)
		}
	}

	return nil
}

func (m *Manager) UserConnections(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if clients, exists := m.userIndex[userID]; exists {
		return len(clients)
	}
	return 0
}
