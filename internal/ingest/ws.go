package ingest

import (
	"sync"

	"github.com/gorilla/websocket"

	"telemetry-bridge/internal/logging"
)

const maxConnectionsPerDevice = 10

// WebSocketManager tracks live subscriptions per device so triggered alerts
// can be mirrored to connected clients.
type WebSocketManager struct {
	connections map[string]map[*websocket.Conn]bool // deviceID -> set of connections
	mutex       sync.Mutex
	logger      *logging.Logger
}

func NewWebSocketManager(logger *logging.Logger) *WebSocketManager {
	return &WebSocketManager{
		connections: make(map[string]map[*websocket.Conn]bool),
		logger:      logger,
	}
}

// AddWebSocketConnection subscribes a connection to a device's alerts.
func (s *Service) AddWebSocketConnection(deviceID string, conn *websocket.Conn) {
	s.wsManager.AddConnection(deviceID, conn)
}

// RemoveWebSocketConnection drops a subscription.
func (s *Service) RemoveWebSocketConnection(deviceID string, conn *websocket.Conn) {
	s.wsManager.RemoveConnection(deviceID, conn)
}

// AddConnection registers a connection for a device.
func (m *WebSocketManager) AddConnection(deviceID string, conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if _, exists := m.connections[deviceID]; !exists {
		m.connections[deviceID] = make(map[*websocket.Conn]bool)
	}
	if len(m.connections[deviceID]) >= maxConnectionsPerDevice {
		m.logger.Warnf("Max connections reached for device %s", deviceID)
		return
	}
	m.connections[deviceID][conn] = true
	m.logger.Infof("Added WebSocket connection for device %s (total: %d)", deviceID, len(m.connections[deviceID]))
}

// RemoveConnection unregisters a connection.
func (m *WebSocketManager) RemoveConnection(deviceID string, conn *websocket.Conn) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	if conns, exists := m.connections[deviceID]; exists {
		delete(conns, conn)
		if len(conns) == 0 {
			delete(m.connections, deviceID)
		}
		m.logger.Infof("Removed WebSocket connection for device %s (remaining: %d)", deviceID, len(conns))
	}
}

// SendToDevice sends a message to every subscriber of a device, dropping
// connections that fail to write.
func (m *WebSocketManager) SendToDevice(deviceID string, message []byte) {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	conns, exists := m.connections[deviceID]
	if !exists {
		return
	}
	for conn := range conns {
		if err := conn.WriteMessage(websocket.TextMessage, message); err != nil {
			m.logger.Errorf("Failed to send WebSocket message for device %s: %v", deviceID, err)
			delete(conns, conn)
		}
	}
	if len(conns) == 0 {
		delete(m.connections, deviceID)
	}
}
