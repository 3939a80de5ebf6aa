package upstream

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/plgd-dev/go-coap/v3/message"
	"github.com/plgd-dev/go-coap/v3/message/codes"
	"github.com/plgd-dev/go-coap/v3/udp"
	coapclient "github.com/plgd-dev/go-coap/v3/udp/client"

	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/logger"
)

// CoAPSink publishes telemetry to an upstream CoAP server over UDP
type CoAPSink struct {
	settings  *config.CoAPSettings
	resources ResourceMap
	mu        sync.Mutex
	conn      *coapclient.Conn
}

// NewCoAPSink creates the CoAP channel
func NewCoAPSink(settings *config.CoAPSettings, resources ResourceMap) *CoAPSink {
	return &CoAPSink{
		settings:  settings,
		resources: resources,
	}
}

// Name identifies the channel
func (s *CoAPSink) Name() string {
	return "coap"
}

// Connect dials the CoAP server
func (s *CoAPSink) Connect(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	addr := fmt.Sprintf("%s:%d", s.settings.Host, s.settings.Port)
	conn, err := udp.Dial(addr)
	if err != nil {
		return fmt.Errorf("error dialing CoAP server %s: %w", addr, err)
	}

	s.conn = conn
	logger.LogInfo("✅ CoAP channel connected to %s", addr)
	return nil
}

// Disconnect closes the CoAP session
func (s *CoAPSink) Disconnect() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn != nil {
		if err := s.conn.Close(); err != nil {
			logger.LogWarn("⚠️ Error closing CoAP session: %v", err)
		}
		s.conn = nil
	}
	logger.LogInfo("🛑 CoAP channel disconnected")
}

// Publish POSTs a serialized entity to the path mapped for the resource kind
func (s *CoAPSink) Publish(ctx context.Context, resource string, payload []byte) error {
	path, ok := s.resources.Resolve(resource)
	if !ok {
		logger.LogWarn("⚠️ No CoAP path mapped for resource '%s', message dropped", resource)
		return nil
	}

	s.mu.Lock()
	conn := s.conn
	s.mu.Unlock()

	if conn == nil {
		return fmt.Errorf("CoAP channel is not connected")
	}

	timeout := s.settings.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := conn.Post(reqCtx, path, message.AppJSON, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("error posting to %s: %w", path, err)
	}

	switch resp.Code() {
	case codes.Created, codes.Changed, codes.Valid, codes.Content:
		logger.LogDebug("📤 Posted %d bytes → %s (%v)", len(payload), path, resp.Code())
		return nil
	default:
		return fmt.Errorf("CoAP server rejected post to %s: %v", path, resp.Code())
	}
}
