package upstream

import (
	"context"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"iot-edge-controller/pkg/config"
	"iot-edge-controller/pkg/logger"
)

// CommandHandler receives inbound command payloads from the broker
type CommandHandler func(resource string, payload []byte)

// MQTTSink publishes telemetry to an MQTT broker and relays inbound
// actuation commands back to the control hub
type MQTTSink struct {
	client    paho.Client
	settings  *config.MQTTSettings
	resources ResourceMap
	handler   CommandHandler
}

// NewMQTTSink creates the MQTT channel. handler may be nil when inbound
// commands are not wanted.
func NewMQTTSink(settings *config.MQTTSettings, resources ResourceMap, handler CommandHandler) *MQTTSink {
	opts := paho.NewClientOptions()
	opts.AddBroker(fmt.Sprintf("tcp://%s:%d", settings.Broker, settings.Port))
	opts.SetClientID(settings.ClientID)
	opts.SetUsername(settings.Username)
	opts.SetPassword(settings.Password)
	opts.SetAutoReconnect(true)

	keepAlive := settings.KeepAlive
	if keepAlive == 0 {
		keepAlive = 60
	}
	opts.SetKeepAlive(time.Duration(keepAlive) * time.Second)
	opts.SetPingTimeout(10 * time.Second)

	// Last Will marks the device offline when the session drops
	opts.SetWill(settings.StatusTopic, "offline", 1, true)

	sink := &MQTTSink{
		settings:  settings,
		resources: resources,
		handler:   handler,
	}

	opts.SetOnConnectHandler(func(client paho.Client) {
		logger.LogInfo("✅ MQTT channel connected to broker %s:%d", settings.Broker, settings.Port)

		if token := client.Publish(settings.StatusTopic, 1, true, "online"); token.Wait() && token.Error() != nil {
			logger.LogWarn("⚠️ Error publishing online status on connect: %v", token.Error())
		}

		if sink.handler != nil && settings.CommandTopic != "" {
			if token := client.Subscribe(settings.CommandTopic, settings.QoS, sink.onCommand); token.Wait() && token.Error() != nil {
				logger.LogError("❌ Error subscribing to %s: %v", settings.CommandTopic, token.Error())
			} else {
				logger.LogInfo("📡 MQTT channel subscribed to: %s", settings.CommandTopic)
			}
		}
	})

	opts.SetConnectionLostHandler(func(client paho.Client, err error) {
		logger.LogError("❌ MQTT channel disconnected: %v", err)
	})

	sink.client = paho.NewClient(opts)
	return sink
}

// Name identifies the channel
func (s *MQTTSink) Name() string {
	return "mqtt"
}

// Connect connects to the broker with infinite retry
func (s *MQTTSink) Connect(ctx context.Context) error {
	retryDelay := time.Duration(s.settings.RetryDelay) * time.Millisecond
	if retryDelay == 0 {
		retryDelay = 5000 * time.Millisecond
	}

	attempt := 1
	for {
		logger.LogDebug("🔄 Attempting to connect MQTT channel to broker (attempt %d)...", attempt)

		if token := s.client.Connect(); token.Wait() && token.Error() != nil {
			logger.LogError("❌ MQTT channel connection failed (attempt %d): %v", attempt, token.Error())
			logger.LogInfo("⏳ Retrying in %.0f seconds...", retryDelay.Seconds())

			select {
			case <-ctx.Done():
				return fmt.Errorf("MQTT channel connection cancelled: %w", ctx.Err())
			case <-time.After(retryDelay):
				attempt++
				continue
			}
		}

		// Token success is not session establishment, poll for the session
		connected := false
		for i := 0; i < 50; i++ {
			if s.client.IsConnected() {
				connected = true
				break
			}
			select {
			case <-ctx.Done():
				return fmt.Errorf("MQTT channel connection cancelled during establishment: %w", ctx.Err())
			case <-time.After(100 * time.Millisecond):
			}
		}

		if connected {
			logger.LogInfo("✅ MQTT channel connected to broker after %d attempts", attempt)
			return nil
		}

		logger.LogWarn("⏰ MQTT channel connection establishment timeout (attempt %d)", attempt)

		select {
		case <-ctx.Done():
			return fmt.Errorf("MQTT channel connection cancelled during timeout: %w", ctx.Err())
		case <-time.After(retryDelay):
			attempt++
			continue
		}
	}
}

// Disconnect publishes the offline status and tears the session down
func (s *MQTTSink) Disconnect() {
	if s.client.IsConnected() {
		if token := s.client.Publish(s.settings.StatusTopic, 1, true, "offline"); token.Wait() && token.Error() != nil {
			logger.LogWarn("⚠️ Error publishing offline status: %v", token.Error())
		}
		s.client.Disconnect(250)
	}
	logger.LogInfo("🛑 MQTT channel disconnected")
}

// Publish sends a serialized entity to the topic mapped for the resource kind
func (s *MQTTSink) Publish(ctx context.Context, resource string, payload []byte) error {
	topic, ok := s.resources.Resolve(resource)
	if !ok {
		logger.LogWarn("⚠️ No MQTT topic mapped for resource '%s', message dropped", resource)
		return nil
	}

	if !s.client.IsConnected() {
		return fmt.Errorf("MQTT channel is not connected")
	}

	token := s.client.Publish(topic, s.settings.QoS, false, payload)
	if !token.WaitTimeout(10 * time.Second) {
		return fmt.Errorf("timeout publishing to %s", topic)
	}
	if token.Error() != nil {
		return fmt.Errorf("error publishing to %s: %w", topic, token.Error())
	}

	logger.LogDebug("📤 Published %d bytes → %s", len(payload), topic)
	return nil
}

// PublishDiagnostic publishes an error code and message on the diagnostic topic
func (s *MQTTSink) PublishDiagnostic(ctx context.Context, code int, message string) error {
	payload := fmt.Sprintf(`{"code":%d,"message":%q,"timestamp":%q}`,
		code, message, time.Now().UTC().Format(time.RFC3339))
	return s.Publish(ctx, ResourceDiagnostic, []byte(payload))
}

// StartHeartbeat periodically refreshes the retained online status until
// the context is cancelled
func (s *MQTTSink) StartHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if !s.client.IsConnected() {
					continue
				}
				if token := s.client.Publish(s.settings.StatusTopic, 1, true, "online"); token.Wait() && token.Error() != nil {
					logger.LogWarn("⚠️ Error publishing heartbeat: %v", token.Error())
				}
			}
		}
	}()
}

// IsConnected checks the broker session
func (s *MQTTSink) IsConnected() bool {
	return s.client.IsConnected()
}

// onCommand relays an inbound broker message to the registered handler
func (s *MQTTSink) onCommand(client paho.Client, msg paho.Message) {
	logger.LogDebug("📥 Inbound message on %s (%d bytes)", msg.Topic(), len(msg.Payload()))
	s.handler(ResourceActuatorCmd, msg.Payload())
}
