package mqtt

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/ptxhome/ptxswitchd/internal/config"
)

const (
	connectTimeout    = 10 * time.Second
	publishTimeout    = 5 * time.Second
	disconnectQuiesce = 1000 // milliseconds
	keepAlive         = 60 * time.Second
	reconnectInterval = 5 * time.Second
	maxReconnectDelay = 2 * time.Minute
)

// Conn is the subset of a broker connection the bridge uses.
type Conn interface {
	Publish(topic string, qos byte, retained bool, payload string) error
	Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error
	OnConnect(fn func())
	Close()
}

// PahoConn is a Conn backed by paho.mqtt.golang.
type PahoConn struct {
	client pahomqtt.Client
	logger *slog.Logger

	mu        sync.RWMutex
	onConnect func()
}

// Dial connects to the broker in cfg. The bridge status topic carries an
// "offline" last will so consumers notice when the daemon dies.
func Dial(cfg config.MQTTConfig, logger *slog.Logger) (*PahoConn, error) {
	if logger == nil {
		logger = slog.Default()
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "ptxswitchd-" + uuid.NewString()[:8]
	}
	topics := Topics{Prefix: cfg.TopicPrefix}

	c := &PahoConn{logger: logger}

	opts := pahomqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(reconnectInterval)
	opts.SetMaxReconnectInterval(maxReconnectDelay)
	opts.SetConnectTimeout(connectTimeout)
	opts.SetKeepAlive(keepAlive)
	// Command handlers call into the device; run them concurrently.
	opts.SetOrderMatters(false)
	opts.SetWill(topics.BridgeStatus(), PayloadOffline, cfg.QoS, true)
	opts.SetOnConnectHandler(func(pahomqtt.Client) {
		logger.Info("mqtt: connected", "broker", cfg.Broker, "client_id", clientID)
		c.mu.RLock()
		fn := c.onConnect
		c.mu.RUnlock()
		if fn != nil {
			fn()
		}
	})
	opts.SetConnectionLostHandler(func(_ pahomqtt.Client, err error) {
		logger.Warn("mqtt: connection lost", "broker", cfg.Broker, "error", err)
	})

	c.client = pahomqtt.NewClient(opts)
	token := c.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		c.client.Disconnect(0)
		return nil, fmt.Errorf("mqtt connect to %s: timeout after %v", cfg.Broker, connectTimeout)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}
	return c, nil
}

// OnConnect sets a callback run after every reconnect.
func (c *PahoConn) OnConnect(fn func()) {
	c.mu.Lock()
	c.onConnect = fn
	c.mu.Unlock()
}

// Publish sends a message and waits for the broker to accept it.
func (c *PahoConn) Publish(topic string, qos byte, retained bool, payload string) error {
	token := c.client.Publish(topic, qos, retained, payload)
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt publish %s: timeout", topic)
	}
	return token.Error()
}

// Subscribe registers handler for topic.
func (c *PahoConn) Subscribe(topic string, qos byte, handler func(topic string, payload []byte)) error {
	token := c.client.Subscribe(topic, qos, func(_ pahomqtt.Client, msg pahomqtt.Message) {
		defer func() {
			if r := recover(); r != nil {
				c.logger.Error("mqtt: handler panic recovered", "topic", msg.Topic(), "panic", r)
			}
		}()
		handler(msg.Topic(), msg.Payload())
	})
	if !token.WaitTimeout(publishTimeout) {
		return fmt.Errorf("mqtt subscribe %s: timeout", topic)
	}
	return token.Error()
}

// Close disconnects, letting pending publishes drain.
func (c *PahoConn) Close() {
	c.client.Disconnect(disconnectQuiesce)
}

var _ Conn = (*PahoConn)(nil)
