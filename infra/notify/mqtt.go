package notify

import (
	"encoding/json"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/avstation/stationd/infra/logger"
)

// MQTTConfig defines the connection parameters for the MQTT notification sink.
type MQTTConfig struct {
	Broker   string `json:"broker"`
	ClientID string `json:"client_id"`
	Username string `json:"username"`
	Password string `json:"password"`
	Topic    string `json:"topic"`
	QoS      byte   `json:"qos"`
}

// SetDefaults fills missing fields with sensible values.
func (c *MQTTConfig) SetDefaults() {
	if c.ClientID == "" {
		c.ClientID = "stationd-notifier"
	}
	if c.Topic == "" {
		c.Topic = "station/notifications"
	}
}

type pahoPublisher interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoPublisher {
	return paho.NewClient(opts)
}

// MQTTSink publishes station notifications to an MQTT topic as JSON payloads.
type MQTTSink struct {
	cli   pahoPublisher
	topic string
	qos   byte
	log   logger.Logger
}

// NewMQTTSink connects to the broker and returns a ready sink.
func NewMQTTSink(cfg MQTTConfig) (*MQTTSink, error) {
	cfg.SetDefaults()
	log := logger.New("mqtt-notify")
	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &MQTTSink{cli: c, topic: cfg.Topic, qos: cfg.QoS, log: log}, nil
}

// Receive publishes the notification message to the configured topic.
func (s *MQTTSink) Receive(message string) error {
	payload, err := json.Marshal(struct {
		Message   string `json:"message"`
		Timestamp int64  `json:"timestamp"`
	}{Message: message, Timestamp: time.Now().UnixMilli()})
	if err != nil {
		return err
	}
	token := s.cli.Publish(s.topic, s.qos, false, payload)
	token.Wait()
	if err := token.Error(); err != nil {
		s.log.Errorf("publish failed: %v", err)
		return err
	}
	return nil
}

// Disconnect gracefully closes the MQTT connection.
func (s *MQTTSink) Disconnect() {
	if s.cli != nil && s.cli.IsConnected() {
		s.cli.Disconnect(250)
	}
}
