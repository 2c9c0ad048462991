package vitals

import (
	"encoding/json"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"arogya-app-server/internal/config"
	"arogya-app-server/internal/logger"
	"arogya-app-server/internal/models"
)

const publishTimeout = 2 * time.Second

// Publisher is the part of mqtt.Client the fan-out needs
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// MQTTPublisher forwards each stored sample to a broker topic
type MQTTPublisher struct {
	client Publisher
	topic  string
	qos    byte
	log    *logger.Logger
}

type samplePayload struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
	Unit      string  `json:"unit"`
}

// NewMQTTPublisher creates a publisher over an already connected client
func NewMQTTPublisher(client Publisher, topic string, qos byte, log *logger.Logger) *MQTTPublisher {
	if log == nil {
		log = logger.Discard()
	}
	return &MQTTPublisher{client: client, topic: topic, qos: qos, log: log}
}

// Observe publishes the sample. Broker failures are logged and dropped.
func (p *MQTTPublisher) Observe(sample models.VitalSample) {
	payload, err := json.Marshal(samplePayload{Timestamp: sample.Timestamp, Value: sample.Value, Unit: "bpm"})
	if err != nil {
		p.log.WithComponent("mqtt").WithError(err).Error("Failed to encode vital sample")
		return
	}

	token := p.client.Publish(p.topic, p.qos, false, payload)
	if !token.WaitTimeout(publishTimeout) {
		p.log.WithComponent("mqtt").WithField("topic", p.topic).Warn("Publish timed out")
		return
	}
	if err := token.Error(); err != nil {
		p.log.WithComponent("mqtt").WithError(err).WithField("topic", p.topic).Warn("Publish failed")
	}
}

// ConnectMQTT connects to the configured broker
func ConnectMQTT(cfg config.MQTTConfig, log *logger.Logger) (mqtt.Client, error) {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	opts.SetClientID(fmt.Sprintf("%s-%d", cfg.ClientID, time.Now().Unix()))
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.OnConnect = func(mqtt.Client) {
		log.WithComponent("mqtt").WithField("broker", cfg.Broker).Info("Connected to MQTT broker")
	}
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.WithComponent("mqtt").WithError(err).Warn("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("connect to %s: %w", cfg.Broker, token.Error())
	}
	return client, nil
}
