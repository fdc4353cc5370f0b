// Package bus connects the coordinator to the MQTT message bus the gong
// devices communicate over. The Bus interface is the only way components
// publish or subscribe; the paho client never leaks out of this package.
package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// A Handler receives every decoded inbound message.
type Handler func(Message)

type Bus interface {
	Publish(topic string, payload any) error
	Subscribe(handler Handler)
	Connected() bool
}

var receivedCounter = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "gong",
	Subsystem: "bus",
	Name:      "messages_received_total",
	Help:      "number of messages received, by topic",
}, []string{"topic"})

var _ Bus = &MQTTBus{}

// MQTTBus implements Bus over an MQTT broker.
type MQTTBus struct {
	client   mqtt.Client
	logger   *slog.Logger
	lock     sync.RWMutex
	handlers []Handler
}

func NewMQTTBus(broker string, clientID string, logger *slog.Logger) *MQTTBus {
	b := MQTTBus{logger: logger}
	opts := mqtt.NewClientOptions().
		AddBroker(broker).
		SetClientID(clientID).
		SetAutoReconnect(true).
		SetOnConnectHandler(b.onConnect).
		SetConnectionLostHandler(func(_ mqtt.Client, err error) {
			logger.Warn("connection to broker lost", slog.Any("err", err))
		})
	b.client = mqtt.NewClient(opts)
	return &b
}

// Run connects to the broker and keeps the connection up until the context is
// cancelled. Subscriptions are (re-)established by the on-connect handler.
func (b *MQTTBus) Run(ctx context.Context) error {
	if token := b.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	b.logger.Debug("connected to broker")
	<-ctx.Done()
	b.client.Disconnect(250)
	b.logger.Debug("disconnected from broker")
	return nil
}

func (b *MQTTBus) onConnect(client mqtt.Client) {
	for _, topic := range InboundTopics {
		if token := client.Subscribe(topic, 0, b.onMessage); token.Wait() && token.Error() != nil {
			b.logger.Error("subscribe failed", slog.String("topic", topic), slog.Any("err", token.Error()))
		}
	}
	b.logger.Info("listening", slog.Any("topics", InboundTopics))
}

func (b *MQTTBus) onMessage(_ mqtt.Client, raw mqtt.Message) {
	receivedCounter.WithLabelValues(raw.Topic()).Inc()
	msg, ok := Decode(raw.Topic(), raw.Payload())
	if !ok {
		return
	}
	b.lock.RLock()
	defer b.lock.RUnlock()
	for _, handler := range b.handlers {
		handler(msg)
	}
}

// Subscribe registers a handler for all inbound topics. Handlers must be
// registered before Run is called.
func (b *MQTTBus) Subscribe(handler Handler) {
	b.lock.Lock()
	defer b.lock.Unlock()
	b.handlers = append(b.handlers, handler)
}

// Publish sends a message on the given topic. A nil payload publishes an
// empty message (used for ping and stop).
func (b *MQTTBus) Publish(topic string, payload any) error {
	var body []byte
	if payload != nil {
		var err error
		if body, err = json.Marshal(payload); err != nil {
			return fmt.Errorf("encode %s: %w", topic, err)
		}
	}
	if token := b.client.Publish(topic, 0, false, body); token.Wait() && token.Error() != nil {
		return fmt.Errorf("publish %s: %w", topic, token.Error())
	}
	return nil
}

func (b *MQTTBus) Connected() bool {
	return b.client.IsConnected()
}
