// Package bridge exposes a console session over MQTT.
//
// Commands arrive on <prefix>/<control>/set as JSON payloads (see package
// command). The control list is published retained on <prefix>/controls
// whenever the client connects.
package bridge

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/zberg/go-easyremote/internal/command"
)

// Conf holds the MQTT client settings.
type Conf struct {
	Broker   string // Broker - URL such as tcp://localhost:1883.
	ClientID string // ClientID - empty means a random id.
	User     string
	Password string
	Prefix   string // Prefix - topic prefix.
	Qos      byte
}

// Bridge forwards MQTT commands to a Dispatcher.
type Bridge struct {
	ctx        context.Context
	log        *slog.Logger
	cfg        Conf
	dispatcher *command.Dispatcher
	client     mqtt.Client
}

// New creates a bridge. It does not connect until Start.
func New(log *slog.Logger, cfg Conf, d *command.Dispatcher) *Bridge {
	if cfg.ClientID == "" {
		cfg.ClientID = "easyremote-" + uuid.NewString()
	}
	return &Bridge{
		ctx:        context.Background(),
		log:        log.With("module", "mqtt"),
		cfg:        cfg,
		dispatcher: d,
	}
}

// Start connects to the broker. Subscriptions are (re)made on every
// connect so they survive reconnects.
func (b *Bridge) Start(ctx context.Context) error {
	b.ctx = ctx

	opts := mqtt.NewClientOptions().
		AddBroker(b.cfg.Broker).
		SetClientID(b.cfg.ClientID).
		SetUsername(b.cfg.User).
		SetPassword(b.cfg.Password).
		SetOnConnectHandler(b.connectHandler).
		SetConnectionLostHandler(b.connectLostHandler).
		SetOrderMatters(true).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second).
		SetMaxReconnectInterval(30 * time.Second).
		SetKeepAlive(30 * time.Second)

	b.client = mqtt.NewClient(opts)

	token := b.client.Connect()
	select {
	case <-token.Done():
		if token.Error() != nil {
			return token.Error()
		}
	case <-ctx.Done():
		// Stop the connect retry loop.
		b.client.Disconnect(0)
		return fmt.Errorf("connect %s: %w", b.cfg.Broker, ctx.Err())
	}

	b.log.Info("connected", "broker", b.cfg.Broker, "clientID", b.cfg.ClientID)
	return nil
}

// Stop disconnects from the broker.
func (b *Bridge) Stop() {
	if b.client != nil && b.client.IsConnected() {
		b.client.Disconnect(500)
	}
}

func (b *Bridge) controlsTopic() string { return b.cfg.Prefix + "/controls" }

func (b *Bridge) commandFilter() string { return b.cfg.Prefix + "/+/set" }

// controlName extracts the control name from a command topic.
func (b *Bridge) controlName(topic string) (string, bool) {
	name, ok := strings.CutPrefix(topic, b.cfg.Prefix+"/")
	if !ok {
		return "", false
	}
	name, ok = strings.CutSuffix(name, "/set")
	if !ok || name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}

func (b *Bridge) connectHandler(c mqtt.Client) {
	b.log.Info("client connected to server")

	payload, err := json.Marshal(b.dispatcher.Controls())
	if err != nil {
		b.log.Error("encode control list", "error", err)
		return
	}
	c.Publish(b.controlsTopic(), b.cfg.Qos, true, payload)

	token := c.Subscribe(b.commandFilter(), b.cfg.Qos, b.messageHandler)
	go func() {
		select {
		case <-b.ctx.Done():
			return
		case <-token.Done():
			if token.Error() != nil {
				b.log.Error("subscription error", "topic", b.commandFilter(), "error", token.Error())
				return
			}
		}
		b.log.Debug("subscribed", "topic", b.commandFilter())
	}()
}

func (b *Bridge) connectLostHandler(_ mqtt.Client, err error) {
	b.log.Error("server connect lost", "error", err)
}

func (b *Bridge) messageHandler(_ mqtt.Client, msg mqtt.Message) {
	b.log.Debug("received message", "topic", msg.Topic(), "payload", string(msg.Payload()))

	name, ok := b.controlName(msg.Topic())
	if !ok {
		b.log.Warn("unexpected topic", "topic", msg.Topic())
		return
	}

	p, err := command.Decode(msg.Payload())
	if err != nil {
		b.log.Error("message could not be parsed", "topic", msg.Topic(), "error", err)
		return
	}

	if err := b.dispatcher.Dispatch(b.ctx, name, p); err != nil {
		b.log.Error("command failed", "control", name, "error", err)
	}
}
