package stream

import (
	"encoding/json"
	"fmt"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledfx/fx"
)

// Subscriber is the part of an mqtt.Client that listens to topics.
type Subscriber interface {
	Subscribe(topic string, qos byte, callback mqtt.MessageHandler) mqtt.Token
}

// AckSource turns frame acknowledgements from the device into animation
// ticks, so effects advance in step with what is actually displayed.
type AckSource struct {
	*fx.FrameEvents
	topic string
	log   zerolog.Logger
}

// NewAckSource creates an instance of an AckSource.
func NewAckSource(topic string, log zerolog.Logger) *AckSource {
	a := new(AckSource)
	a.FrameEvents = fx.NewFrameEvents()
	a.topic = topic
	a.log = log.With().Str("topic", topic).Logger()
	return a
}

// Listen subscribes to the ack topic. Call it again after a reconnect.
func (a *AckSource) Listen(client Subscriber) error {
	token := client.Subscribe(a.topic, 0, a.handleMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", a.topic, token.Error())
	}
	a.log.Info().Msg("listening for acks")
	return nil
}

func (a *AckSource) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	if err := a.handle(msg.Payload()); err != nil {
		a.log.Debug().Err(err).Msg("ignored message")
	}
}

func (a *AckSource) handle(payload []byte) error {
	var message AckMessage
	if err := json.Unmarshal(payload, &message); err != nil {
		return err
	}
	if message.Type != "ack" {
		return fmt.Errorf("unexpected message type %q", message.Type)
	}

	a.log.Trace().Uint8("ackID", message.AckID).Msg("ack")
	a.Notify()
	return nil
}
