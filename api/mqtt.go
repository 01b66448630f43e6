package api

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

// Listener takes effect commands from an MQTT topic.
type Listener struct {
	topic      string
	loop       fx.Poster
	dispatcher *Dispatcher
	log        zerolog.Logger
}

// NewListener creates an instance of a Listener.
func NewListener(topic string, loop fx.Poster, dispatcher *Dispatcher, log zerolog.Logger) *Listener {
	l := new(Listener)
	l.topic = topic
	l.loop = loop
	l.dispatcher = dispatcher
	l.log = log.With().Str("topic", topic).Logger()
	return l
}

// Subscribe listens on the command topic. Call it again after a reconnect.
func (l *Listener) Subscribe(client Subscriber) error {
	token := client.Subscribe(l.topic, 1, l.handleMessage)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("subscribe %s: %w", l.topic, token.Error())
	}
	l.log.Info().Msg("listening for commands")
	return nil
}

func (l *Listener) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var cmd Command
	if err := json.Unmarshal(msg.Payload(), &cmd); err != nil {
		l.log.Warn().Err(err).Msg("bad command")
		return
	}

	l.loop.Post(func() {
		if err := l.dispatcher.Execute(cmd); err != nil {
			l.log.Warn().Err(err).Str("marker", cmd.Marker).Msg("command rejected")
		}
	})
}
