package stream

import (
	"context"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/rs/zerolog"
)

// Publisher is the part of an mqtt.Client the Streamer needs.
type Publisher interface {
	Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token
}

// Caller runs a function on the goroutine that owns the scene.
type Caller interface {
	Call(ctx context.Context, fn func() error) error
}

// Streamer that streams RGB data frames to an ledrx device.
type Streamer struct {
	client   Publisher
	topic    string
	loop     Caller
	scene    *Scene
	interval time.Duration
	log      zerolog.Logger
}

// NewStreamer creates an instance of a Streamer.
func NewStreamer(client Publisher, topic string, loop Caller, scene *Scene,
	interval time.Duration, log zerolog.Logger) *Streamer {

	s := new(Streamer)
	s.client = client
	s.topic = topic
	s.loop = loop
	s.scene = scene
	s.interval = interval
	s.log = log.With().Str("topic", topic).Logger()
	return s
}

// NextFrame renders the scene on the loop and encodes it.
func (s *Streamer) NextFrame(ctx context.Context) ([]byte, error) {
	var f *Frame
	err := s.loop.Call(ctx, func() error {
		f = s.scene.Render()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return f.MarshalBinary()
}

// SendFrame sends a frame as binary over MQTT to an ledrx device.
func (s *Streamer) SendFrame(ctx context.Context) error {
	b, err := s.NextFrame(ctx)
	if err != nil {
		return err
	}

	token := s.client.Publish(s.topic, 2, false, b)
	token.Wait()
	if err := token.Error(); err != nil {
		return fmt.Errorf("publish frame: %w", err)
	}
	return nil
}

// Run causes the Streamer to send Frames continuously until ctx is done.
// Publish failures are logged and streaming carries on.
func (s *Streamer) Run(ctx context.Context) error {
	publishTimer := time.NewTicker(s.interval)
	defer publishTimer.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-publishTimer.C:
			if err := s.SendFrame(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				s.log.Warn().Err(err).Msg("frame dropped")
			}
		}
	}
}
