package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledfx/api"
	"github.com/matt-g-everett/ledfx/fx"
	"github.com/matt-g-everett/ledfx/logging"
	"github.com/matt-g-everett/ledfx/stream"
	"github.com/matt-g-everett/ledfx/util"
)

type app struct {
	Config   stream.Config
	Log      zerolog.Logger
	Client   mqtt.Client
	Loop     *fx.Loop
	Scene    *stream.Scene
	Acks     *stream.AckSource
	Commands *api.Listener
	Streamer *stream.Streamer
	Api      *api.Api
}

func newApp(config stream.Config, log zerolog.Logger) *app {
	a := new(app)
	a.Config = config
	a.Log = log
	a.Loop = fx.NewLoop()
	return a
}

func (a *app) handleOnConnect(client mqtt.Client) {
	a.Log.Info().Str("broker", a.Config.Mqtt.URL).Msg("Connected")
	if err := a.Acks.Listen(client); err != nil {
		a.Log.Error().Err(err).Msg("ack subscription failed")
	}
	if err := a.Commands.Subscribe(client); err != nil {
		a.Log.Error().Err(err).Msg("command subscription failed")
	}
}

func (a *app) handleConnectionLost(_ mqtt.Client, err error) {
	a.Log.Warn().Err(err).Msg("Connection lost")
}

func (a *app) buildScene() error {
	c := a.Config.Scene

	var layout stream.Layout
	if c.Layout != "" {
		l, err := stream.LoadLayout(c.Layout, c.Pixels)
		if err != nil {
			return err
		}
		layout = l
	} else {
		layout = stream.StrandLayout(c.Pixels, c.Height)
	}

	background, err := util.ParseColor(c.Background)
	if err != nil {
		return fmt.Errorf("scene.background: %w", err)
	}

	a.Scene = stream.NewScene(layout, c.Ground, c.ViewDistance, background)
	for _, mc := range c.Markers {
		m, err := a.Scene.AddMarker(mc.ID)
		if err != nil {
			return err
		}
		m.SetX(mc.X)
		m.Point().SetAltitude(mc.Altitude)
		if mc.Radius > 0 {
			m.SetRadius(mc.Radius)
		}
		if mc.Color != "" {
			col, err := util.ParseColor(mc.Color)
			if err != nil {
				return fmt.Errorf("marker %s: %w", mc.ID, err)
			}
			m.SetColor(col)
		}
		mode, err := stream.ParseMode(mc.Mode)
		if err != nil {
			return fmt.Errorf("marker %s: %w", mc.ID, err)
		}
		m.Point().SetReferenceMode(mode)
	}
	return nil
}

func (a *app) buildBackdrop(manager *fx.Manager) (*fx.Animation, error) {
	b := a.Config.Scene.Backdrop
	switch b.Type {
	case "gradient":
		trail := stream.NewGradientTrail(stream.RainbowGradient, b.Length)
		a.Scene.SetBackdrop(trail)
		return trail.Flow(manager, b.Speed), nil
	case "twinkle":
		palette := make([]colorful.Color, 0, len(b.Colors))
		for _, name := range b.Colors {
			c, err := util.ParseColor(name)
			if err != nil {
				return nil, fmt.Errorf("scene.backdrop: %w", err)
			}
			palette = append(palette, c.Colorful())
		}
		twinkle := stream.NewTwinkle(a.Scene.Pixels(), palette, b.Chance, b.Period(), time.Now().UnixNano())
		a.Scene.SetBackdrop(twinkle)
		return twinkle.Sparkle(manager), nil
	}
	return nil, nil
}

func (a *app) build() error {
	if err := a.buildScene(); err != nil {
		return err
	}

	options := mqtt.NewClientOptions().
		AddBroker(a.Config.Mqtt.URL).
		SetClientID(a.Config.Mqtt.ClientID).
		SetUsername(a.Config.Mqtt.Username).
		SetPassword(a.Config.Mqtt.Password).
		SetKeepAlive(30 * time.Second).
		SetPingTimeout(5 * time.Second).
		SetAutoReconnect(true).
		SetOnConnectHandler(a.handleOnConnect).
		SetConnectionLostHandler(a.handleConnectionLost)
	a.Client = mqtt.NewClient(options)

	topics := a.Config.Mqtt.Topics
	a.Acks = stream.NewAckSource(topics.Ack, a.Log)
	clock := fx.NewSourceClock(a.Loop,
		[]fx.TickSource{fx.NewIntervalSource(a.Config.TickInterval()), a.Acks},
		fx.WithDedupe(a.Config.Dedupe()),
		fx.WithClockLogger(a.Log))
	manager := fx.NewManager(clock, a.Log.With().Str("component", "fx").Logger())
	effects := fx.New(manager, fx.WithViewer(a.Scene), fx.WithLogger(a.Log))

	backdrop, err := a.buildBackdrop(manager)
	if err != nil {
		return err
	}
	if backdrop != nil {
		a.Loop.Post(func() {
			if err := backdrop.Start(); err != nil {
				a.Log.Error().Err(err).Msg("backdrop failed")
			}
		})
	}

	dispatcher := api.NewDispatcher(a.Scene, effects, a.Log)
	a.Commands = api.NewListener(topics.Command, a.Loop, dispatcher, a.Log)
	a.Streamer = stream.NewStreamer(a.Client, topics.Stream, a.Loop, a.Scene,
		a.Config.FrameInterval(), a.Log)
	a.Api = api.NewApi(a.Config.HTTP.Addr, a.Config.HTTP.Static, a.Loop, dispatcher, a.Log)
	return nil
}

func (a *app) run(ctx context.Context) error {
	if token := a.Client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("connect %s: %w", a.Config.Mqtt.URL, token.Error())
	}
	defer a.Client.Disconnect(250)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 3)
	go func() { errs <- a.Loop.Run(ctx) }()
	go func() { errs <- a.Api.Serve(ctx) }()
	go func() { errs <- a.Streamer.Run(ctx) }()

	var first error
	for i := 0; i < cap(errs); i++ {
		err := <-errs
		cancel()
		if first == nil && err != nil && !errors.Is(err, context.Canceled) {
			first = err
		}
	}
	return first
}

func main() {
	// Parse command line parameters
	configPath := flag.String("config", "config.yaml", "YAML or TOML config file.")
	flag.Parse()

	// Read the config
	config, err := stream.LoadConfig(*configPath)
	if err != nil {
		fatal := logging.New("ledfx", "")
		fatal.Fatal().Err(err).Msg("config")
	}
	log := logging.New("ledfx", config.Log.Level)
	log.Debug().
		Str("broker", config.Mqtt.URL).
		Str("layout", config.Scene.Layout).
		Int("markers", len(config.Scene.Markers)).
		Msg("Config")

	mqtt.ERROR = logging.NewPrinter(log, zerolog.ErrorLevel)
	mqtt.WARN = logging.NewPrinter(log, zerolog.WarnLevel)

	a := newApp(config, log)
	if err := a.build(); err != nil {
		log.Fatal().Err(err).Msg("startup failed")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.run(ctx); err != nil {
		stop()
		log.Fatal().Err(err).Msg("stopped")
	}
	log.Info().Msg("bye")
}
