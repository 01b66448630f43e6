package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/matt-g-everett/ledfx/fx"
	"github.com/matt-g-everett/ledfx/stream"
)

const maxCommandBytes = 64 << 10

// Caller runs a function on the goroutine that owns the scene.
type Caller interface {
	Call(ctx context.Context, fn func() error) error
}

// Api serves the web client and accepts effect commands over HTTP.
type Api struct {
	addr       string
	static     string
	loop       Caller
	dispatcher *Dispatcher
	log        zerolog.Logger
}

// NewApi creates an instance of an Api.
func NewApi(addr, static string, loop Caller, dispatcher *Dispatcher, log zerolog.Logger) *Api {
	a := new(Api)
	a.addr = addr
	a.static = static
	a.loop = loop
	a.dispatcher = dispatcher
	a.log = log
	return a
}

// Handler routes "/fx" to the command endpoint and everything else to the
// static client files.
func (a *Api) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/", http.FileServer(http.Dir(a.static)))
	mux.HandleFunc("/fx", a.handleCommand)
	return mux
}

func (a *Api) handleCommand(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var cmd Command
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxCommandBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cmd); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	err := a.loop.Call(r.Context(), func() error { return a.dispatcher.Execute(cmd) })
	if err != nil {
		a.log.Warn().Err(err).Str("marker", cmd.Marker).Msg("command rejected")
		http.Error(w, err.Error(), statusFor(err))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ErrUnknownMarker):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownCommand),
		errors.Is(err, fx.ErrInvalidConfig),
		errors.Is(err, fx.ErrTargetType),
		errors.Is(err, stream.ErrDuplicateMarker):
		return http.StatusBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// Serve listens until ctx is cancelled, then shuts down gracefully.
func (a *Api) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errs := make(chan error, 1)
	go func() {
		a.log.Info().Str("addr", a.addr).Msg("Listening...")
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errs; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
