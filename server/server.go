package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gloworm-vision/encodersine/store"
	"github.com/gloworm-vision/encodersine/synth"
	"github.com/julienschmidt/httprouter"
	"github.com/sirupsen/logrus"
)

// StatusReporter is anything that can report the synth's status.
type StatusReporter interface {
	Status() synth.Status
}

// Server exposes synth status and stored settings over HTTP. Settings take
// effect the next time the program starts. The server never talks to the
// encoder itself.
type Server struct {
	Addr string

	Store  store.Store
	Synth  StatusReporter
	Logger *logrus.Logger
}

func (s *Server) Handler() http.Handler {
	mux := httprouter.New()

	mux.HandlerFunc(http.MethodGet, "/status", s.getStatus)

	mux.HandlerFunc(http.MethodGet, "/hardware", s.getHardware)
	mux.HandlerFunc(http.MethodPut, "/hardware", s.putHardware)

	mux.HandlerFunc(http.MethodGet, "/synth", s.getSynth)
	mux.HandlerFunc(http.MethodPut, "/synth", s.putSynth)

	return mux
}

// Run serves until ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.Addr,
		Handler:           s.Handler(),
		ReadTimeout:       time.Second * 15,
		ReadHeaderTimeout: time.Second * 15,
		IdleTimeout:       time.Second * 30,
		MaxHeaderBytes:    4096,
	}

	listenErrs := make(chan error, 1)
	go func() {
		s.Logger.WithField("addr", s.Addr).Info("serving http")
		listenErrs <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-listenErrs:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		return httpServer.Shutdown(shutdownCtx)
	}
}
