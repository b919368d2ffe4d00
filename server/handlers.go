package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gloworm-vision/encodersine/hardware"
	"github.com/gloworm-vision/encodersine/store"
	"github.com/gloworm-vision/encodersine/synth"
)

func (s *Server) getStatus(res http.ResponseWriter, req *http.Request) {
	respond(res, s.Synth.Status(), http.StatusOK)
}

func (s *Server) getHardware(res http.ResponseWriter, req *http.Request) {
	config, err := s.Store.HardwareConfig()
	if err != nil {
		respond(res, err, storeErrorCode(err))
		return
	}

	respond(res, config, http.StatusOK)
}

func (s *Server) putHardware(res http.ResponseWriter, req *http.Request) {
	var config hardware.Config
	if err := json.NewDecoder(req.Body).Decode(&config); err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	if err := s.Store.PutHardwareConfig(config); err != nil {
		respond(res, err, http.StatusInternalServerError)
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func (s *Server) getSynth(res http.ResponseWriter, req *http.Request) {
	config, err := s.Store.SynthConfig()
	if err != nil {
		respond(res, err, storeErrorCode(err))
		return
	}

	respond(res, config, http.StatusOK)
}

func (s *Server) putSynth(res http.ResponseWriter, req *http.Request) {
	var config synth.Config
	if err := json.NewDecoder(req.Body).Decode(&config); err != nil {
		respond(res, err, http.StatusUnprocessableEntity)
		return
	}

	if err := s.Store.PutSynthConfig(config); err != nil {
		respond(res, err, http.StatusInternalServerError)
		return
	}

	respond(res, nil, http.StatusNoContent)
}

func storeErrorCode(err error) int {
	if errors.Is(err, store.ErrNotFound{}) {
		return http.StatusNotFound
	}

	return http.StatusInternalServerError
}
