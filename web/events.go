package web

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
)

const (
	eventConnected = "connected"
	eventState     = "state"
	eventHeartbeat = "heartbeat"
)

// handleEvents streams the session state to one browser tab.
// The current state is sent on connect and again after every change.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if r.Context().Err() != nil {
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	rc := http.NewResponseController(w)
	if err := rc.Flush(); err != nil {
		s.logger.Error().Err(err).Msg("Failed to flush event stream headers")
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	clientID := uuid.NewString()
	log := s.logger.With().Str("client_id", clientID).Logger()

	updates, stop := s.session.Subscribe()
	defer stop()

	log.Debug().Msg("Event stream client connected")
	defer log.Debug().Msg("Event stream client disconnected")

	if err := s.sendEvent(w, rc, eventConnected, map[string]string{"client_id": clientID}); err != nil {
		return
	}

	ctx := r.Context()
	if err := s.sendEvent(w, rc, eventState, s.view(ctx, s.session.Snapshot())); err != nil {
		return
	}

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	for {
		select {
		case state := <-updates:
			if err := s.sendEvent(w, rc, eventState, s.view(ctx, state)); err != nil {
				log.Debug().Err(err).Msg("Send failed")
				return
			}

		case t := <-heartbeat.C:
			if err := s.sendEvent(w, rc, eventHeartbeat, map[string]int64{"time": t.Unix()}); err != nil {
				log.Debug().Err(err).Msg("Heartbeat failed")
				return
			}

		case <-ctx.Done():
			return
		}
	}
}

// sendEvent writes one event in text/event-stream framing and flushes it
func (s *Server) sendEvent(w http.ResponseWriter, rc *http.ResponseController, event string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event data: %w", err)
	}

	if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload); err != nil {
		return err
	}
	if err := rc.Flush(); err != nil {
		return err
	}

	if err := rc.SetWriteDeadline(time.Now().Add(writeTimeout)); err != nil {
		s.logger.Trace().Err(err).Msg("Write deadline not supported")
	}
	return nil
}
