package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/careercardinal/jobtracker/internal/config"
)

type settingsResponse struct {
	config.RuntimeSettings
	NextRun *time.Time `json:"next_run"`
}

func (s *Server) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}
	settings, err := s.settings.GetRuntimeSettings()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, s.settingsResponse(settings))
}

func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	if s.settings == nil {
		writeError(w, http.StatusNotImplemented, "settings store is not configured")
		return
	}

	var req config.RuntimeSettings
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	saved, err := s.settings.UpdateRuntimeSettings(req)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if s.apply != nil {
		if err := s.apply(saved); err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, s.settingsResponse(saved))
}

func (s *Server) settingsResponse(settings config.RuntimeSettings) settingsResponse {
	ret := settingsResponse{RuntimeSettings: settings}
	if s.scheduler != nil {
		if next, ok := s.scheduler.NextRun(time.Now()); ok {
			ret.NextRun = &next
		}
	}
	return ret
}
