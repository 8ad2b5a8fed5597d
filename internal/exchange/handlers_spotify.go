package exchange

import (
	"log"
	"net/http"
	"strings"
)

func (s *Server) handleAlbumDetails(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		writeMessage(w, http.StatusBadRequest, "album ID is required")
		return
	}

	details, err := s.spotify.AlbumDetails(r.Context(), id)
	if err != nil {
		log.Printf("album-exchange: album details %s: %v", id, err)
		if writeIfRateLimited(w, err) {
			return
		}
		writeMessage(w, http.StatusInternalServerError, "failed to fetch album details")
		return
	}

	w.Header().Set("Cache-Control", "public, max-age=86400, s-maxage=86400")
	writeJSON(w, http.StatusOK, details)
}

func (s *Server) handleCurrentPlayback(w http.ResponseWriter, r *http.Request) {
	playback, err := s.spotify.CurrentPlayback(r.Context())
	if err != nil {
		if writeIfRateLimited(w, err) {
			return
		}
		// degraded, not broken: the client keeps polling
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "failed to fetch playback status",
			"error":   err.Error(),
		})
		return
	}
	if playback == nil {
		writeJSON(w, http.StatusOK, map[string]any{
			"success": false,
			"message": "no playback data available at the moment",
			"error":   "could not retrieve playback data from spotify",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":  true,
		"playback": playback,
	})
}
