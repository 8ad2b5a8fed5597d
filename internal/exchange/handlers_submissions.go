package exchange

import (
	"encoding/json"
	"log"
	"net/http"
	"time"
)

type recommendationItem struct {
	ID                string  `json:"id"`
	Nickname          string  `json:"nickname"`
	AlbumName         string  `json:"albumName"`
	AlbumArtist       string  `json:"albumArtist"`
	AlbumImageURL     string  `json:"albumImageUrl"`
	AlbumURL          string  `json:"albumUrl"`
	SpotifyProfileURL *string `json:"spotifyProfileUrl"`
	Timestamp         string  `json:"timestamp"`
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.store.ListSubmissions(r.Context())
	if err != nil {
		log.Printf("album-exchange: list submissions: %v", err)
		writeMessage(w, http.StatusInternalServerError, "failed to fetch recommendations")
		return
	}

	out := make([]recommendationItem, 0, len(recs))
	for _, rec := range recs {
		out = append(out, recommendationItem{
			ID:                rec.ID,
			Nickname:          rec.Nickname,
			AlbumName:         rec.AlbumName,
			AlbumArtist:       rec.AlbumArtist,
			AlbumImageURL:     rec.AlbumImageURL,
			AlbumURL:          rec.AlbumURL,
			SpotifyProfileURL: rec.SpotifyProfileURL,
			Timestamp:         rec.CreatedAt.UTC().Format(time.RFC3339),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":         true,
		"recommendations": out,
	})
}

func (s *Server) handleSubmissionStatus(w http.ResponseWriter, r *http.Request) {
	status := checkSubmissionStatus(r.Context(), s.store, s.identityFor(r), time.Now())
	writeJSON(w, http.StatusOK, status)
}

func (s *Server) handleSubmitAlbum(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := submitAlbum(r.Context(), s.store, s.spotify, s.identityFor(r), req, time.Now())
	if err != nil {
		log.Printf("album-exchange: submit album: %v", err)
		writeSubmitError(w, err)
		return
	}

	s.publishEvent(r.Context(), "submission.created", map[string]any{
		"id":            result.Record.ID,
		"nickname":      result.Record.Nickname,
		"albumName":     result.Record.AlbumName,
		"albumArtist":   result.Record.AlbumArtist,
		"albumImageUrl": result.Record.AlbumImageURL,
		"albumUrl":      result.Record.AlbumURL,
	})

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "album recommendation submitted successfully",
		"playlist": map[string]string{
			"id":  result.Playlist.ID,
			"url": result.Playlist.URL,
		},
		"remainingTime": result.RemainingTime,
	})
}
