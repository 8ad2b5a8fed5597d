package exchange

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
)

// SpotifyAPI is what the handlers need from the resilience client.
type SpotifyAPI interface {
	AlbumDetails(ctx context.Context, albumID string) (AlbumDetails, error)
	CreateAlbumPlaylist(ctx context.Context, albumID, nickname, albumName string) (*Playlist, error)
	CurrentPlayback(ctx context.Context) (*Playback, error)
}

type Server struct {
	store   Store
	spotify SpotifyAPI
	rdb     *redis.Client
	salt    string
}

func NewServer(store Store, spotify SpotifyAPI, rdb *redis.Client, salt string) *Server {
	return &Server{
		store:   store,
		spotify: spotify,
		rdb:     rdb,
		salt:    salt,
	}
}

func NewRouter(s *Server) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", s.handleHealth)
	r.Get("/recommendations", s.handleRecommendations)
	r.Get("/submission-status", s.handleSubmissionStatus)
	r.Post("/submit-album", s.handleSubmitAlbum)
	r.Get("/album-details", s.handleAlbumDetails)
	r.Get("/current-playback", s.handleCurrentPlayback)

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "album-exchange-service",
	})
}

func (s *Server) identityFor(r *http.Request) string {
	return submissionIdentity(clientIP(r), r.Header.Get("X-Browser-Fingerprint"), s.salt)
}
