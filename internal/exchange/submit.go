package exchange

import (
	"context"
	"log"
	"net/http"
	"time"
)

// submitAlbum runs the whole submission workflow: admission check, structural
// validation, URL normalization, album resolution, playlist creation and
// persistence, in that order. Each gate fails with its own submitError.
// Nothing is persisted until the playlist exists; a store failure after
// playlist creation leaves an orphaned playlist upstream (accepted, logged).
func submitAlbum(ctx context.Context, store Store, spotify SpotifyAPI, identityHash string, req submitRequest, now time.Time) (*submitResult, error) {
	status := checkSubmissionStatus(ctx, store, identityHash, now)
	if !status.CanSubmit {
		return nil, &submitError{
			status:    http.StatusTooManyRequests,
			msg:       "you can submit again in " + status.RemainingTime,
			remaining: status.RemainingTime,
		}
	}

	if req.AlbumURL == "" {
		return nil, &submitError{status: http.StatusBadRequest, msg: "album URL is required"}
	}

	nickname := sanitizeNickname(req.Nickname)
	if !validNickname(nickname) {
		return nil, &submitError{status: http.StatusBadRequest, msg: "nickname must be 2-30 characters of letters, digits or spaces"}
	}

	if !isValidSpotifyURL(req.AlbumURL, "album") {
		return nil, &submitError{status: http.StatusBadRequest, msg: "invalid spotify album URL"}
	}

	if !req.IsAnonymous {
		if req.SpotifyProfileURL == "" {
			return nil, &submitError{status: http.StatusBadRequest, msg: "spotify profile URL is required when not submitting anonymously"}
		}
		if !isValidSpotifyURL(req.SpotifyProfileURL, "user") {
			return nil, &submitError{status: http.StatusBadRequest, msg: "invalid spotify profile URL"}
		}
	}

	albumURL := cleanURL(req.AlbumURL)
	var profileURL *string
	if !req.IsAnonymous {
		cleaned := cleanURL(req.SpotifyProfileURL)
		profileURL = &cleaned
	}

	albumID := extractAlbumIDFromURL(albumURL)
	if albumID == "" {
		return nil, &submitError{status: http.StatusBadRequest, msg: "invalid album URL"}
	}

	details, err := spotify.AlbumDetails(ctx, albumID)
	if err != nil {
		return nil, err
	}

	playlist, err := spotify.CreateAlbumPlaylist(ctx, albumID, nickname, details.Name)
	if err != nil {
		return nil, err
	}

	rec := &SubmissionRecord{
		IdentityHash:      identityHash,
		IsAnonymous:       req.IsAnonymous,
		Nickname:          nickname,
		SpotifyProfileURL: profileURL,
		AlbumID:           albumID,
		AlbumURL:          albumURL,
		AlbumName:         details.Name,
		AlbumArtist:       details.Artist,
		AlbumImageURL:     details.ImageURL,
		PlaylistID:        playlist.ID,
		PlaylistURL:       playlist.URL,
	}
	if _, err := store.RecordSubmission(ctx, rec); err != nil {
		// the playlist already exists upstream with no record pointing at it
		log.Printf("album-exchange: record submission after playlist %s: %v", playlist.ID, err)
		return nil, err
	}

	return &submitResult{
		Playlist:      *playlist,
		RemainingTime: formatRemaining(now, nextResetTime(now)),
		Record:        rec,
	}, nil
}
