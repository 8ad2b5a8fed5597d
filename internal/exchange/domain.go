package exchange

import "time"

// SubmissionRecord is one album recommendation as persisted. Records are
// append-only: created once by the submission workflow, read by the gallery
// and the admission check, never updated or deleted.
type SubmissionRecord struct {
	ID                string
	IdentityHash      string
	IsAnonymous       bool
	Nickname          string
	SpotifyProfileURL *string
	AlbumID           string
	AlbumURL          string
	AlbumName         string
	AlbumArtist       string
	AlbumImageURL     string
	PlaylistID        string
	PlaylistURL       string
	CreatedAt         time.Time
}

type AlbumDetails struct {
	Name     string `json:"name"`
	Artist   string `json:"artist"`
	ImageURL string `json:"imageUrl"`
}

type Track struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Artist        string `json:"artist"`
	Album         string `json:"album"`
	AlbumImageURL string `json:"albumImageUrl,omitempty"`
	AlbumID       string `json:"albumId"`
	URI           string `json:"uri"`
}

type Playback struct {
	IsPlaying bool  `json:"isPlaying"`
	Track     Track `json:"track"`
}

type Playlist struct {
	ID  string `json:"id"`
	URL string `json:"url"`
}

// SubmissionStatus is the admission decision for one identity. Error carries
// a lookup failure for observability only; the decision stays fail-open.
type SubmissionStatus struct {
	CanSubmit     bool   `json:"canSubmit"`
	RemainingTime string `json:"remainingTime,omitempty"`
	Error         string `json:"error,omitempty"`
}

type submitRequest struct {
	IsAnonymous       bool   `json:"isAnonymous"`
	Nickname          string `json:"nickname"`
	SpotifyProfileURL string `json:"spotifyProfileUrl"`
	AlbumURL          string `json:"albumUrl"`
}

type submitResult struct {
	Playlist      Playlist
	RemainingTime string
	Record        *SubmissionRecord
}

// submitError carries the HTTP status for a failed submission gate.
type submitError struct {
	status    int
	msg       string
	remaining string
}

func (e *submitError) Error() string {
	return e.msg
}
