package exchange

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	playbackCacheTTL  = 30 * time.Second
	albumCacheTTL     = 24 * time.Hour
	maxRetries        = 3
	initialRetryDelay = time.Second
	tokenExpiryMargin = 30 * time.Second
)

// rateLimitError marks an upstream 429. retryAfter is the server-supplied
// wait, zero when the Retry-After header was absent.
type rateLimitError struct {
	retryAfter time.Duration
}

func (e *rateLimitError) Error() string {
	if e.retryAfter > 0 {
		return fmt.Sprintf("spotify rate limit exceeded, retry after %s", e.retryAfter)
	}
	return "spotify rate limit exceeded"
}

type albumCacheEntry struct {
	details   AlbumDetails
	fetchedAt time.Time
}

// SpotifyClient wraps the Spotify Web API with token refresh, retry with
// backoff on rate limits, and two short-lived caches (playback snapshot and
// per-album metadata). Safe for concurrent use; a lost race means at worst a
// duplicate upstream refresh, never a wrong result.
type SpotifyClient struct {
	clientID     string
	clientSecret string
	refreshToken string

	authURL    string
	apiURL     string
	http       *http.Client
	retryDelay time.Duration

	tokenMu     sync.Mutex
	accessToken string
	tokenExpiry time.Time

	playbackMu sync.Mutex
	playback   *Playback
	playbackAt time.Time

	albumMu sync.Mutex
	albums  map[string]albumCacheEntry
}

func NewSpotifyClient(clientID, clientSecret, refreshToken string) *SpotifyClient {
	return &SpotifyClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		refreshToken: refreshToken,
		authURL:      "https://accounts.spotify.com/api/token",
		apiURL:       "https://api.spotify.com/v1",
		http:         &http.Client{Timeout: 10 * time.Second},
		retryDelay:   initialRetryDelay,
		albums:       make(map[string]albumCacheEntry),
	}
}

// token returns a bearer token, exchanging the long-lived refresh credential
// when the cached one is missing or within 30 seconds of expiring.
func (c *SpotifyClient) token(ctx context.Context) (string, error) {
	c.tokenMu.Lock()
	defer c.tokenMu.Unlock()

	if c.accessToken != "" && time.Now().Before(c.tokenExpiry.Add(-tokenExpiryMargin)) {
		return c.accessToken, nil
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", c.refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	basic := base64.StdEncoding.EncodeToString([]byte(c.clientID + ":" + c.clientSecret))
	req.Header.Set("Authorization", "Basic "+basic)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("spotify token endpoint status %d", resp.StatusCode)
	}

	var body struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", err
	}
	if body.AccessToken == "" {
		return "", errors.New("spotify token endpoint returned no access_token")
	}

	expiresIn := body.ExpiresIn
	if expiresIn <= 0 {
		expiresIn = 3600
	}
	c.accessToken = body.AccessToken
	c.tokenExpiry = time.Now().Add(time.Duration(expiresIn) * time.Second)
	return c.accessToken, nil
}

func (c *SpotifyClient) invalidateToken() {
	c.tokenMu.Lock()
	c.accessToken = ""
	c.tokenMu.Unlock()
}

// withRetry runs fn, retrying only on rate-limit errors: up to maxRetries
// extra attempts, waiting the server-supplied Retry-After when present and an
// exponentially doubling delay otherwise. Any other error aborts immediately.
func (c *SpotifyClient) withRetry(ctx context.Context, fn func() error) error {
	delay := c.retryDelay
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		var rl *rateLimitError
		if !errors.As(err, &rl) {
			return err
		}
		if attempt == maxRetries {
			return err
		}

		wait := delay
		if rl.retryAfter > 0 {
			wait = rl.retryAfter
		}
		log.Printf("album-exchange: spotify rate limited, retry %d/%d in %s", attempt+1, maxRetries, wait)

		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		}
		delay *= 2
	}
}

// apiCall performs one authenticated request against the web API. A 429 maps
// to rateLimitError, a 401 drops the cached token, a 204 leaves out untouched.
func (c *SpotifyClient) apiCall(ctx context.Context, method, path string, payload, out any) error {
	token, err := c.token(ctx)
	if err != nil {
		return err
	}

	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.apiURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return &rateLimitError{retryAfter: parseRetryAfter(resp.Header.Get("Retry-After"))}
	case resp.StatusCode == http.StatusUnauthorized:
		c.invalidateToken()
		return fmt.Errorf("spotify status %d", resp.StatusCode)
	case resp.StatusCode == http.StatusNoContent:
		return nil
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return fmt.Errorf("spotify status %d", resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *SpotifyClient) get(ctx context.Context, path string, out any) error {
	return c.withRetry(ctx, func() error {
		return c.apiCall(ctx, http.MethodGet, path, nil, out)
	})
}

func (c *SpotifyClient) post(ctx context.Context, path string, payload, out any) error {
	return c.withRetry(ctx, func() error {
		return c.apiCall(ctx, http.MethodPost, path, payload, out)
	})
}

func parseRetryAfter(h string) time.Duration {
	if h == "" {
		return 0
	}
	secs, err := strconv.Atoi(h)
	if err != nil || secs < 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}

type spotifyTrack struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	URI     string `json:"uri"`
	Artists []struct {
		Name string `json:"name"`
	} `json:"artists"`
	Album struct {
		ID     string `json:"id"`
		Name   string `json:"name"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	} `json:"album"`
}

func (t spotifyTrack) toTrack() Track {
	names := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		names = append(names, a.Name)
	}
	img := ""
	if len(t.Album.Images) > 0 {
		img = t.Album.Images[0].URL
	}
	return Track{
		ID:            t.ID,
		Name:          t.Name,
		Artist:        strings.Join(names, ", "),
		Album:         t.Album.Name,
		AlbumImageURL: img,
		AlbumID:       t.Album.ID,
		URI:           t.URI,
	}
}

// CurrentPlayback returns what the account is playing, falling back to the
// most recently played track when nothing is live. The snapshot is cached for
// 30 seconds; on upstream failure the last good snapshot is served however
// stale it is. nil with nil error means nothing has ever been observed.
func (c *SpotifyClient) CurrentPlayback(ctx context.Context) (*Playback, error) {
	c.playbackMu.Lock()
	if c.playback != nil && time.Since(c.playbackAt) < playbackCacheTTL {
		pb := *c.playback
		c.playbackMu.Unlock()
		return &pb, nil
	}
	c.playbackMu.Unlock()

	pb, err := c.fetchPlayback(ctx)
	if err != nil {
		log.Printf("album-exchange: playback fetch: %v", err)
		c.playbackMu.Lock()
		defer c.playbackMu.Unlock()
		if c.playback != nil {
			stale := *c.playback
			return &stale, nil
		}
		return nil, err
	}
	if pb == nil {
		// nothing playing and nothing recently played
		c.playbackMu.Lock()
		defer c.playbackMu.Unlock()
		if c.playback != nil {
			stale := *c.playback
			return &stale, nil
		}
		return nil, nil
	}

	c.playbackMu.Lock()
	c.playback = pb
	c.playbackAt = time.Now()
	c.playbackMu.Unlock()

	snapshot := *pb
	return &snapshot, nil
}

func (c *SpotifyClient) fetchPlayback(ctx context.Context) (*Playback, error) {
	var current struct {
		IsPlaying bool          `json:"is_playing"`
		Item      *spotifyTrack `json:"item"`
	}
	if err := c.get(ctx, "/me/player/currently-playing", &current); err != nil {
		return nil, err
	}
	if current.Item != nil && current.Item.ID != "" {
		return &Playback{IsPlaying: current.IsPlaying, Track: current.Item.toTrack()}, nil
	}

	var recent struct {
		Items []struct {
			Track spotifyTrack `json:"track"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/me/player/recently-played?limit=1", &recent); err != nil {
		return nil, err
	}
	if len(recent.Items) == 0 {
		return nil, nil
	}
	return &Playback{IsPlaying: false, Track: recent.Items[0].Track.toTrack()}, nil
}

// AlbumDetails returns album metadata, cached for 24 hours per album id. A
// failed refresh falls back to the stale entry; the error only propagates
// when there is nothing cached to fall back on.
func (c *SpotifyClient) AlbumDetails(ctx context.Context, albumID string) (AlbumDetails, error) {
	c.albumMu.Lock()
	cached, ok := c.albums[albumID]
	c.albumMu.Unlock()
	if ok && time.Since(cached.fetchedAt) < albumCacheTTL {
		return cached.details, nil
	}

	var album struct {
		Name    string `json:"name"`
		Artists []struct {
			Name string `json:"name"`
		} `json:"artists"`
		Images []struct {
			URL string `json:"url"`
		} `json:"images"`
	}
	if err := c.get(ctx, "/albums/"+url.PathEscape(albumID), &album); err != nil {
		if ok {
			log.Printf("album-exchange: album %s refresh failed, serving expired cache: %v", albumID, err)
			return cached.details, nil
		}
		return AlbumDetails{}, err
	}

	names := make([]string, 0, len(album.Artists))
	for _, a := range album.Artists {
		names = append(names, a.Name)
	}
	img := ""
	if len(album.Images) > 0 {
		img = album.Images[0].URL
	}
	details := AlbumDetails{Name: album.Name, Artist: strings.Join(names, ", "), ImageURL: img}

	c.albumMu.Lock()
	c.albums[albumID] = albumCacheEntry{details: details, fetchedAt: time.Now()}
	c.albumMu.Unlock()
	return details, nil
}

// CreateAlbumPlaylist creates a private playlist named "{nickname}-{album}"
// on the authenticated account and fills it with the album's tracks in one
// batch. No partial-batch retry: when the add fails the playlist still exists
// upstream in a tracks-empty state and the caller decides what to do.
func (c *SpotifyClient) CreateAlbumPlaylist(ctx context.Context, albumID, nickname, albumName string) (*Playlist, error) {
	var me struct {
		ID string `json:"id"`
	}
	if err := c.get(ctx, "/me", &me); err != nil {
		return nil, err
	}

	name := truncate(nickname+"-"+albumName, 100)

	var playlist struct {
		ID           string `json:"id"`
		ExternalURLs struct {
			Spotify string `json:"spotify"`
		} `json:"external_urls"`
	}
	err := c.post(ctx, "/users/"+url.PathEscape(me.ID)+"/playlists", map[string]any{
		"name":        name,
		"description": fmt.Sprintf("album recommendation from %s via the album exchange", nickname),
		"public":      false,
	}, &playlist)
	if err != nil {
		return nil, err
	}

	var tracks struct {
		Items []struct {
			URI string `json:"uri"`
		} `json:"items"`
	}
	if err := c.get(ctx, "/albums/"+url.PathEscape(albumID)+"/tracks", &tracks); err != nil {
		return nil, err
	}

	if len(tracks.Items) > 0 {
		uris := make([]string, 0, len(tracks.Items))
		for _, t := range tracks.Items {
			uris = append(uris, t.URI)
		}
		if err := c.post(ctx, "/playlists/"+url.PathEscape(playlist.ID)+"/tracks", map[string]any{"uris": uris}, nil); err != nil {
			return nil, err
		}
	}

	return &Playlist{ID: playlist.ID, URL: playlist.ExternalURLs.Spotify}, nil
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
