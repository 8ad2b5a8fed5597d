package exchange

import (
	"net/url"
	"regexp"
	"strings"
)

var (
	nicknameRe = regexp.MustCompile(`^[a-zA-Z0-9 ]+$`)
	htmlTagRe  = regexp.MustCompile(`</?[^>]+(>|$)`)
)

// sanitizeNickname strips markup and suspicious characters so a pasted
// rich-text nickname degrades instead of failing the charset check outright.
func sanitizeNickname(input string) string {
	out := htmlTagRe.ReplaceAllString(input, "")
	out = strings.Map(func(r rune) rune {
		switch r {
		case '<', '>', '"', '\'', '&':
			return -1
		}
		return r
	}, out)
	return strings.TrimSpace(out)
}

func validNickname(nick string) bool {
	if len(nick) < 2 || len(nick) > 30 {
		return false
	}
	return nicknameRe.MatchString(nick)
}

// cleanURL strips query and fragment noise (si= share trackers and friends)
// before a URL is stored or compared.
func cleanURL(raw string) string {
	if raw == "" {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	u.RawFragment = ""
	return u.String()
}

// isValidSpotifyURL reports whether raw points at spotify.com and, when a
// link type is given, at that kind of resource.
func isValidSpotifyURL(raw, linkType string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return false
	}
	if !strings.Contains(u.Hostname(), "spotify.com") {
		return false
	}
	switch linkType {
	case "album":
		return strings.Contains(u.Path, "/album/")
	case "user":
		return strings.Contains(u.Path, "/user/")
	}
	return true
}

// extractAlbumIDFromURL pulls the album id out of an open.spotify.com link or
// a spotify:album: URI. Returns "" when no id can be found.
func extractAlbumIDFromURL(raw string) string {
	if strings.Contains(raw, "spotify.com/album/") {
		rest := strings.SplitN(raw, "album/", 2)[1]
		rest = strings.SplitN(rest, "?", 2)[0]
		return strings.SplitN(rest, "/", 2)[0]
	}
	if strings.Contains(raw, "spotify:album:") {
		return strings.SplitN(raw, "spotify:album:", 2)[1]
	}
	return ""
}
