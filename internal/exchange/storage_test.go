package exchange

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupMockStore(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	return NewPostgresStore(mock), mock
}

var submissionColumns = []string{
	"id", "identity_hash", "is_anonymous", "nickname", "spotify_profile_url",
	"album_id", "album_url", "album_name", "album_artist", "album_image_url",
	"playlist_id", "playlist_url", "created_at",
}

func TestLatestSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the newest record", func(t *testing.T) {
		s, mock := setupMockStore(t)
		defer mock.Close()

		createdAt := time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC)
		rows := pgxmock.NewRows(submissionColumns).AddRow(
			"rec1", "id1", false, "blood", ptr("https://open.spotify.com/user/abc"),
			"xyz", "https://open.spotify.com/album/xyz", "OK Computer", "Radiohead", "https://img",
			"pl1", "https://open.spotify.com/playlist/pl1", createdAt,
		)
		mock.ExpectQuery("SELECT id, identity_hash.*FROM submissions.*ORDER BY created_at DESC").
			WithArgs("id1").
			WillReturnRows(rows)

		rec, err := s.LatestSubmission(ctx, "id1")
		require.NoError(t, err)
		require.NotNil(t, rec)
		assert.Equal(t, "rec1", rec.ID)
		assert.Equal(t, "OK Computer", rec.AlbumName)
		assert.Equal(t, createdAt, rec.CreatedAt)
		require.NotNil(t, rec.SpotifyProfileURL)
		assert.Equal(t, "https://open.spotify.com/user/abc", *rec.SpotifyProfileURL)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no rows means no record and no error", func(t *testing.T) {
		s, mock := setupMockStore(t)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, identity_hash.*FROM submissions").
			WithArgs("id1").
			WillReturnRows(pgxmock.NewRows(submissionColumns))

		rec, err := s.LatestSubmission(ctx, "id1")
		assert.NoError(t, err)
		assert.Nil(t, rec)
	})

	t.Run("query errors propagate", func(t *testing.T) {
		s, mock := setupMockStore(t)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, identity_hash.*FROM submissions").
			WithArgs("id1").
			WillReturnError(errors.New("connection refused"))

		_, err := s.LatestSubmission(ctx, "id1")
		assert.Error(t, err)
	})
}

func TestRecordSubmission(t *testing.T) {
	ctx := context.Background()

	t.Run("assigns id and created_at", func(t *testing.T) {
		s, mock := setupMockStore(t)
		defer mock.Close()

		createdAt := time.Date(2025, 7, 16, 12, 0, 0, 0, time.UTC)
		mock.ExpectQuery("INSERT INTO submissions").
			WithArgs(
				pgxmock.AnyArg(), // generated uuid
				"id1", true, "blood", (*string)(nil),
				"xyz", "https://open.spotify.com/album/xyz", "OK Computer", "Radiohead", "https://img",
				"pl1", "https://open.spotify.com/playlist/pl1",
			).
			WillReturnRows(pgxmock.NewRows([]string{"created_at"}).AddRow(createdAt))

		rec := &SubmissionRecord{
			IdentityHash:  "id1",
			IsAnonymous:   true,
			Nickname:      "blood",
			AlbumID:       "xyz",
			AlbumURL:      "https://open.spotify.com/album/xyz",
			AlbumName:     "OK Computer",
			AlbumArtist:   "Radiohead",
			AlbumImageURL: "https://img",
			PlaylistID:    "pl1",
			PlaylistURL:   "https://open.spotify.com/playlist/pl1",
		}
		id, err := s.RecordSubmission(ctx, rec)
		require.NoError(t, err)
		assert.NotEmpty(t, id)
		assert.Equal(t, id, rec.ID)
		assert.Equal(t, createdAt, rec.CreatedAt)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("insert errors propagate", func(t *testing.T) {
		s, mock := setupMockStore(t)
		defer mock.Close()

		mock.ExpectQuery("INSERT INTO submissions").
			WithArgs(
				pgxmock.AnyArg(),
				"id1", true, "blood", (*string)(nil),
				"xyz", "u", "n", "a", "",
				"pl1", "u",
			).
			WillReturnError(errors.New("insert failed"))

		rec := &SubmissionRecord{
			IdentityHash: "id1", IsAnonymous: true, Nickname: "blood",
			AlbumID: "xyz", AlbumURL: "u", AlbumName: "n", AlbumArtist: "a",
			PlaylistID: "pl1", PlaylistURL: "u",
		}
		_, err := s.RecordSubmission(ctx, rec)
		assert.Error(t, err)
		assert.Empty(t, rec.ID)
	})
}

func TestListSubmissions(t *testing.T) {
	ctx := context.Background()

	t.Run("returns all rows newest first", func(t *testing.T) {
		s, mock := setupMockStore(t)
		defer mock.Close()

		rows := pgxmock.NewRows(submissionColumns).
			AddRow(
				"rec2", "id2", true, "joni fan", (*string)(nil),
				"abc", "https://open.spotify.com/album/abc", "Blue", "Joni Mitchell", "",
				"pl2", "https://open.spotify.com/playlist/pl2",
				time.Date(2025, 7, 16, 10, 0, 0, 0, time.UTC),
			).
			AddRow(
				"rec1", "id1", false, "blood", ptr("https://open.spotify.com/user/abc"),
				"xyz", "https://open.spotify.com/album/xyz", "OK Computer", "Radiohead", "https://img",
				"pl1", "https://open.spotify.com/playlist/pl1",
				time.Date(2025, 7, 15, 9, 0, 0, 0, time.UTC),
			)
		mock.ExpectQuery("SELECT id, identity_hash.*FROM submissions.*ORDER BY created_at DESC").
			WillReturnRows(rows)

		out, err := s.ListSubmissions(ctx)
		require.NoError(t, err)
		require.Len(t, out, 2)
		assert.Equal(t, "rec2", out[0].ID)
		assert.Nil(t, out[0].SpotifyProfileURL)
		assert.Equal(t, "rec1", out[1].ID)
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		s, mock := setupMockStore(t)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, identity_hash.*FROM submissions").
			WillReturnRows(pgxmock.NewRows(submissionColumns))

		out, err := s.ListSubmissions(ctx)
		require.NoError(t, err)
		assert.NotNil(t, out)
		assert.Empty(t, out)
	})

	t.Run("query errors propagate", func(t *testing.T) {
		s, mock := setupMockStore(t)
		defer mock.Close()

		mock.ExpectQuery("SELECT id, identity_hash.*FROM submissions").
			WillReturnError(errors.New("connection refused"))

		_, err := s.ListSubmissions(ctx)
		assert.Error(t, err)
	})
}
