package exchange

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DB is the subset of pgxpool.Pool the store needs. pgxmock implements it.
type DB interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store interface {
	// LatestSubmission returns the newest record for an identity, nil when
	// none exists.
	LatestSubmission(ctx context.Context, identityHash string) (*SubmissionRecord, error)
	// RecordSubmission appends a record. The id and created_at are assigned
	// at write time and filled in on rec.
	RecordSubmission(ctx context.Context, rec *SubmissionRecord) (string, error)
	// ListSubmissions returns all records newest-first for the gallery.
	ListSubmissions(ctx context.Context) ([]SubmissionRecord, error)
}

type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func AutoMigrate(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
      CREATE TABLE IF NOT EXISTS submissions(
          id uuid PRIMARY KEY,
          identity_hash TEXT NOT NULL,
          is_anonymous BOOLEAN NOT NULL DEFAULT false,
          nickname TEXT NOT NULL,
          spotify_profile_url TEXT,
          album_id TEXT NOT NULL,
          album_url TEXT NOT NULL,
          album_name TEXT NOT NULL,
          album_artist TEXT NOT NULL,
          album_image_url TEXT NOT NULL DEFAULT '',
          playlist_id TEXT NOT NULL,
          playlist_url TEXT NOT NULL,
          created_at TIMESTAMPTZ NOT NULL DEFAULT now()
      )
  `)
	if err != nil {
		log.Printf("migrate submissions: %v", err)
		return err
	}

	if _, err := pool.Exec(ctx, `
        CREATE INDEX IF NOT EXISTS idx_submissions_identity_created
        ON submissions(identity_hash, created_at DESC)
    `); err != nil {
		log.Printf("migrate submissions index: %v", err)
	}
	return nil
}

func (s *PostgresStore) LatestSubmission(ctx context.Context, identityHash string) (*SubmissionRecord, error) {
	var rec SubmissionRecord
	err := s.db.QueryRow(ctx, `
        SELECT id, identity_hash, is_anonymous, nickname, spotify_profile_url,
               album_id, album_url, album_name, album_artist, album_image_url,
               playlist_id, playlist_url, created_at
        FROM submissions
        WHERE identity_hash = $1
        ORDER BY created_at DESC
        LIMIT 1
    `, identityHash).Scan(
		&rec.ID, &rec.IdentityHash, &rec.IsAnonymous, &rec.Nickname, &rec.SpotifyProfileURL,
		&rec.AlbumID, &rec.AlbumURL, &rec.AlbumName, &rec.AlbumArtist, &rec.AlbumImageURL,
		&rec.PlaylistID, &rec.PlaylistURL, &rec.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *PostgresStore) RecordSubmission(ctx context.Context, rec *SubmissionRecord) (string, error) {
	id := uuid.NewString()
	var createdAt time.Time
	err := s.db.QueryRow(ctx, `
        INSERT INTO submissions(
            id, identity_hash, is_anonymous, nickname, spotify_profile_url,
            album_id, album_url, album_name, album_artist, album_image_url,
            playlist_id, playlist_url
        )
        VALUES($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
        RETURNING created_at
    `, id, rec.IdentityHash, rec.IsAnonymous, rec.Nickname, rec.SpotifyProfileURL,
		rec.AlbumID, rec.AlbumURL, rec.AlbumName, rec.AlbumArtist, rec.AlbumImageURL,
		rec.PlaylistID, rec.PlaylistURL).Scan(&createdAt)
	if err != nil {
		return "", err
	}
	rec.ID = id
	rec.CreatedAt = createdAt
	return id, nil
}

func (s *PostgresStore) ListSubmissions(ctx context.Context) ([]SubmissionRecord, error) {
	rows, err := s.db.Query(ctx, `
        SELECT id, identity_hash, is_anonymous, nickname, spotify_profile_url,
               album_id, album_url, album_name, album_artist, album_image_url,
               playlist_id, playlist_url, created_at
        FROM submissions
        ORDER BY created_at DESC
    `)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]SubmissionRecord, 0)
	for rows.Next() {
		var rec SubmissionRecord
		if err := rows.Scan(
			&rec.ID, &rec.IdentityHash, &rec.IsAnonymous, &rec.Nickname, &rec.SpotifyProfileURL,
			&rec.AlbumID, &rec.AlbumURL, &rec.AlbumName, &rec.AlbumArtist, &rec.AlbumImageURL,
			&rec.PlaylistID, &rec.PlaylistURL, &rec.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
