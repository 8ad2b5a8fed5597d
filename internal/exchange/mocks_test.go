package exchange

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockStore struct {
	mock.Mock
}

func (m *MockStore) LatestSubmission(ctx context.Context, identityHash string) (*SubmissionRecord, error) {
	args := m.Called(ctx, identityHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*SubmissionRecord), args.Error(1)
}

func (m *MockStore) RecordSubmission(ctx context.Context, rec *SubmissionRecord) (string, error) {
	args := m.Called(ctx, rec)
	return args.String(0), args.Error(1)
}

func (m *MockStore) ListSubmissions(ctx context.Context) ([]SubmissionRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]SubmissionRecord), args.Error(1)
}

type MockSpotify struct {
	mock.Mock
}

func (m *MockSpotify) AlbumDetails(ctx context.Context, albumID string) (AlbumDetails, error) {
	args := m.Called(ctx, albumID)
	return args.Get(0).(AlbumDetails), args.Error(1)
}

func (m *MockSpotify) CreateAlbumPlaylist(ctx context.Context, albumID, nickname, albumName string) (*Playlist, error) {
	args := m.Called(ctx, albumID, nickname, albumName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Playlist), args.Error(1)
}

func (m *MockSpotify) CurrentPlayback(ctx context.Context) (*Playback, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Playback), args.Error(1)
}

func ptr(s string) *string {
	return &s
}
