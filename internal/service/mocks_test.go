package service

import (
	"context"
	"io"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"autopostq/internal/models"
	"autopostq/pkg/queue"
)

type mockStore struct {
	mock.Mock
}

func (m *mockStore) InsertAutopost(ctx context.Context, entry *models.Autopost) (*models.Autopost, error) {
	args := m.Called(ctx, entry)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Autopost), args.Error(1)
}

func (m *mockStore) GetAutopost(ctx context.Context, id int64) (*models.Autopost, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Autopost), args.Error(1)
}

func (m *mockStore) ListAutoposts(ctx context.Context, status string, cursor int64, limit int) ([]models.Autopost, error) {
	args := m.Called(ctx, status, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Autopost), args.Error(1)
}

func (m *mockStore) ReleaseDue(ctx context.Context, until time.Time) ([]models.Autopost, error) {
	args := m.Called(ctx, until)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Autopost), args.Error(1)
}

func (m *mockStore) MarkPublished(ctx context.Context, id, publishedPostID int64) error {
	args := m.Called(ctx, id, publishedPostID)
	return args.Error(0)
}

func (m *mockStore) InsertFeedPost(ctx context.Context, post *models.FeedPost) (*models.FeedPost, error) {
	args := m.Called(ctx, post)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.FeedPost), args.Error(1)
}

func (m *mockStore) CleanupPublished(ctx context.Context, retentionDays int) (int64, error) {
	args := m.Called(ctx, retentionDays)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockQueueClient struct {
	mock.Mock
}

func (m *mockQueueClient) ListAutoposts(ctx context.Context, opts queue.ListOptions) (*queue.ListResponse, error) {
	args := m.Called(ctx, opts)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*queue.ListResponse), args.Error(1)
}

func (m *mockQueueClient) CreateAutopost(ctx context.Context, req queue.CreateAutopostRequest) (*models.Autopost, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Autopost), args.Error(1)
}

func (m *mockQueueClient) CreateCampaign(ctx context.Context, req queue.CreateCampaignRequest) (*models.Autopost, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Autopost), args.Error(1)
}

func (m *mockQueueClient) PublishAutopost(ctx context.Context, id int64, publishedAt time.Time) (*models.Autopost, error) {
	args := m.Called(ctx, id, publishedAt)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Autopost), args.Error(1)
}

func (m *mockQueueClient) ReleaseDue(ctx context.Context, releaseUntil time.Time) ([]models.Autopost, error) {
	args := m.Called(ctx, releaseUntil)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Autopost), args.Error(1)
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
