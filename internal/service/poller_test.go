package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"autopostq/internal/autopost"
	"autopostq/internal/models"
	"autopostq/pkg/queue"
)

func pollerConfig() models.PollerConfig {
	return models.PollerConfig{
		Enabled:     true,
		Status:      "scheduled",
		Limit:       25,
		IntervalSec: 3600,
		TimeoutSec:  5,
	}
}

func waitForSnapshot(t *testing.T, poller *QueuePoller, ready func(PollSnapshot) bool) PollSnapshot {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		snapshot := poller.Snapshot()
		if ready(snapshot) {
			return snapshot
		}
		select {
		case <-deadline:
			t.Fatal("timed out waiting for poll snapshot")
		case <-time.After(10 * time.Millisecond):
		}
	}
}

func TestQueuePoller_FetchesImmediately(t *testing.T) {
	client := &mockQueueClient{}
	next := int64(7)
	client.On("ListAutoposts", mock.Anything, queue.ListOptions{Status: "scheduled", Limit: 25}).
		Return(&queue.ListResponse{
			Autoposts: []models.Autopost{
				{ID: 9, Body: "hi", Metadata: map[string]any{"creativeType": "poem"}},
				{ID: 7},
			},
			NextCursor: &next,
		}, nil)

	poller := NewQueuePoller(client, pollerConfig(), quietLogger(), nil)
	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()

	snapshot := waitForSnapshot(t, poller, func(s PollSnapshot) bool { return len(s.Entries) == 2 })

	assert.True(t, poller.IsRunning())
	assert.NoError(t, snapshot.Err)
	assert.False(t, snapshot.FetchedAt.IsZero())
	require.NotNil(t, snapshot.NextCursor)
	assert.Equal(t, int64(7), *snapshot.NextCursor)
	assert.Equal(t, autopost.CreativePoem, snapshot.Entries[0].Variant, "entries pass through the normalization pipeline")
}

func TestQueuePoller_ErrorYieldsEmptyEntries(t *testing.T) {
	client := &mockQueueClient{}
	client.On("ListAutoposts", mock.Anything, mock.Anything).Return(nil, assert.AnError)

	poller := NewQueuePoller(client, pollerConfig(), quietLogger(), nil)
	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()

	snapshot := waitForSnapshot(t, poller, func(s PollSnapshot) bool { return s.Err != nil })

	assert.NotNil(t, snapshot.Entries)
	assert.Empty(t, snapshot.Entries, "failed fetches never leave stale entries behind")
	assert.Nil(t, snapshot.NextCursor)
}

func TestQueuePoller_RefreshTriggersFetch(t *testing.T) {
	client := &mockQueueClient{}
	client.On("ListAutoposts", mock.Anything, mock.Anything).
		Return(&queue.ListResponse{Autoposts: []models.Autopost{}}, nil)

	poller := NewQueuePoller(client, pollerConfig(), quietLogger(), nil)
	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()

	waitForSnapshot(t, poller, func(s PollSnapshot) bool { return !s.FetchedAt.IsZero() })
	first := poller.Snapshot().FetchedAt

	poller.Refresh()
	waitForSnapshot(t, poller, func(s PollSnapshot) bool { return s.FetchedAt.After(first) })
}

func TestQueuePoller_DisabledDoesNotStart(t *testing.T) {
	config := pollerConfig()
	config.Enabled = false

	poller := NewQueuePoller(&mockQueueClient{}, config, quietLogger(), nil)
	require.NoError(t, poller.Start(context.Background()))
	assert.False(t, poller.IsRunning())
}

func TestQueuePoller_DoubleStartFails(t *testing.T) {
	client := &mockQueueClient{}
	client.On("ListAutoposts", mock.Anything, mock.Anything).
		Return(&queue.ListResponse{Autoposts: []models.Autopost{}}, nil)

	poller := NewQueuePoller(client, pollerConfig(), quietLogger(), nil)
	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()

	assert.Error(t, poller.Start(context.Background()))
}

func TestQueuePoller_SnapshotIsACopy(t *testing.T) {
	client := &mockQueueClient{}
	client.On("ListAutoposts", mock.Anything, mock.Anything).
		Return(&queue.ListResponse{Autoposts: []models.Autopost{{ID: 1}}}, nil)

	poller := NewQueuePoller(client, pollerConfig(), quietLogger(), nil)
	require.NoError(t, poller.Start(context.Background()))
	defer poller.Stop()

	snapshot := waitForSnapshot(t, poller, func(s PollSnapshot) bool { return len(s.Entries) == 1 })
	snapshot.Entries[0] = nil

	fresh := poller.Snapshot()
	require.Len(t, fresh.Entries, 1)
	assert.NotNil(t, fresh.Entries[0])
}
