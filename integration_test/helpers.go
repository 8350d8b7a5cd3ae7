package integration_test

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"autopostq/internal/database"
	"autopostq/internal/service"
)

// newTestQueue builds a queue service on a throwaway SQLite file so tests
// exercise the real schema, triggers and queries.
func newTestQueue(t *testing.T) (*service.QueueService, *database.Database) {
	t.Helper()

	db, err := database.New(filepath.Join(t.TempDir(), "autopostq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	return service.NewQueueService(db, logger, nil, ""), db
}

func quietLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}
