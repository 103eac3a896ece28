package client

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"vistoria/pkg/logger"
)

func TestMongoOptions(t *testing.T) {
	opts := MongoOptions("mongodb://localhost:27017", "calendar", 3*time.Second)

	require.NotNil(t, opts.AppName)
	assert.Equal(t, "calendar", *opts.AppName)
	require.NotNil(t, opts.ServerSelectionTimeout)
	assert.Equal(t, 3*time.Second, *opts.ServerSelectionTimeout)
	require.NotNil(t, opts.ReadPreference)
	assert.Equal(t, readpref.PrimaryMode, opts.ReadPreference.Mode())
	require.NotNil(t, opts.RetryWrites)
	assert.True(t, *opts.RetryWrites)
	assert.Equal(t, []string{"localhost:27017"}, opts.Hosts)
}

func TestGracefulShutdown_WithoutConnection(t *testing.T) {
	assert.NotPanics(t, func() {
		NewClient().GracefulShutdown(logger.Nop(), time.Second)
	})
}
