package network_test

import (
	"testing"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/network"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func getRedisClient(t *testing.T) *network.RedisClient {
	RedisTestServer.FlushAll()
	client := network.NewRedisClient(RedisTestServer.Addr(), "", 0, time.Hour)
	require.NotNil(t, client)
	return client
}

func TestRedisPing(t *testing.T) {
	client := getRedisClient(t)
	response, err := client.Ping()
	assert.Nil(t, err)
	assert.Equal(t, "PONG", response)
}

func TestJournalRecord(t *testing.T) {
	client := getRedisClient(t)
	require.Nil(t, client.Record("sub-1", "bucket", "input_videos/a.mp4"))
	require.Nil(t, client.Record("sub-1", "bucket", "input_images/b.jpg"))
	require.Nil(t, client.Record("sub-1", "bucket", "input_images/c.png"))

	keys, err := client.Keys("sub-1")
	require.Nil(t, err)
	assert.Equal(t, []string{
		"input_videos/a.mp4",
		"input_images/b.jpg",
		"input_images/c.png",
	}, keys)

	entry, err := client.Get("sub-1")
	require.Nil(t, err)
	require.NotNil(t, entry)
	assert.Equal(t, "bucket", entry.Bucket)
	assert.False(t, entry.Orphaned)

	// Entries expire.
	ttl := RedisTestServer.TTL(constants.JournalKeyPrefix + "sub-1")
	assert.EqualValues(t, 3600, ttl)
}

func TestJournalMissingEntry(t *testing.T) {
	client := getRedisClient(t)
	entry, err := client.Get("nope")
	assert.Nil(t, err)
	assert.Nil(t, entry)

	keys, err := client.Keys("nope")
	assert.Nil(t, err)
	assert.Empty(t, keys)

	// Nothing was written, so there's nothing to orphan.
	require.Nil(t, client.MarkOrphaned("nope"))
	orphans, err := client.Orphaned()
	require.Nil(t, err)
	assert.Empty(t, orphans)
}

func TestJournalOrphans(t *testing.T) {
	client := getRedisClient(t)
	require.Nil(t, client.Record("sub-1", "bucket", "k1"))
	require.Nil(t, client.Record("sub-2", "bucket", "k2"))
	require.Nil(t, client.MarkOrphaned("sub-1"))
	require.Nil(t, client.MarkOrphaned("sub-2"))

	orphans, err := client.Orphaned()
	require.Nil(t, err)
	assert.ElementsMatch(t, []string{"sub-1", "sub-2"}, orphans)

	entry, err := client.Get("sub-1")
	require.Nil(t, err)
	assert.True(t, entry.Orphaned)

	require.Nil(t, client.Forget("sub-1"))
	orphans, err = client.Orphaned()
	require.Nil(t, err)
	assert.Equal(t, []string{"sub-2"}, orphans)
	entry, err = client.Get("sub-1")
	assert.Nil(t, err)
	assert.Nil(t, entry)
}

func TestRedisClientClosed(t *testing.T) {
	client := getRedisClient(t)
	require.Nil(t, client.Close())
	_, err := client.Keys("sub-1")
	assert.NotNil(t, err)
	assert.NotNil(t, client.Record("sub-1", "bucket", "k1"))
}
