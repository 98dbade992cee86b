package network_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/network"
	"github.com/brandpulse/brandpulse-demo/util/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNSQEnqueue(t *testing.T) {
	var gotTopic, gotBody string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/pub", r.URL.Path)
		gotTopic = r.URL.Query().Get("topic")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		w.Write([]byte("OK"))
	}))
	defer server.Close()

	client := network.NewNSQClient(server.URL)
	err := client.Enqueue(constants.TopicOrphanCleanup, "sub-1234")
	require.Nil(t, err)
	assert.Equal(t, constants.TopicOrphanCleanup, gotTopic)
	assert.Equal(t, "sub-1234", gotBody)
}

func TestNSQEnqueueErrors(t *testing.T) {
	server := httptest.NewServer(testutil.HttpStatusResponder(testutil.EmptyHeaders, http.StatusBadRequest, "BAD_TOPIC"))
	client := network.NewNSQClient(server.URL)
	err := client.Enqueue("", "sub-1234")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "status code 400")
	assert.Contains(t, err.Error(), "BAD_TOPIC")

	server.Close()
	err = client.Enqueue(constants.TopicOrphanCleanup, "sub-1234")
	require.NotNil(t, err)
	assert.Contains(t, err.Error(), "Nsqd returned an error")
}
