package network

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"
)

type NSQClient struct {
	URL        string
	httpClient *http.Client
}

// Formally define this so we can generate mocks for testing.
type NSQClientInterface interface {
	Enqueue(topic string, submissionID string) error
}

// NewNSQClient returns a new NSQ client that will connect to the NSQ
// server at the specified url. The URL usually ends with :4151. This
// is the URL to which we post submission ids for the cleanup worker.
//
// Note that this client provides write access to queue, so we can
// add things. It does not provide read access. The workers do the
// reading.
func NewNSQClient(url string) *NSQClient {
	return &NSQClient{
		URL:        url,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Enqueue posts a submission id to the specified NSQ topic, usually
// orphan_cleanup_topic.
func (client *NSQClient) Enqueue(topic string, submissionID string) error {
	return client.enqueueString(topic, submissionID)
}

func (client *NSQClient) enqueueString(topic string, data string) error {
	url := fmt.Sprintf("%s/pub?topic=%s", client.URL, topic)
	resp, err := client.httpClient.Post(url, "text/plain", bytes.NewBufferString(data))
	if err != nil {
		return fmt.Errorf("Nsqd returned an error when queuing data: %v", err)
	}

	// nsqd sends a simple OK. We have to read the response body,
	// or the connection will hang open forever.
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyText := "[no response body]"
		if len(body) > 0 {
			bodyText = string(body)
		}
		return fmt.Errorf("nsqd returned status code %d when attempting to queue data. "+
			"Response body: %s", resp.StatusCode, bodyText)
	}
	return nil
}
