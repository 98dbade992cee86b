package submission

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/op/go-logging"
)

// maxResponseSize caps how much of a response body we read. Real
// responses are a few hundred bytes of JSON.
const maxResponseSize = 4 * 1024 * 1024

// maxErrorBodyLength caps how much of an error response we keep for
// display.
const maxErrorBodyLength = 512

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// Invoker sends a submission to the processing API. ProcessingClient
// is the real implementation.
type Invoker interface {
	Invoke(ctx context.Context, req *service.UploadRequest) (*service.ProcessingResult, error)
	InvokeReferences(ctx context.Context, req *service.ReferenceRequest) (*service.ProcessingResult, error)
}

// ProcessingClient posts submissions to the video processing API. Each
// call makes exactly one POST and keeps no state between calls, so one
// client can serve concurrent requests.
type ProcessingClient struct {
	APIKey   string
	Encoding string
	Endpoint string
	Logger   *logging.Logger
	Timeout  time.Duration

	httpClient *http.Client
}

// NewProcessingClient returns a new client. Param encoding is the body
// format for reference mode: json or form. Param timeout bounds each
// call, including reading the response.
func NewProcessingClient(endpoint, apiKey, encoding string, timeout time.Duration, logger *logging.Logger) *ProcessingClient {
	return &ProcessingClient{
		APIKey:     apiKey,
		Encoding:   encoding,
		Endpoint:   endpoint,
		Logger:     logger,
		Timeout:    timeout,
		httpClient: &http.Client{},
	}
}

// NewProcessingClientFromContext returns a client configured from
// context.Config.
func NewProcessingClientFromContext(context *common.Context) *ProcessingClient {
	config := context.Config
	return NewProcessingClient(
		config.APIEndpoint,
		config.APIKey,
		config.ReferenceEncoding,
		config.RequestTimeout,
		context.Logger)
}

// Invoke posts the media itself as multipart/form-data. File parts
// are video, player_image_0..3 and jersey_image_0..1, in list order,
// followed by the player_name and player_number fields.
func (c *ProcessingClient) Invoke(ctx context.Context, req *service.UploadRequest) (*service.ProcessingResult, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	if err := writeFilePart(writer, constants.FieldVideo, req.Video); err != nil {
		return nil, err
	}
	for i, blob := range req.PlayerImages {
		if err := writeFilePart(writer, fmt.Sprintf("%s_%d", constants.RolePlayerImage, i), blob); err != nil {
			return nil, err
		}
	}
	for i, blob := range req.JerseyImages {
		if err := writeFilePart(writer, fmt.Sprintf("%s_%d", constants.RoleJerseyImage, i), blob); err != nil {
			return nil, err
		}
	}
	fields := [][2]string{
		{constants.FieldPlayerName, req.PlayerName},
		{constants.FieldPlayerNumber, strconv.Itoa(req.PlayerNumber)},
	}
	for _, field := range fields {
		if err := writer.WriteField(field[0], field[1]); err != nil {
			return nil, common.NewTransportError(fmt.Sprintf("Cannot build request body: %v", err), err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, common.NewTransportError(fmt.Sprintf("Cannot build request body: %v", err), err)
	}
	c.Logger.Infof("Posting %d files (%d bytes) to %s", req.BlobCount(), body.Len(), c.Endpoint)
	return c.post(ctx, writer.FormDataContentType(), body.Bytes())
}

func writeFilePart(writer *multipart.Writer, fieldName string, blob *service.MediaBlob) error {
	if blob == nil {
		return nil
	}
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(fieldName), quoteEscaper.Replace(blob.FileName)))
	header.Set("Content-Type", ContentTypeFor(blob))
	part, err := writer.CreatePart(header)
	if err == nil {
		_, err = part.Write(blob.Data)
	}
	if err != nil {
		return common.NewTransportError(fmt.Sprintf("Cannot add %s to request body: %v", fieldName, err), err)
	}
	return nil
}

// InvokeReferences posts storage URLs instead of media. The body is a
// JSON object unless the client's encoding is form, in which case it
// sends video_url, player_image_1..4 and jersey_image_1..2 as
// urlencoded form fields.
func (c *ProcessingClient) InvokeReferences(ctx context.Context, req *service.ReferenceRequest) (*service.ProcessingResult, error) {
	if c.Encoding == constants.EncodingForm {
		form := url.Values{}
		form.Set(constants.FieldVideoURL, req.VideoURL)
		form.Set(constants.FieldPlayerName, req.PlayerName)
		form.Set(constants.FieldPlayerNumber, strconv.Itoa(req.PlayerNumber))
		for i, u := range req.PlayerImageURLs {
			form.Set(fmt.Sprintf("%s_%d", constants.RolePlayerImage, i+1), u)
		}
		for i, u := range req.JerseyImageURLs {
			form.Set(fmt.Sprintf("%s_%d", constants.RoleJerseyImage, i+1), u)
		}
		c.Logger.Infof("Posting form with %d image URLs to %s", len(req.PlayerImageURLs)+len(req.JerseyImageURLs), c.Endpoint)
		return c.post(ctx, "application/x-www-form-urlencoded", []byte(form.Encode()))
	}
	body, err := json.Marshal(req)
	if err != nil {
		return nil, common.NewTransportError(fmt.Sprintf("Cannot serialize request: %v", err), err)
	}
	c.Logger.Infof("Posting JSON with %d image URLs to %s", len(req.PlayerImageURLs)+len(req.JerseyImageURLs), c.Endpoint)
	return c.post(ctx, "application/json", body)
}

func (c *ProcessingClient) post(ctx context.Context, contentType string, body []byte) (*service.ProcessingResult, error) {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, common.NewTransportError(fmt.Sprintf("Cannot create request for %s: %v", c.Endpoint, err), err)
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	if c.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.APIKey)
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, c.classify(err)
	}
	defer resp.Body.Close()
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, c.classify(err)
	}
	c.Logger.Infof("%s returned %d after %s", c.Endpoint, resp.StatusCode, time.Since(started).Round(time.Millisecond))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := common.NewHttpError(
			fmt.Sprintf("Processing API returned status %d", resp.StatusCode),
			nil, http.MethodPost, c.Endpoint, resp.StatusCode)
		httpErr.Body = truncate(string(data), maxErrorBodyLength)
		if httpErr.Body != "" {
			httpErr.Message = fmt.Sprintf("%s: %s", httpErr.Message, httpErr.Body)
		}
		c.Logger.Warning(httpErr.Detail())
		return nil, common.NewResponseError(httpErr.Message, httpErr)
	}
	result, err := service.ProcessingResultFromJSON(data)
	if err != nil {
		return nil, common.NewResponseError(fmt.Sprintf("Processing API sent an unusable response: %v", err), err)
	}
	return result, nil
}

// classify turns an error from the http client into a TimeoutError or
// a TransportError.
func (c *ProcessingClient) classify(err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return common.NewTimeoutError(
			fmt.Sprintf("Processing API did not respond within %s", c.Timeout), err)
	}
	return common.NewTransportError(
		fmt.Sprintf("Cannot reach processing API at %s: %v", c.Endpoint, err), err)
}

func truncate(s string, max int) string {
	s = strings.TrimSpace(s)
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
