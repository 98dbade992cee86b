package web_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/util/testutil"
	"github.com/brandpulse/brandpulse-demo/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func formRequest(t *testing.T, payload, contentType string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/submit", strings.NewReader(payload))
	req.Header.Set("Content-Type", contentType)
	return req
}

func TestParseUploadRequest(t *testing.T) {
	expected := testutil.GetUploadRequest(3, 2)
	body, contentType := formBody(t, expected)

	req, err := web.ParseUploadRequest(formRequest(t, body.String(), contentType))
	require.Nil(t, err)
	require.NotNil(t, req.Video)
	assert.Equal(t, "game.mp4", req.Video.FileName)
	assert.Equal(t, testutil.MP4Bytes(), req.Video.Data)
	require.Len(t, req.PlayerImages, 3)
	require.Len(t, req.JerseyImages, 2)
	for i, blob := range req.PlayerImages {
		assert.Equal(t, expected.PlayerImages[i].FileName, blob.FileName)
		assert.Equal(t, expected.PlayerImages[i].Data, blob.Data)
	}
	assert.Equal(t, "jersey_2.png", req.JerseyImages[1].FileName)
	assert.Equal(t, testutil.PlayerName, req.PlayerName)
	assert.Equal(t, testutil.PlayerNumber, req.PlayerNumber)
}

func TestParseUploadRequestEmptyInputs(t *testing.T) {
	// A browser sends empty file inputs as parts with no file name.
	payload := strings.Join([]string{
		"--XYZ",
		`Content-Disposition: form-data; name="video"; filename=""`,
		"Content-Type: application/octet-stream",
		"",
		"",
		"--XYZ",
		`Content-Disposition: form-data; name="player_images"; filename=""`,
		"Content-Type: application/octet-stream",
		"",
		"",
		"--XYZ",
		`Content-Disposition: form-data; name="player_name"`,
		"",
		"  Ana  ",
		"--XYZ",
		`Content-Disposition: form-data; name="player_number"`,
		"",
		"",
		"--XYZ--",
		"",
	}, "\r\n")
	req, err := web.ParseUploadRequest(formRequest(t, payload, "multipart/form-data; boundary=XYZ"))
	require.Nil(t, err)
	assert.Nil(t, req.Video)
	assert.Empty(t, req.PlayerImages)
	assert.Empty(t, req.JerseyImages)
	assert.Equal(t, "Ana", req.PlayerName)
	assert.Equal(t, 0, req.PlayerNumber)
}

func TestParseUploadRequestErrors(t *testing.T) {
	_, err := web.ParseUploadRequest(formRequest(t, "player_name=Ana", "application/x-www-form-urlencoded"))
	require.NotNil(t, err)
	assert.Equal(t, common.ValidationError, common.KindOf(err))
	assert.Contains(t, err.Error(), "Could not read the form")

	payload := "--XYZ\r\nContent-Disposition: form-data; name=\"player_number\"\r\n\r\n2.5\r\n--XYZ--\r\n"
	_, err = web.ParseUploadRequest(formRequest(t, payload, "multipart/form-data; boundary=XYZ"))
	require.NotNil(t, err)
	assert.Equal(t, common.ValidationError, common.KindOf(err))
	assert.Equal(t, "Player number must be a whole number, got '2.5'", err.Error())

	body, contentType := formBody(t, testutil.GetUploadRequest(0, 0))
	req := formRequest(t, body.String(), contentType)
	req.Body = http.MaxBytesReader(httptest.NewRecorder(), req.Body, 100)
	_, err = web.ParseUploadRequest(req)
	require.NotNil(t, err)
	assert.Equal(t, common.ValidationError, common.KindOf(err))
}
