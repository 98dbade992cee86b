package web

import (
	"net/http"

	"github.com/brandpulse/brandpulse-demo/models/common"
)

var tips = map[common.ErrorKind][]string{
	common.ValidationError: {
		"Attach a video file (.mp4, .mov, or .avi)",
		"Use .jpg, .jpeg, or .png for player and jersey images",
		"Enter the player's name and a jersey number from 1 to 99",
	},
	common.StorageError: {
		"Check the S3 bucket name and region",
		"Verify the S3 access key and secret key",
		"Verify S3 bucket permissions allow uploads",
	},
	common.TransportError: {
		"Check that the API endpoint URL is correct",
		"Verify that the API is running and accessible",
	},
	common.TimeoutError: {
		"The API may still be working on the video. Try a shorter clip",
		"Raise REQUEST_TIMEOUT if long videos are expected",
	},
	common.ResponseError: {
		"Ensure your API key is valid (if required)",
		"Check that the API can access S3 URLs",
		"Verify S3 bucket permissions allow API access",
	},
	common.ConfigurationError: {
		"Check the settings file selected by BRANDPULSE_ENV",
		"The server log lists every configuration problem",
	},
}

// TipsFor returns troubleshooting tips for an error kind.
func TipsFor(kind common.ErrorKind) []string {
	return tips[kind]
}

// errorTitles head the error box on the result page.
var errorTitles = map[common.ErrorKind]string{
	common.ValidationError:    "Please fix the submission",
	common.StorageError:       "File upload failed",
	common.TransportError:     "Could not reach the processing API",
	common.TimeoutError:       "The processing API timed out",
	common.ResponseError:      "The processing API returned an error",
	common.ConfigurationError: "The server is not configured correctly",
}

// StatusFor returns the HTTP status the JSON API uses for a
// submission that ended with kind.
func StatusFor(kind common.ErrorKind) int {
	switch kind {
	case common.KindNone:
		return http.StatusOK
	case common.ValidationError:
		return http.StatusBadRequest
	case common.ConfigurationError:
		return http.StatusServiceUnavailable
	case common.TimeoutError:
		return http.StatusGatewayTimeout
	default:
		return http.StatusBadGateway
	}
}
