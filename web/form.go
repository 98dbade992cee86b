package web

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
)

// Form field names. The JSON API and the HTML form use the same ones.
const (
	FormVideo        = "video"
	FormPlayerImages = "player_images"
	FormJerseyImages = "jersey_images"
	FormPlayerName   = "player_name"
	FormPlayerNumber = "player_number"
)

// maxFormMemory is how much of a multipart body is held in memory.
// The rest goes to temp files.
const maxFormMemory = 32 << 20

// ParseUploadRequest reads a multipart form into an UploadRequest.
// Problems with the form itself come back as ValidationErrors. The
// Validator checks everything else.
func ParseUploadRequest(r *http.Request) (*service.UploadRequest, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, common.NewValidationError(
				fmt.Sprintf("The upload is larger than the %d byte limit", tooLarge.Limit))
		}
		return nil, common.NewValidationError(fmt.Sprintf("Could not read the form: %s", err.Error()))
	}
	defer r.MultipartForm.RemoveAll()

	req := &service.UploadRequest{
		PlayerName: strings.TrimSpace(r.FormValue(FormPlayerName)),
	}
	number := strings.TrimSpace(r.FormValue(FormPlayerNumber))
	if number != "" {
		n, err := strconv.Atoi(number)
		if err != nil {
			return nil, common.NewValidationError(
				fmt.Sprintf("Player number must be a whole number, got '%s'", number))
		}
		req.PlayerNumber = n
	}

	files := r.MultipartForm.File
	var err error
	if headers := files[FormVideo]; len(headers) > 0 {
		if req.Video, err = readBlob(headers[0]); err != nil {
			return nil, err
		}
	}
	if req.PlayerImages, err = readBlobs(files[FormPlayerImages]); err != nil {
		return nil, err
	}
	if req.JerseyImages, err = readBlobs(files[FormJerseyImages]); err != nil {
		return nil, err
	}
	return req, nil
}

func readBlobs(headers []*multipart.FileHeader) ([]*service.MediaBlob, error) {
	blobs := make([]*service.MediaBlob, 0, len(headers))
	for _, header := range headers {
		blob, err := readBlob(header)
		if err != nil {
			return nil, err
		}
		blobs = append(blobs, blob)
	}
	return blobs, nil
}

func readBlob(header *multipart.FileHeader) (*service.MediaBlob, error) {
	file, err := header.Open()
	if err != nil {
		return nil, common.NewValidationError(fmt.Sprintf("Could not read %s: %s", header.Filename, err.Error()))
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, common.NewValidationError(fmt.Sprintf("Could not read %s: %s", header.Filename, err.Error()))
	}
	return service.NewMediaBlob(header.Filename, header.Header.Get("Content-Type"), data), nil
}
