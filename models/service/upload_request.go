package service

// UploadRequest is everything the user submitted through the form.
// PlayerImages and JerseyImages keep the order in which the user
// supplied them. The processing API relies on that order.
type UploadRequest struct {
	Video        *MediaBlob
	PlayerImages []*MediaBlob
	JerseyImages []*MediaBlob
	PlayerName   string
	PlayerNumber int
}

// BlobCount returns the number of files in the request.
func (r *UploadRequest) BlobCount() int {
	count := len(r.PlayerImages) + len(r.JerseyImages)
	if r.Video != nil {
		count++
	}
	return count
}

// ReferenceRequest is the reference-mode body sent to the processing
// API. It carries storage URLs instead of file contents.
type ReferenceRequest struct {
	VideoURL        string   `json:"video_url"`
	PlayerImageURLs []string `json:"player_image_urls"`
	JerseyImageURLs []string `json:"jersey_image_urls"`
	PlayerName      string   `json:"player_name"`
	PlayerNumber    int      `json:"player_number"`
}

// NewReferenceRequest builds a ReferenceRequest from the references
// returned by the storage uploader. The image URL lists preserve the
// order of the references and are never nil, so they serialize as
// empty JSON arrays.
func NewReferenceRequest(video *StorageReference, playerImages, jerseyImages []*StorageReference, playerName string, playerNumber int) *ReferenceRequest {
	req := &ReferenceRequest{
		PlayerImageURLs: make([]string, len(playerImages)),
		JerseyImageURLs: make([]string, len(jerseyImages)),
		PlayerName:      playerName,
		PlayerNumber:    playerNumber,
	}
	if video != nil {
		req.VideoURL = video.URL
	}
	for i, ref := range playerImages {
		req.PlayerImageURLs[i] = ref.URL
	}
	for i, ref := range jerseyImages {
		req.JerseyImageURLs[i] = ref.URL
	}
	return req
}
