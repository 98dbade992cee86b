package constants

const (
	ContentTypeOctetStream = "application/octet-stream"
	EnvConfigDir           = "BRANDPULSE_CONFIG_DIR"
	EnvConfigName          = "BRANDPULSE_ENV"
	EncodingForm           = "form"
	EncodingJSON           = "json"
	FolderJerseyImages     = "jersey_images"
	FolderPlayerImages     = "player_images"
	MaxJerseyImages        = 2
	MaxPlayerImages        = 4
	MaxPlayerNumber        = 99
	MinPlayerNumber        = 1
	ModeMultipart          = "multipart"
	ModeReference          = "reference"
	RoleJerseyImage        = "jersey_image"
	RolePlayerImage        = "player_image"
	RoleVideo              = "video"
	TopicOrphanCleanup     = "orphan_cleanup_topic"
	URLModePublic          = "public"
	URLModeSigned          = "signed"
)

// Multipart and form field names understood by the processing API.
const (
	FieldJerseyImageURLs  = "jersey_image_urls"
	FieldPlayerImageURLs  = "player_image_urls"
	FieldPlayerName       = "player_name"
	FieldPlayerNumber     = "player_number"
	FieldVideo            = "video"
	FieldVideoURL         = "video_url"
	FieldOutputVideoURL   = "output_video_url"
	FieldDetectionCount   = "detection_count"
	FieldProcessingTime   = "processing_time"
	FieldConfidenceScore  = "confidence_score"
	FieldFramesAnalyzed   = "frames_analyzed"
	JournalKeyPrefix      = "brandpulse:submission:"
	JournalOrphanSetKey   = "brandpulse:orphans"
	DefaultCleanupChannel = "orphan_cleanup_worker"
)

var WireModes = []string{
	ModeMultipart,
	ModeReference,
}

var ReferenceEncodings = []string{
	EncodingJSON,
	EncodingForm,
}

var URLModes = []string{
	URLModeSigned,
	URLModePublic,
}

// ContentTypes maps lower-case file extensions to the content types we
// send to storage and to the processing API.
var ContentTypes = map[string]string{
	".avi":  "video/x-msvideo",
	".gif":  "image/gif",
	".jpeg": "image/jpeg",
	".jpg":  "image/jpeg",
	".mov":  "video/quicktime",
	".mp4":  "video/mp4",
	".png":  "image/png",
	".webp": "image/webp",
}

// VideoExtensions and ImageExtensions are the file types the form accepts.
var VideoExtensions = []string{".mp4", ".mov", ".avi"}
var ImageExtensions = []string{".jpg", ".jpeg", ".png"}
