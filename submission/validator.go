package submission

import (
	"fmt"
	"strings"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/common"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/brandpulse/brandpulse-demo/util"
)

// Validator checks an UploadRequest before anything leaves the
// machine. It makes no network calls.
type Validator struct {
	Identifier   *util.FormatIdentifier
	MaxImageSize int64
	MaxVideoSize int64
}

func NewValidator(context *common.Context) *Validator {
	return &Validator{
		Identifier:   context.FormatIdentifier,
		MaxImageSize: context.Config.MaxImageSize,
		MaxVideoSize: context.Config.MaxVideoSize,
	}
}

// Validate returns a ValidationError listing every problem with req,
// or nil if req can be submitted.
func (v *Validator) Validate(req *service.UploadRequest) error {
	if req == nil {
		return common.NewValidationError("Nothing was submitted")
	}
	problems := make([]string, 0)
	if req.Video.IsEmpty() {
		problems = append(problems, "A video file is required")
	} else {
		problems = append(problems, v.checkBlob("Video", "video", req.Video, constants.VideoExtensions, v.MaxVideoSize)...)
	}

	if len(req.PlayerImages) > constants.MaxPlayerImages {
		problems = append(problems, fmt.Sprintf("At most %d player images are allowed, got %d",
			constants.MaxPlayerImages, len(req.PlayerImages)))
	}
	for i, blob := range req.PlayerImages {
		label := fmt.Sprintf("Player image %d", i+1)
		problems = append(problems, v.checkImage(label, blob)...)
	}
	if len(req.JerseyImages) > constants.MaxJerseyImages {
		problems = append(problems, fmt.Sprintf("At most %d jersey images are allowed, got %d",
			constants.MaxJerseyImages, len(req.JerseyImages)))
	}
	for i, blob := range req.JerseyImages {
		label := fmt.Sprintf("Jersey image %d", i+1)
		problems = append(problems, v.checkImage(label, blob)...)
	}

	name := strings.TrimSpace(req.PlayerName)
	if name == "" {
		problems = append(problems, "Player name is required")
	} else if util.ContainsControlCharacter(name) {
		problems = append(problems, "Player name contains control characters")
	}
	if req.PlayerNumber < constants.MinPlayerNumber || req.PlayerNumber > constants.MaxPlayerNumber {
		problems = append(problems, fmt.Sprintf("Player number must be between %d and %d, got %d",
			constants.MinPlayerNumber, constants.MaxPlayerNumber, req.PlayerNumber))
	}

	if len(problems) > 0 {
		return common.NewValidationError(strings.Join(problems, "; "))
	}
	return nil
}

func (v *Validator) checkImage(label string, blob *service.MediaBlob) []string {
	if blob.IsEmpty() {
		return []string{fmt.Sprintf("%s is empty", label)}
	}
	return v.checkBlob(label, "image", blob, constants.ImageExtensions, v.MaxImageSize)
}

// checkBlob checks the extension, size, and content of a non-empty blob.
func (v *Validator) checkBlob(label, family string, blob *service.MediaBlob, extensions []string, maxSize int64) []string {
	problems := make([]string, 0)
	if util.ContainsControlCharacter(blob.FileName) {
		problems = append(problems, fmt.Sprintf("%s file name contains control characters", label))
	}
	if !util.StringListContains(extensions, blob.Extension()) {
		problems = append(problems, fmt.Sprintf("%s %s must be one of %s",
			label, blob.FileName, strings.Join(extensions, ", ")))
	}
	if maxSize > 0 && blob.Size() > maxSize {
		problems = append(problems, fmt.Sprintf("%s %s is %s, which exceeds the limit of %s",
			label, blob.FileName, util.HumanSize(blob.Size()), util.HumanSize(maxSize)))
	}
	if v.Identifier != nil && !v.Identifier.Matches(family, blob.FileName, blob.Data) {
		record := v.Identifier.Identify(blob.FileName, blob.Data)
		problems = append(problems, fmt.Sprintf("%s %s does not look like %s %s file (detected %s)",
			label, blob.FileName, article(family), family, record.MimeType))
	}
	return problems
}

func article(word string) string {
	if strings.ContainsAny(word[:1], "aeiou") {
		return "an"
	}
	return "a"
}
