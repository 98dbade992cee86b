package service_test

import (
	"encoding/json"
	"testing"

	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProcessingResultFromJSON(t *testing.T) {
	body := `{
		"output_video_url": "https://api.example.com/out/123.mp4",
		"detection_count": 42,
		"processing_time": 12.5,
		"confidence_score": 0.93,
		"frames_analyzed": 300,
		"tracker": "bytetrack"
	}`
	result, err := service.ProcessingResultFromJSON([]byte(body))
	require.Nil(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "https://api.example.com/out/123.mp4", result.OutputVideoURL)
	require.NotNil(t, result.DetectionCount)
	assert.EqualValues(t, 42, *result.DetectionCount)
	require.NotNil(t, result.ProcessingTime)
	assert.Equal(t, 12.5, *result.ProcessingTime)
	require.NotNil(t, result.ConfidenceScore)
	assert.Equal(t, 0.93, *result.ConfidenceScore)
	require.NotNil(t, result.FramesAnalyzed)
	assert.EqualValues(t, 300, *result.FramesAnalyzed)
	assert.Equal(t, []string{"tracker"}, result.ExtraKeys())
	assert.Equal(t, "bytetrack", result.Extra["tracker"])
	assert.Len(t, result.Metrics(), 4)
}

func TestProcessingResultOptionalFields(t *testing.T) {
	result, err := service.ProcessingResultFromJSON([]byte(`{"output_video_url": "https://x/y.mp4"}`))
	require.Nil(t, err)
	assert.Nil(t, result.DetectionCount)
	assert.Nil(t, result.ProcessingTime)
	assert.Nil(t, result.ConfidenceScore)
	assert.Nil(t, result.FramesAnalyzed)
	assert.Empty(t, result.Metrics())
	assert.Empty(t, result.ExtraKeys())

	// Whole-number floats are fine for integer metrics.
	result, err = service.ProcessingResultFromJSON([]byte(`{"output_video_url": "https://x/y.mp4", "frames_analyzed": 120.0}`))
	require.Nil(t, err)
	assert.EqualValues(t, 120, *result.FramesAnalyzed)
}

func TestProcessingResultBadBodies(t *testing.T) {
	bodies := []string{
		``,
		`not json`,
		`[1, 2, 3]`,
		`{}`,
		`{"output_video_url": ""}`,
		`{"output_video_url": "   "}`,
		`{"output_video_url": 7}`,
		`{"output_video_url": "https://x/y.mp4", "detection_count": "many"}`,
		`{"output_video_url": "https://x/y.mp4", "detection_count": 1.5}`,
		`{"output_video_url": "https://x/y.mp4", "confidence_score": true}`,
		`{"output_video_url": "https://x/out.mp4"} <html>502 Bad Gateway</html>`,
		`{"output_video_url": "https://x/out.mp4"}{"output_video_url": ""}`,
	}
	for _, body := range bodies {
		result, err := service.ProcessingResultFromJSON([]byte(body))
		assert.NotNil(t, err, body)
		assert.Nil(t, result, body)
	}
}

func TestProcessingResultJSON(t *testing.T) {
	body := `{"output_video_url":"https://x/y.mp4","detection_count":3,"note":"ok"}`
	result, err := service.ProcessingResultFromJSON([]byte(body))
	require.Nil(t, err)

	data, err := json.Marshal(result)
	require.Nil(t, err)
	assert.JSONEq(t, body, string(data))

	copy := &service.ProcessingResult{}
	require.Nil(t, json.Unmarshal(data, copy))
	assert.Equal(t, result.OutputVideoURL, copy.OutputVideoURL)
	assert.Equal(t, *result.DetectionCount, *copy.DetectionCount)

	pretty, err := result.ToPrettyJSON()
	require.Nil(t, err)
	assert.Contains(t, pretty, "\n  \"detection_count\": 3")
}
