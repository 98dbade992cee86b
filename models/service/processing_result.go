package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"sort"
	"strings"

	"github.com/brandpulse/brandpulse-demo/constants"
)

var knownFields = []string{
	constants.FieldOutputVideoURL,
	constants.FieldDetectionCount,
	constants.FieldProcessingTime,
	constants.FieldConfidenceScore,
	constants.FieldFramesAnalyzed,
}

// ProcessingResult is the decoded response of the processing API.
// Don't modify it after decoding.
type ProcessingResult struct {
	// OutputVideoURL is the URL of the annotated video. Always present.
	OutputVideoURL string

	// The optional metrics are nil when the API did not send them.
	DetectionCount  *int64
	ProcessingTime  *float64
	ConfidenceScore *float64
	FramesAnalyzed  *int64

	// Extra holds any other keys in the response, keyed by name.
	Extra map[string]interface{}

	raw map[string]interface{}
}

// ProcessingResultFromJSON decodes a processing API response body.
// It returns an error if the body is not a JSON object, if
// output_video_url is missing or empty, or if one of the known metrics
// has the wrong type.
func ProcessingResultFromJSON(data []byte) (*ProcessingResult, error) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()
	raw := make(map[string]interface{})
	if err := decoder.Decode(&raw); err != nil {
		return nil, fmt.Errorf("Response body is not a JSON object: %v", err)
	}
	if _, err := decoder.Token(); err != io.EOF {
		return nil, fmt.Errorf("Response body has trailing data after the JSON object")
	}
	outputURL, ok := raw[constants.FieldOutputVideoURL].(string)
	if !ok || strings.TrimSpace(outputURL) == "" {
		return nil, fmt.Errorf("Response is missing %s", constants.FieldOutputVideoURL)
	}
	result := &ProcessingResult{
		OutputVideoURL: outputURL,
		Extra:          make(map[string]interface{}),
		raw:            raw,
	}
	var err error
	if result.DetectionCount, err = optionalInt(raw, constants.FieldDetectionCount); err != nil {
		return nil, err
	}
	if result.ProcessingTime, err = optionalFloat(raw, constants.FieldProcessingTime); err != nil {
		return nil, err
	}
	if result.ConfidenceScore, err = optionalFloat(raw, constants.FieldConfidenceScore); err != nil {
		return nil, err
	}
	if result.FramesAnalyzed, err = optionalInt(raw, constants.FieldFramesAnalyzed); err != nil {
		return nil, err
	}
	for key, value := range raw {
		if !isKnownField(key) {
			result.Extra[key] = value
		}
	}
	return result, nil
}

func isKnownField(key string) bool {
	for _, field := range knownFields {
		if field == key {
			return true
		}
	}
	return false
}

func optionalFloat(raw map[string]interface{}, key string) (*float64, error) {
	value, present := raw[key]
	if !present || value == nil {
		return nil, nil
	}
	number, ok := value.(json.Number)
	if !ok {
		return nil, fmt.Errorf("Response field %s should be a number, got %v", key, value)
	}
	f, err := number.Float64()
	if err != nil {
		return nil, fmt.Errorf("Response field %s: %v", key, err)
	}
	return &f, nil
}

// optionalInt accepts integers and whole-number floats like 12.0.
func optionalInt(raw map[string]interface{}, key string) (*int64, error) {
	value, present := raw[key]
	if !present || value == nil {
		return nil, nil
	}
	number, ok := value.(json.Number)
	if !ok {
		return nil, fmt.Errorf("Response field %s should be an integer, got %v", key, value)
	}
	if i, err := number.Int64(); err == nil {
		return &i, nil
	}
	f, err := number.Float64()
	if err != nil || f != math.Trunc(f) {
		return nil, fmt.Errorf("Response field %s should be an integer, got %s", key, number)
	}
	i := int64(f)
	return &i, nil
}

// Metrics returns the metrics that are present, keyed by response
// field name, for display.
func (r *ProcessingResult) Metrics() map[string]interface{} {
	metrics := make(map[string]interface{})
	if r.DetectionCount != nil {
		metrics[constants.FieldDetectionCount] = *r.DetectionCount
	}
	if r.ProcessingTime != nil {
		metrics[constants.FieldProcessingTime] = *r.ProcessingTime
	}
	if r.ConfidenceScore != nil {
		metrics[constants.FieldConfidenceScore] = *r.ConfidenceScore
	}
	if r.FramesAnalyzed != nil {
		metrics[constants.FieldFramesAnalyzed] = *r.FramesAnalyzed
	}
	return metrics
}

// ExtraKeys returns the names of the unknown response keys, sorted.
func (r *ProcessingResult) ExtraKeys() []string {
	keys := make([]string, 0, len(r.Extra))
	for key := range r.Extra {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON writes the response as the API sent it, including
// extra keys.
func (r *ProcessingResult) MarshalJSON() ([]byte, error) {
	if r.raw != nil {
		return json.Marshal(r.raw)
	}
	out := r.Metrics()
	for key, value := range r.Extra {
		out[key] = value
	}
	out[constants.FieldOutputVideoURL] = r.OutputVideoURL
	return json.Marshal(out)
}

// UnmarshalJSON lets a ProcessingResult round-trip through a
// serialized Submission.
func (r *ProcessingResult) UnmarshalJSON(data []byte) error {
	decoded, err := ProcessingResultFromJSON(data)
	if err != nil {
		return err
	}
	*r = *decoded
	return nil
}

// ToPrettyJSON returns the full response as indented JSON, the way the
// result page shows it.
func (r *ProcessingResult) ToPrettyJSON() (string, error) {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
