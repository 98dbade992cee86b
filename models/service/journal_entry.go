package service

import (
	"encoding/json"
	"time"
)

// JournalEntry lists the object keys a submission wrote to storage.
// The cleanup worker uses it to delete objects left behind by failed
// submissions.
type JournalEntry struct {
	SubmissionID string    `json:"submission_id"`
	Bucket       string    `json:"bucket"`
	Keys         []string  `json:"keys"`
	Orphaned     bool      `json:"orphaned"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func NewJournalEntry(submissionID, bucket string) *JournalEntry {
	now := time.Now().UTC()
	return &JournalEntry{
		SubmissionID: submissionID,
		Bucket:       bucket,
		Keys:         make([]string, 0),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// AddKey appends key, unless the entry already has it.
func (e *JournalEntry) AddKey(key string) {
	for _, k := range e.Keys {
		if k == key {
			return
		}
	}
	e.Keys = append(e.Keys, key)
	e.UpdatedAt = time.Now().UTC()
}

func JournalEntryFromJSON(jsonData string) (*JournalEntry, error) {
	entry := &JournalEntry{}
	err := json.Unmarshal([]byte(jsonData), entry)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (e *JournalEntry) ToJSON() (string, error) {
	bytes, err := json.Marshal(e)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}
