package network

import (
	"fmt"
	"time"

	"github.com/brandpulse/brandpulse-demo/constants"
	"github.com/brandpulse/brandpulse-demo/models/service"
	"github.com/go-redis/redis/v7"
)

// RedisClient keeps the upload journal: for each submission, the list
// of object keys it wrote to storage, plus a set of submissions whose
// objects are orphaned and should be deleted.
type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient returns a new journal client. Param ttl is how long
// journal entries live. Entries for submissions that succeeded simply
// expire.
func NewRedisClient(address, password string, db int, ttl time.Duration) *RedisClient {
	return &RedisClient{
		client: redis.NewClient(&redis.Options{
			Addr:     address,
			Password: password,
			DB:       db,
		}),
		ttl: ttl,
	}
}

func (c *RedisClient) Ping() (string, error) {
	return c.client.Ping().Result()
}

func (c *RedisClient) Close() error {
	return c.client.Close()
}

func entryKey(submissionID string) string {
	return constants.JournalKeyPrefix + submissionID
}

// Get returns the journal entry for a submission. It returns nil and
// no error if there's no such entry.
func (c *RedisClient) Get(submissionID string) (*service.JournalEntry, error) {
	data, err := c.client.Get(entryKey(submissionID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("Journal Get (%s): %s", submissionID, err.Error())
	}
	return service.JournalEntryFromJSON(data)
}

func (c *RedisClient) save(entry *service.JournalEntry) error {
	jsonData, err := entry.ToJSON()
	if err != nil {
		return err
	}
	_, err = c.client.Set(entryKey(entry.SubmissionID), jsonData, c.ttl).Result()
	if err != nil {
		return fmt.Errorf("Journal save (%s): %s", entry.SubmissionID, err.Error())
	}
	return nil
}

// Record appends key to the journal entry for submissionID, creating
// the entry if necessary. Call this after each successful upload.
func (c *RedisClient) Record(submissionID, bucket, key string) error {
	entry, err := c.Get(submissionID)
	if err != nil {
		return err
	}
	if entry == nil {
		entry = service.NewJournalEntry(submissionID, bucket)
	}
	entry.AddKey(key)
	return c.save(entry)
}

// Keys returns the object keys recorded for submissionID, in the order
// they were written.
func (c *RedisClient) Keys(submissionID string) ([]string, error) {
	entry, err := c.Get(submissionID)
	if err != nil || entry == nil {
		return nil, err
	}
	return entry.Keys, nil
}

// MarkOrphaned flags the submission's objects for deletion. It's a
// no-op for submissions that have no journal entry, since those never
// wrote anything.
func (c *RedisClient) MarkOrphaned(submissionID string) error {
	entry, err := c.Get(submissionID)
	if err != nil || entry == nil {
		return err
	}
	entry.Orphaned = true
	entry.UpdatedAt = time.Now().UTC()
	if err = c.save(entry); err != nil {
		return err
	}
	_, err = c.client.SAdd(constants.JournalOrphanSetKey, submissionID).Result()
	if err != nil {
		return fmt.Errorf("Journal MarkOrphaned (%s): %s", submissionID, err.Error())
	}
	return nil
}

// Orphaned returns the ids of all submissions marked orphaned.
func (c *RedisClient) Orphaned() ([]string, error) {
	ids, err := c.client.SMembers(constants.JournalOrphanSetKey).Result()
	if err != nil {
		return nil, fmt.Errorf("Journal Orphaned: %s", err.Error())
	}
	return ids, nil
}

// Forget deletes the journal entry for submissionID and removes it
// from the orphan set.
func (c *RedisClient) Forget(submissionID string) error {
	_, err := c.client.Del(entryKey(submissionID)).Result()
	if err != nil {
		return fmt.Errorf("Journal Forget (%s): %s", submissionID, err.Error())
	}
	_, err = c.client.SRem(constants.JournalOrphanSetKey, submissionID).Result()
	if err != nil {
		return fmt.Errorf("Journal Forget (%s): %s", submissionID, err.Error())
	}
	return nil
}
