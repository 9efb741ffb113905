package domain

import (
	"encoding/json"
	"time"
)

// CacheTTL is how long a cached recommendation set stays fresh.
const CacheTTL = 300000 * time.Millisecond

// CacheEntry is a timestamped recommendation payload stored under a content key.
//
// It serialises as {"time": <unix millis>, "content": [...]}.
type CacheEntry struct {
	// Timestamp is when the payload was computed.
	Timestamp time.Time

	// Payload is the ordered recommendation list.
	Payload []Recommendation
}

// IsFresh reports whether the entry is still within CacheTTL at now.
// An entry exactly CacheTTL old is still fresh.
func (e CacheEntry) IsFresh(now time.Time) bool {
	return now.Sub(e.Timestamp) <= CacheTTL
}

type cacheEntryJSON struct {
	Time    int64            `json:"time"`
	Content []Recommendation `json:"content"`
}

// MarshalJSON encodes the entry with a millisecond timestamp.
func (e CacheEntry) MarshalJSON() ([]byte, error) {
	content := e.Payload
	if content == nil {
		content = []Recommendation{}
	}
	return json.Marshal(cacheEntryJSON{
		Time:    e.Timestamp.UnixMilli(),
		Content: content,
	})
}

// UnmarshalJSON decodes an entry written by MarshalJSON.
func (e *CacheEntry) UnmarshalJSON(data []byte) error {
	var raw cacheEntryJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	e.Timestamp = time.UnixMilli(raw.Time)
	e.Payload = raw.Content
	if e.Payload == nil {
		e.Payload = []Recommendation{}
	}
	return nil
}
