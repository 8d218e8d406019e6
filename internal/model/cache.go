package model

import "time"

// EncodingZstd marks a cache entry whose Data is zstd-compressed JSON.
const EncodingZstd = "zstd"

// CacheEntry is one memoized upstream payload as persisted by a store.
type CacheEntry struct {
	Key       string    `json:"key"`
	Query     Query     `json:"query"`
	Encoding  string    `json:"encoding"`
	Data      []byte    `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}
