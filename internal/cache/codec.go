package cache

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"

	"github.com/alfredjeanlab/worldchart/internal/model"
)

// codec turns payloads into the compressed bytes persisted by a store.
// zstd encoders and decoders are safe for concurrent EncodeAll/DecodeAll.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) encode(p *model.Payload) ([]byte, error) {
	raw, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("marshal payload: %w", err)
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// decode accepts zstd entries and, for rows written by hand, plain JSON.
func (c *codec) decode(e *model.CacheEntry) (*model.Payload, error) {
	raw := e.Data
	switch e.Encoding {
	case model.EncodingZstd:
		var err error
		raw, err = c.dec.DecodeAll(e.Data, nil)
		if err != nil {
			return nil, fmt.Errorf("decompress %s: %w", e.Key, err)
		}
	case "", "json":
	default:
		return nil, fmt.Errorf("entry %s: unknown encoding %q", e.Key, e.Encoding)
	}
	var p model.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", e.Key, err)
	}
	return &p, nil
}

func (c *codec) close() {
	c.enc.Close()
	c.dec.Close()
}
