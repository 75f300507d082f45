package changefeed

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Codec кодирует/декодирует партию изменений
type Codec interface {
	Name() string
	Encode(changes []Change) ([]byte, error)
	Decode(payload []byte) ([]Change, error)
}

type jsonCodec struct{}

// NewJSONCodec возвращает кодек без сжатия
func NewJSONCodec() Codec { return jsonCodec{} }

func (jsonCodec) Name() string { return "json" }

func (jsonCodec) Encode(changes []Change) ([]byte, error) {
	return json.Marshal(changes)
}

func (jsonCodec) Decode(payload []byte) ([]Change, error) {
	var changes []Change
	if err := json.Unmarshal(payload, &changes); err != nil {
		return nil, fmt.Errorf("decode changes: %w", err)
	}
	return changes, nil
}

// zstdCodec сжимает JSON партии. EncodeAll/DecodeAll безопасны для
// конкурентного использования, поэтому кодек разделяемый.
type zstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

// NewZstdCodec возвращает кодек JSON + zstd
func NewZstdCodec() (Codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}
	return &zstdCodec{enc: enc, dec: dec}, nil
}

func (c *zstdCodec) Name() string { return "json+zstd" }

func (c *zstdCodec) Encode(changes []Change) ([]byte, error) {
	raw, err := jsonCodec{}.Encode(changes)
	if err != nil {
		return nil, err
	}
	return c.enc.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

func (c *zstdCodec) Decode(payload []byte) ([]Change, error) {
	raw, err := c.dec.DecodeAll(payload, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	return jsonCodec{}.Decode(raw)
}
