package redisbridge

import (
	"encoding/json"
)

// Codec converts values to and from the string payloads stored in Redis.
type Codec[T any] interface {
	Encode(value T) (string, error)
	Decode(payload string) (T, error)
}

// JSONCodec encodes values as JSON documents.
type JSONCodec[T any] struct{}

// Encode implements Codec.
func (JSONCodec[T]) Encode(value T) (string, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Decode implements Codec.
func (JSONCodec[T]) Decode(payload string) (T, error) {
	var v T
	err := json.Unmarshal([]byte(payload), &v)
	return v, err
}

// StringCodec passes strings through unchanged.
type StringCodec struct{}

// Encode implements Codec.
func (StringCodec) Encode(value string) (string, error) { return value, nil }

// Decode implements Codec.
func (StringCodec) Decode(payload string) (string, error) { return payload, nil }
