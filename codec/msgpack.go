package codec

import "github.com/vmihailenco/msgpack/v5"

// Msgpack serializes values using vmihailenco/msgpack/v5. The zero value is
// ready to use. This is the default codec for cached documents: compact,
// fast, and round-trips map[string]any without a schema.
//
// Note msgpack decodes nested maps as map[string]any only when keys are
// strings; use `msgpack:"name"` tags for explicit field control on structs.
type Msgpack[V any] struct{}

func (Msgpack[V]) Encode(v V) ([]byte, error) {
	return msgpack.Marshal(v)
}

func (Msgpack[V]) Decode(b []byte) (V, error) {
	var v V
	err := msgpack.Unmarshal(b, &v)
	return v, err
}
