package codec

import "encoding/json"

// JSON serializes values with encoding/json. Larger than msgpack but handy
// when cached entries must stay human-inspectable in the cache backend.
type JSON[V any] struct{}

func (JSON[V]) Encode(v V) ([]byte, error) { return json.Marshal(v) }
func (JSON[V]) Decode(b []byte) (V, error) {
	var v V
	err := json.Unmarshal(b, &v)
	return v, err
}
