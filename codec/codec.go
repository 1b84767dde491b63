// Package codec provides the (de)serializers used to place documents and
// other values into a byte-oriented cache provider.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
