package codec

import (
	"bytes"
	"reflect"
	"strings"
	"testing"

	"github.com/cameronfrazier/bottle-cork/store"
)

func TestRecordRoundTrip(t *testing.T) {
	rec := store.Record{
		"login": "alice",
		"email": "alice@example.org",
		"role":  "admin",
	}
	codecs := map[string]Codec[store.Record]{
		"msgpack": Msgpack[store.Record]{},
		"json":    JSON[store.Record]{},
		"cbor":    MustCBOR[store.Record](true),
		"limited": Limit[store.Record]{Inner: Msgpack[store.Record]{}, MaxDecode: 1 << 20},
	}
	for name, c := range codecs {
		t.Run(name, func(t *testing.T) {
			b, err := c.Encode(rec)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			got, err := c.Decode(b)
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if !reflect.DeepEqual(got, rec) {
				t.Fatalf("round trip mismatch: got %#v, want %#v", got, rec)
			}
		})
	}
}

func TestMsgpackNestedRecord(t *testing.T) {
	rec := store.Record{
		"login": "bob",
		"prefs": map[string]any{"theme": "dark", "lang": "en"},
	}
	c := Msgpack[store.Record]{}
	b, err := c.Encode(rec)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	got, err := c.Decode(b)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !reflect.DeepEqual(got, rec) {
		t.Fatalf("nested round trip mismatch: got %#v", got)
	}
}

func TestLimitRejectsOversizedPayload(t *testing.T) {
	c := Limit[store.Record]{Inner: Msgpack[store.Record]{}, MaxDecode: 4}
	b, err := c.Encode(store.Record{"login": "alice"})
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(b) <= 4 {
		t.Fatalf("payload unexpectedly small: %d bytes", len(b))
	}
	if _, err := c.Decode(b); err == nil || !strings.Contains(err.Error(), "payload too large") {
		t.Fatalf("Decode over limit: err=%v", err)
	}

	// MaxDecode <= 0 disables the cap.
	open := Limit[store.Record]{Inner: Msgpack[store.Record]{}}
	if _, err := open.Decode(b); err != nil {
		t.Fatalf("Decode with limit disabled: %v", err)
	}
}

func TestRawCodecs(t *testing.T) {
	raw := []byte{0x00, 0x01, 0xfe}
	enc, err := Bytes{}.Encode(raw)
	if err != nil {
		t.Fatalf("Bytes.Encode: %v", err)
	}
	dec, err := Bytes{}.Decode(enc)
	if err != nil || !bytes.Equal(dec, raw) {
		t.Fatalf("Bytes round trip: got %v err=%v", dec, err)
	}

	enc, err = String{}.Encode("héllo")
	if err != nil {
		t.Fatalf("String.Encode: %v", err)
	}
	s, err := String{}.Decode(enc)
	if err != nil || s != "héllo" {
		t.Fatalf("String round trip: got %q err=%v", s, err)
	}
}
