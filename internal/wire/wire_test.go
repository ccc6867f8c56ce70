package wire

import (
	"bytes"
	"encoding/binary"
	"testing"
)

func mustDecode(t *testing.T, b []byte) ([]byte, bool) {
	t.Helper()
	p, null, err := Decode(b)
	if err != nil {
		t.Fatalf("Decode error: %v", err)
	}
	return p, null
}

func TestRoundTripEmptyAndNonEmpty(t *testing.T) {
	for _, payload := range [][]byte{nil, []byte("hello"), {0, 1, 2, 3, 4}} {
		p, null := mustDecode(t, Encode(payload))
		if null {
			t.Fatalf("value entry decoded as null")
		}
		if !bytes.Equal(p, payload) {
			t.Fatalf("payload mismatch: got %x want %x", p, payload)
		}
	}
}

func TestNullEntry(t *testing.T) {
	p, null := mustDecode(t, EncodeNull())
	if !null || p != nil {
		t.Fatalf("want null entry, got null=%v payload=%x", null, p)
	}
}

func TestRejectsTrailingBytes(t *testing.T) {
	enc := Encode([]byte("x"))
	enc = append(enc, 0xDE, 0xAD) // add junk
	if _, _, err := Decode(enc); err == nil {
		t.Fatalf("expected error on trailing bytes")
	}
}

func TestCorruptHeaders(t *testing.T) {
	enc := Encode([]byte("abc"))

	// bad magic
	badMagic := append([]byte(nil), enc...)
	badMagic[0] = 'X'
	if _, _, err := Decode(badMagic); err == nil {
		t.Fatalf("expected error on bad magic")
	}

	// wrong version
	badVer := append([]byte(nil), enc...)
	badVer[4] = version + 1
	if _, _, err := Decode(badVer); err == nil {
		t.Fatalf("expected error on bad version")
	}

	// unknown kind
	badKind := append([]byte(nil), enc...)
	badKind[5] = 9
	if _, _, err := Decode(badKind); err == nil {
		t.Fatalf("expected error on bad kind")
	}

	// length claims more than present
	short := append([]byte(nil), enc...)
	binary.BigEndian.PutUint32(short[6:10], 1<<20)
	if _, _, err := Decode(short); err == nil {
		t.Fatalf("expected error on oversized length")
	}

	// truncated header
	if _, _, err := Decode(enc[:5]); err == nil {
		t.Fatalf("expected error on truncated header")
	}
}

func TestNullWithPayloadIsCorrupt(t *testing.T) {
	enc := encode(kindNull, []byte("z"))
	if _, _, err := Decode(enc); err == nil {
		t.Fatalf("null entries must not carry a payload")
	}
}
