// Package wire frames values written to shared byte stores so the providers
// can tell their own entries apart from foreign or truncated bytes.
package wire

import (
	"bytes"
	"encoding/binary"
	"errors"
)

const (
	version   byte = 1
	kindValue byte = 1
	kindNull  byte = 2

	hdr = 4 + 1 + 1 + 4
)

var (
	ErrCorrupt = errors.New("swrcache: corrupt entry")
	magic4     = [...]byte{'S', 'W', 'R', 'C'}
)

func hasMagic(b []byte) bool {
	return len(b) >= 4 && bytes.Equal(b[:4], magic4[:])
}

// Encode frames a codec payload:
//
//	magic(4) | ver(1) | kind(1) | vlen(u32 be) | payload(vlen)
//
// A nil value is stored as kind=null with no payload so it survives codecs
// that cannot represent nil.
func Encode(payload []byte) []byte {
	return encode(kindValue, payload)
}

// EncodeNull frames an explicit nil value.
func EncodeNull() []byte {
	return encode(kindNull, nil)
}

func encode(kind byte, payload []byte) []byte {
	var buf bytes.Buffer
	buf.Grow(hdr + len(payload))

	buf.Write(magic4[:])
	buf.WriteByte(version)
	buf.WriteByte(kind)

	var u4 [4]byte
	binary.BigEndian.PutUint32(u4[:], uint32(len(payload)))
	buf.Write(u4[:])

	buf.Write(payload)
	return buf.Bytes()
}

// Decode returns the payload of a framed entry. null reports an EncodeNull entry.
// Anything else, including trailing bytes, is ErrCorrupt.
func Decode(b []byte) (payload []byte, null bool, err error) {
	if len(b) < hdr || !hasMagic(b) || b[4] != version {
		return nil, false, ErrCorrupt
	}
	kind := b[5]
	if kind != kindValue && kind != kindNull {
		return nil, false, ErrCorrupt
	}

	vlen := int(binary.BigEndian.Uint32(b[6:hdr]))
	if vlen < 0 || vlen != len(b)-hdr { // strict: no trailing junk
		return nil, false, ErrCorrupt
	}
	if kind == kindNull {
		if vlen != 0 {
			return nil, false, ErrCorrupt
		}
		return nil, true, nil
	}
	return b[hdr:], false, nil
}
