package channel

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"unicode/utf16"
)

const maxUTFLength = 0xFFFF

var (
	ErrStringTooLong = errors.New("encoded string exceeds 65535 bytes")
	ErrMalformedUTF  = errors.New("malformed modified UTF-8")
)

// appendUTF appends s in the DataOutput.writeUTF format: a big-endian
// uint16 byte length followed by modified UTF-8.
func appendUTF(dst []byte, s string) ([]byte, error) {
	units := utf16.Encode([]rune(s))

	size := 0
	for _, u := range units {
		size += unitLength(u)
	}
	if size > maxUTFLength {
		return dst, fmt.Errorf("%w: %d", ErrStringTooLong, size)
	}

	dst = binary.BigEndian.AppendUint16(dst, uint16(size))
	for _, u := range units {
		switch unitLength(u) {
		case 1:
			dst = append(dst, byte(u))
		case 2:
			dst = append(dst, 0xC0|byte(u>>6), 0x80|byte(u&0x3F))
		default:
			dst = append(dst, 0xE0|byte(u>>12), 0x80|byte((u>>6)&0x3F), 0x80|byte(u&0x3F))
		}
	}
	return dst, nil
}

// NUL is written as two bytes and supplementary characters as two
// three-byte surrogates.
func unitLength(u uint16) int {
	switch {
	case u >= 0x0001 && u <= 0x007F:
		return 1
	case u <= 0x07FF:
		return 2
	default:
		return 3
	}
}

// readUTF reads one string written by appendUTF or DataOutput.writeUTF.
func readUTF(r io.Reader) (string, error) {
	var size uint16
	if err := binary.Read(r, binary.BigEndian, &size); err != nil {
		return "", err
	}

	buf := make([]byte, size)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}

	units := make([]uint16, 0, len(buf))
	for i := 0; i < len(buf); {
		b := buf[i]
		switch {
		case b < 0x80:
			units = append(units, uint16(b))
			i++
		case b&0xE0 == 0xC0:
			if i+1 >= len(buf) || buf[i+1]&0xC0 != 0x80 {
				return "", ErrMalformedUTF
			}
			units = append(units, uint16(b&0x1F)<<6|uint16(buf[i+1]&0x3F))
			i += 2
		case b&0xF0 == 0xE0:
			if i+2 >= len(buf) || buf[i+1]&0xC0 != 0x80 || buf[i+2]&0xC0 != 0x80 {
				return "", ErrMalformedUTF
			}
			units = append(units, uint16(b&0x0F)<<12|uint16(buf[i+1]&0x3F)<<6|uint16(buf[i+2]&0x3F))
			i += 3
		default:
			return "", ErrMalformedUTF
		}
	}
	return string(utf16.Decode(units)), nil
}
