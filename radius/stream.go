package radius

import (
	"encoding/binary"
	"io"
)

// ReadDatagram implements the RFC 6613 TCP framing helper from spec.md §6: read 4 header
// bytes, parse length (big-endian from bytes [2..4]), read the remaining length-4 bytes,
// and return the concatenated buffer ready for Parse. End-of-stream before 4 header bytes
// yields an empty read (nil, nil), not an error; a short read after the header is a
// framing error.
func ReadDatagram(r io.Reader) ([]byte, error) {
	header := make([]byte, 4)
	n, err := io.ReadFull(r, header)
	if err != nil {
		if n == 0 && err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	length := int(binary.BigEndian.Uint16(header[2:4]))
	if length < minPacketLength {
		return nil, &InvalidFramingError{Declared: length, Actual: n}
	}

	buf := make([]byte, length)
	copy(buf, header)
	if _, err := io.ReadFull(r, buf[4:]); err != nil {
		return nil, &InvalidFramingError{Declared: length, Actual: 4}
	}

	return buf, nil
}
