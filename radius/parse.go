package radius

import "encoding/binary"

// rawAttr is one attribute as read off the wire, before dictionary resolution: either a
// base attribute (vendorID == 0) or a VSA (vendorID != 0, code is the VendorType byte).
type rawAttr struct {
	code     byte
	vendorID uint32
	value    []byte
	offset   int // offset of this attribute's Type byte within the attributes section
}

// Parse decodes buf into a Packet against dict, per spec.md §4.4's parsing algorithm.
// requestAuthenticator is the authenticator of the original request and must be supplied
// when parsing a response (AccessAccept/Reject/Challenge, AccountingResponse, Disconnect/CoA
// Ack/Nak); it is ignored for request codes, which carry their own authenticator in the
// datagram. metrics may be nil.
func Parse(dict *Dictionary, secret []byte, buf []byte, requestAuthenticator *[16]byte, metrics *Metrics) (*Packet, error) {
	if len(buf) < minPacketLength {
		metrics.recordParseFailure("framing")
		return nil, &InvalidFramingError{Declared: -1, Actual: len(buf)}
	}

	declaredLen := int(binary.BigEndian.Uint16(buf[2:4]))
	if declaredLen != len(buf) {
		metrics.recordParseFailure("framing")
		return nil, &InvalidFramingError{Declared: declaredLen, Actual: len(buf)}
	}

	code := PacketCode(buf[0])
	id := buf[1]
	var authenticator [16]byte
	copy(authenticator[:], buf[4:20])

	p := newPacket(code, id, secret)
	p.Authenticator = authenticator
	if !code.isRequest() && requestAuthenticator != nil {
		ra := *requestAuthenticator
		p.RequestAuthenticator = &ra
	}

	if code.usesRequestAuthenticatorScheme() {
		computed := RequestAuthenticator(byte(code), id, uint16(declaredLen), buf[minPacketLength:], secret)
		if computed != authenticator {
			metrics.recordParseFailure("request_authenticator")
			return nil, &InvalidRequestAuthenticatorError{}
		}
	}

	rawAttrs, err := walkAttributes(buf, metrics)
	if err != nil {
		return nil, err
	}
	rawAttrs = mergeConcatAttributes(rawAttrs, dict)

	maPosition := -1
	for _, ra := range rawAttrs {
		if ra.vendorID != 0 {
			va, ok := dict.GetVendor(ra.vendorID, uint32(ra.code))
			if !ok {
				metrics.recordAttributeSkip("unknown_vendor_attribute")
				packageLogger.Warnw("unknown vendor attribute, skipping", "vendorId", ra.vendorID, "code", ra.code)
				continue
			}
			v, err := decodeAttributeValue(&va.DictionaryAttribute, 0, ra.value, authenticator, secret)
			if err != nil {
				metrics.recordAttributeSkip("decode_error")
				packageLogger.Warnw("attribute decode error, skipping", "name", va.Name, "error", err)
				continue
			}
			p.Add(va.Name, v)
			continue
		}

		attr, err := dict.GetByCode(ra.code)
		if err != nil {
			metrics.recordDictionaryMiss("inbound")
			metrics.recordAttributeSkip("unknown_attribute")
			packageLogger.Warnw("unknown attribute code, skipping", "code", ra.code)
			continue
		}

		if attr.Code == messageAuthenticatorCode {
			maPosition = ra.offset
		}

		v, err := decodeAttributeValue(attr, attr.Code, ra.value, authenticator, secret)
		if err != nil {
			metrics.recordAttributeSkip("decode_error")
			packageLogger.Warnw("attribute decode error, skipping", "name", attr.Name, "error", err)
			continue
		}
		p.Add(attr.Name, v)
	}

	if maPosition >= 0 {
		scratch := make([]byte, len(buf))
		copy(scratch, buf)
		valueStart := minPacketLength + maPosition + 2
		for i := 0; i < 16; i++ {
			scratch[valueStart+i] = 0
		}
		computed := MessageAuthenticator(byte(code), id, uint16(declaredLen), authenticator, scratch[minPacketLength:], secret)
		if !bytesEqual(computed[:], buf[valueStart:valueStart+16]) {
			metrics.recordParseFailure("message_authenticator")
			return nil, &InvalidMessageAuthenticatorError{}
		}
	}

	return p, nil
}

// walkAttributes reads the TLV attribute section starting at offset 20, failing hard on
// any attribute whose declared length would extend past the packet end.
func walkAttributes(buf []byte, metrics *Metrics) ([]rawAttr, error) {
	var out []rawAttr
	offset := minPacketLength
	for offset < len(buf) {
		if offset+2 > len(buf) {
			metrics.recordParseFailure("malformed_attribute")
			return nil, &MalformedAttributeError{Offset: offset, Length: 0, Total: len(buf)}
		}
		typ := buf[offset]
		length := int(buf[offset+1])
		if length < 2 || offset+length > len(buf) {
			metrics.recordParseFailure("malformed_attribute")
			return nil, &MalformedAttributeError{Offset: offset, Length: length, Total: len(buf)}
		}
		value := buf[offset+2 : offset+length]

		if typ == vsaCode {
			if len(value) < 5 {
				metrics.recordAttributeSkip("malformed_vsa")
				packageLogger.Warnw("malformed VSA, skipping", "offset", offset)
				offset += length
				continue
			}
			vendorID := binary.BigEndian.Uint32(value[0:4])
			vendorCode := value[4]
			vendorValue := value[5:]
			out = append(out, rawAttr{code: vendorCode, vendorID: vendorID, value: vendorValue, offset: offset - minPacketLength})
		} else {
			out = append(out, rawAttr{code: typ, value: value, offset: offset - minPacketLength})
		}

		offset += length
	}
	return out, nil
}

// mergeConcatAttributes merges consecutive raw attributes of the same base code whose
// dictionary entry is flagged Concat into a single logical attribute, grounded on
// core/radius_packet.go's Concat reassembly.
func mergeConcatAttributes(in []rawAttr, dict *Dictionary) []rawAttr {
	out := make([]rawAttr, 0, len(in))
	for _, ra := range in {
		if ra.vendorID == 0 {
			if attr, err := dict.GetByCode(ra.code); err == nil && attr.Concat && len(out) > 0 {
				last := &out[len(out)-1]
				if last.vendorID == 0 && last.code == ra.code {
					last.value = append(append([]byte(nil), last.value...), ra.value...)
					continue
				}
			}
		}
		out = append(out, ra)
	}
	return out
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
