package radius

import "crypto/md5"

// CheckPassword validates a PAP User-Password attribute against cleartext, grounded on
// core/radius_packet.go's Auth helper. The attribute must already have been decoded (it is
// unhidden automatically by AttributeCodec, see SPEC_FULL.md §4.3).
func (p *Packet) CheckPassword(cleartext string) (bool, error) {
	v, err := p.Get("User-Password")
	if err != nil {
		return false, err
	}
	got, err := v.AsString()
	if err != nil {
		if b, derr := v.AsOctets(); derr == nil {
			return string(b) == cleartext, nil
		}
		return false, err
	}
	return got == cleartext, nil
}

// CheckChapPassword validates a CHAP-Password attribute (17 bytes: id(1) || response(16))
// against cleartext, using CHAP-Challenge if present, else the packet's own authenticator
// as the challenge — grounded on core/radius_packet.go's Auth helper.
func (p *Packet) CheckChapPassword(cleartext string) (bool, error) {
	v, err := p.Get("CHAP-Password")
	if err != nil {
		return false, err
	}
	raw, err := v.AsOctets()
	if err != nil {
		return false, err
	}
	if len(raw) != 17 {
		return false, &UnsupportedAttributeTypeError{Name: "CHAP-Password", Type: "octets"}
	}
	chapID := raw[0]
	response := raw[1:]

	challenge := p.Authenticator[:]
	if cv, err := p.Get("CHAP-Challenge"); err == nil {
		if b, err := cv.AsOctets(); err == nil {
			challenge = b
		}
	}

	h := md5.New()
	h.Write([]byte{chapID})
	h.Write([]byte(cleartext))
	h.Write(challenge)
	expected := h.Sum(nil)

	return bytesEqual(expected, response), nil
}
