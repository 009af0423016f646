package radius

import (
	"bytes"
	"encoding/binary"
	"net"
	"strings"
	"testing"
)

// Invariant 1 and 3: round-trip of a typical Access-Request, and the serialized length
// field always matches the buffer length and lies within bounds.
func TestAccessRequestRoundTrip(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	req := NewRequest(AccessRequest, 7, secret)
	req.Add("User-Name", StringValue("nemo"))
	req.Add("User-Password", StringValue("arctangent"))
	req.Add("NAS-IP-Address", IPAddrValue(net.ParseIP("192.168.1.16")))
	req.Add("NAS-Port", IntegerValue(3))

	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	declared := int(binary.BigEndian.Uint16(out[2:4]))
	if declared != len(out) {
		t.Errorf("declared length %d != buffer length %d", declared, len(out))
	}
	if declared < minPacketLength || declared > maxPacketLength {
		t.Errorf("declared length %d out of bounds", declared)
	}

	got, err := Parse(dict, secret, out, nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	if v, err := got.Get("User-Name"); err != nil {
		t.Errorf("User-Name missing: %v", err)
	} else if s, _ := v.AsString(); s != "nemo" {
		t.Errorf("User-Name = %q, want nemo", s)
	}
	if v, err := got.Get("User-Password"); err != nil {
		t.Errorf("User-Password missing: %v", err)
	} else if s, _ := v.AsString(); s != "arctangent" {
		t.Errorf("User-Password = %q, want arctangent", s)
	}
	if v, err := got.Get("NAS-IP-Address"); err != nil {
		t.Errorf("NAS-IP-Address missing: %v", err)
	} else if ip, _ := v.AsIP(); !ip.Equal(net.ParseIP("192.168.1.16")) {
		t.Errorf("NAS-IP-Address = %v, want 192.168.1.16", ip)
	}
	if v, err := got.Get("NAS-Port"); err != nil {
		t.Errorf("NAS-Port missing: %v", err)
	} else if n, _ := v.AsInteger(); n != 3 {
		t.Errorf("NAS-Port = %d, want 3", n)
	}
}

// S2 Accounting-Request authenticator: the Request Authenticator is MD5(header || zero ||
// attributes || secret), and parse accepts the resulting datagram.
func TestAccountingRequestAuthenticatorS2(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	req := NewRequest(AccountingRequest, 42, secret)
	req.Add("User-Name", StringValue("bob"))

	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	length := binary.BigEndian.Uint16(out[2:4])
	want := RequestAuthenticator(byte(AccountingRequest), 42, length, out[minPacketLength:], secret)
	var got [16]byte
	copy(got[:], out[4:20])
	if got != want {
		t.Errorf("request authenticator mismatch: got % x want % x", got, want)
	}

	if _, err := Parse(dict, secret, out, nil, nil); err != nil {
		t.Errorf("parse of validly authenticated packet failed: %v", err)
	}
}

// S3 Invalid shared secret: the same datagram parsed with a different secret fails with
// InvalidRequestAuthenticatorError.
func TestAccountingRequestWrongSecretS3(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	req := NewRequest(AccountingRequest, 42, secret)
	req.Add("User-Name", StringValue("bob"))
	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	_, err = Parse(dict, []byte("wrongsecret"), out, nil, nil)
	if err == nil {
		t.Fatalf("expected InvalidRequestAuthenticatorError, got nil")
	}
	if _, ok := err.(*InvalidRequestAuthenticatorError); !ok {
		t.Errorf("got error %T (%v), want *InvalidRequestAuthenticatorError", err, err)
	}
}

// Invariant 4 and S4: a Status-Server packet's Message-Authenticator is a fixpoint of
// HMAC-MD5 once its own field is zeroed back out.
func TestMessageAuthenticatorFixpointS4(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	req := NewRequest(StatusServer, 9, secret)
	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	maPos := bytes.Index(out[minPacketLength:], []byte{0x50}) // Message-Authenticator code 80
	if maPos < 0 {
		t.Fatalf("Message-Authenticator attribute not found in serialized packet")
	}
	valueStart := minPacketLength + maPos + 2

	var authenticator [16]byte
	copy(authenticator[:], out[4:20])

	scratch := append([]byte(nil), out...)
	for i := 0; i < 16; i++ {
		scratch[valueStart+i] = 0
	}
	length := binary.BigEndian.Uint16(out[2:4])
	recomputed := MessageAuthenticator(byte(StatusServer), 9, length, authenticator, scratch[minPacketLength:], secret)

	if !bytes.Equal(recomputed[:], out[valueStart:valueStart+16]) {
		t.Errorf("recomputed Message-Authenticator % x != stored % x", recomputed, out[valueStart:valueStart+16])
	}
}

// S5 Unknown attribute tolerance: a datagram with an attribute code absent from the
// dictionary parses successfully, omitting that attribute.
func TestUnknownAttributeToleranceS5(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	req := NewRequest(AccessRequest, 1, secret)
	req.Add("User-Name", StringValue("alice"))
	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	// Append a bogus attribute with a code the dictionary does not define, fixing up length.
	unknown := []byte{199, 4, 0xaa, 0xbb}
	patched := append(append([]byte(nil), out...), unknown...)
	binary.BigEndian.PutUint16(patched[2:4], uint16(len(patched)))

	got, err := Parse(dict, secret, patched, nil, nil)
	if err != nil {
		t.Fatalf("parse with unknown attribute should succeed, got: %v", err)
	}
	if _, err := got.Get("User-Name"); err != nil {
		t.Errorf("known attribute lost: %v", err)
	}
	if len(got.GetAll("User-Name")) != 1 {
		t.Errorf("expected exactly one User-Name, got %d", len(got.GetAll("User-Name")))
	}
}

// S6 VSA round-trip: a Microsoft (VendorId=311) VendorCode=16 octets VSA serializes to
// 26|totalLen|00 00 01 37|16|vsaLen|value and parses back to the same name/value.
func TestVendorAttributeRoundTripS6(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	req := NewRequest(AccessRequest, 3, secret)
	value := []byte{0x01, 0x02, 0x03, 0x04}
	req.Add("MS-MPPE-Send-Key", OctetsValue(value))

	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	body := out[minPacketLength:]
	if body[0] != vsaCode {
		t.Fatalf("expected VSA type byte 26, got %d", body[0])
	}
	totalLen := int(body[1])
	if totalLen != 8+len(value) {
		t.Errorf("total length = %d, want %d", totalLen, 8+len(value))
	}
	vendorID := binary.BigEndian.Uint32(body[2:6])
	if vendorID != 311 {
		t.Errorf("vendor id = %d, want 311", vendorID)
	}
	if body[6] != 16 {
		t.Errorf("vendor code = %d, want 16", body[6])
	}
	vsaLen := int(body[7])
	if vsaLen != 2+len(value) {
		t.Errorf("vsa length = %d, want %d", vsaLen, 2+len(value))
	}
	if !bytes.Equal(body[8:8+len(value)], value) {
		t.Errorf("vsa value = % x, want % x", body[8:8+len(value)], value)
	}

	got, err := Parse(dict, secret, out, nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := got.Get("MS-MPPE-Send-Key")
	if err != nil {
		t.Fatalf("MS-MPPE-Send-Key missing after parse: %v", err)
	}
	gotBytes, err := v.AsOctets()
	if err != nil || !bytes.Equal(gotBytes, value) {
		t.Errorf("MS-MPPE-Send-Key = % x, want % x", gotBytes, value)
	}
}

// Invariant 4: a response's authenticator is MD5(header || request authenticator ||
// attributes || secret).
func TestResponseAuthenticatorInvariant(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	req := NewRequest(AccessRequest, 5, secret)
	req.Add("User-Name", StringValue("carol"))
	if _, err := req.Serialize(dict, nil, nil); err != nil {
		t.Fatalf("serialize request: %v", err)
	}

	resp := NewResponse(req, AccessAccept)
	resp.Add("Reply-Message", StringValue("ok"))
	out, err := resp.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize response: %v", err)
	}

	length := binary.BigEndian.Uint16(out[2:4])
	want := ResponseAuthenticator(byte(AccessAccept), req.Identifier, length, req.Authenticator, out[minPacketLength:], secret)
	var got [16]byte
	copy(got[:], out[4:20])
	if got != want {
		t.Errorf("response authenticator mismatch: got % x want % x", got, want)
	}
}

func TestConcatAttributeRoundTrip(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	longMessage := strings.Repeat("x", 600)
	req := NewRequest(AccessRequest, 1, secret)
	req.Add("Reply-Message", StringValue(longMessage))

	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := Parse(dict, secret, out, nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	v, err := got.Get("Reply-Message")
	if err != nil {
		t.Fatalf("Reply-Message missing: %v", err)
	}
	s, _ := v.AsString()
	if s != longMessage {
		t.Errorf("reassembled Reply-Message length %d, want %d", len(s), len(longMessage))
	}
}

func TestCopyWithFilters(t *testing.T) {
	secret := []byte("mysecret")
	p := NewRequest(AccessRequest, 1, secret)
	p.Add("User-Name", StringValue("dave"))
	p.Add("NAS-Port", IntegerValue(1))

	positive := p.Copy([]string{"User-Name"}, nil)
	if len(positive.GetAll("NAS-Port")) != 0 {
		t.Errorf("positive filter should drop NAS-Port")
	}
	if len(positive.GetAll("User-Name")) != 1 {
		t.Errorf("positive filter should keep User-Name")
	}

	negative := p.Copy(nil, []string{"NAS-Port"})
	if len(negative.GetAll("NAS-Port")) != 0 {
		t.Errorf("negative filter should drop NAS-Port")
	}
	if len(negative.GetAll("User-Name")) != 1 {
		t.Errorf("negative filter should keep User-Name")
	}
}

func TestCheckPassword(t *testing.T) {
	secret := []byte("mysecret")
	dict := mustTestDictionary(t)

	req := NewRequest(AccessRequest, 1, secret)
	req.Add("User-Name", StringValue("eve"))
	req.Add("User-Password", StringValue("swordfish"))
	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}
	got, err := Parse(dict, secret, out, nil, nil)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	ok, err := got.CheckPassword("swordfish")
	if err != nil || !ok {
		t.Errorf("CheckPassword(correct) = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = got.CheckPassword("wrong")
	if err != nil || ok {
		t.Errorf("CheckPassword(wrong) = (%v, %v), want (false, nil)", ok, err)
	}
}
