package radius

import (
	"bytes"
	"testing"
)

func TestReadDatagramRoundTrip(t *testing.T) {
	dict := mustTestDictionary(t)
	secret := []byte("mysecret")

	req := NewRequest(AccessRequest, 1, secret)
	req.Add("User-Name", StringValue("frank"))
	out, err := req.Serialize(dict, nil, nil)
	if err != nil {
		t.Fatalf("serialize: %v", err)
	}

	r := bytes.NewReader(append(append([]byte(nil), out...), []byte("trailing garbage")...))
	got, err := ReadDatagram(r)
	if err != nil {
		t.Fatalf("ReadDatagram: %v", err)
	}
	if !bytes.Equal(got, out) {
		t.Errorf("ReadDatagram returned % x, want % x", got, out)
	}
}

func TestReadDatagramEOF(t *testing.T) {
	r := bytes.NewReader(nil)
	got, err := ReadDatagram(r)
	if err != nil {
		t.Fatalf("expected nil error at EOF, got %v", err)
	}
	if got != nil {
		t.Errorf("expected nil buffer at EOF, got % x", got)
	}
}

func TestReadDatagramShortRead(t *testing.T) {
	r := bytes.NewReader([]byte{1, 2, 0, 20}) // declares 20 bytes but supplies none after header
	_, err := ReadDatagram(r)
	if err == nil {
		t.Fatalf("expected framing error for short read")
	}
}
