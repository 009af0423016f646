package radius

import (
	"bytes"
	"testing"
)

// S1 Access-Request with hidden password (spec.md §8).
func TestHidePasswordS1(t *testing.T) {
	secret := []byte("xyzzy5461")
	authenticator := [16]byte{0x0c, 0x0b, 0xa4, 0x7e, 0xa2, 0x93, 0x4c, 0x49, 0x6f, 0xd0, 0x3a, 0xe7, 0xe1, 0x62, 0x5d, 0x82}

	hidden := HidePassword(secret, authenticator, []byte("arctangent"))

	want := []byte{0x0d, 0xbb, 0x81, 0xd1, 0x32, 0xf7, 0xfa, 0x18, 0x95, 0x43, 0xf1, 0xfe, 0xb3, 0xcf, 0x77, 0x35}
	if !bytes.Equal(hidden, want) {
		t.Errorf("hidden password = % x, want % x", hidden, want)
	}
}

// Invariant 2: password round-trip for arbitrary cleartext up to 128 bytes.
func TestPasswordRoundTrip(t *testing.T) {
	secret := []byte("mysecret")
	authenticator := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}

	cases := []string{
		"",
		"a",
		"sixteen-byte-pw!",
		"a password that is exactly thirty two bytes!!!",
		"'my-password! and a very long one indeed %&$",
	}
	for _, want := range cases {
		hidden := HidePassword(secret, authenticator, []byte(want))
		padded := UnhidePassword(secret, authenticator, hidden)
		got := trimTrailingZero(padded)
		if string(got) != want {
			t.Errorf("round trip for %q: got %q", want, got)
		}
	}
}

// Invariant 2 (salted variant): HideSalted/UnhideSalted round-trips through the
// 1-byte internal length convention used by the withlen encoder/decoder.
func TestSaltedPasswordRoundTrip(t *testing.T) {
	secret := []byte("mysecret")
	authenticator := [16]byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16}
	salt := [2]byte{0xaa, 0x55}

	want := []byte("tunnel-password-value")
	internal := append([]byte{byte(len(want))}, want...)
	hidden := HideSalted(secret, authenticator, salt, padTo16(internal))
	padded := UnhideSalted(secret, authenticator, salt, hidden)

	n := int(padded[0])
	got := padded[1 : 1+n]
	if !bytes.Equal(got, want) {
		t.Errorf("salted round trip got %q, want %q", got, want)
	}
}

func TestMD5AndHMACMD5(t *testing.T) {
	a := MD5([]byte("foo"), []byte("bar"))
	b := MD5([]byte("foobar"))
	if a != b {
		t.Errorf("MD5 of split parts should equal MD5 of concatenation")
	}

	m1 := HMACMD5([]byte("key"), []byte("foo"), []byte("bar"))
	m2 := HMACMD5([]byte("key"), []byte("foobar"))
	if m1 != m2 {
		t.Errorf("HMACMD5 of split parts should equal HMACMD5 of concatenation")
	}
}

func TestBuildRandomAuthenticatorNoZeroBytes(t *testing.T) {
	for i := 0; i < 50; i++ {
		a := BuildRandomAuthenticator()
		for _, b := range a {
			if b == 0 {
				t.Fatalf("authenticator contains a zero byte: % x", a)
			}
		}
	}
}

func TestBuildRandomSaltNoZeroBytes(t *testing.T) {
	for i := 0; i < 50; i++ {
		s := BuildRandomSalt()
		for _, b := range s {
			if b == 0 {
				t.Fatalf("salt contains a zero byte: % x", s)
			}
		}
	}
}
