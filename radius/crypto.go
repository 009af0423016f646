package radius

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/rand"
)

// MD5 computes the MD5 digest of the concatenation of its arguments.
func MD5(parts ...[]byte) [16]byte {
	h := md5.New()
	for _, p := range parts {
		h.Write(p)
	}
	var out [16]byte
	copy(out[:], h.Sum(nil))
	return out
}

// HMACMD5 computes HMAC-MD5 over the concatenation of parts, keyed by key.
func HMACMD5(key []byte, parts ...[]byte) [16]byte {
	mac := hmac.New(md5.New, key)
	for _, p := range parts {
		mac.Write(p)
	}
	var out [16]byte
	copy(out[:], mac.Sum(nil))
	return out
}

// RequestAuthenticator computes the Request Authenticator used by Accounting-Request,
// Disconnect-Request and CoA-Request: MD5(code || id || length || 16 zero bytes ||
// attributes || sharedSecret).
func RequestAuthenticator(code byte, id byte, length uint16, attributes []byte, secret []byte) [16]byte {
	header := []byte{code, id, byte(length >> 8), byte(length)}
	var zero [16]byte
	return MD5(header, zero[:], attributes, secret)
}

// ResponseAuthenticator computes the Response Authenticator: MD5(code || id || length ||
// requestAuthenticator || attributes || sharedSecret).
func ResponseAuthenticator(code byte, id byte, length uint16, requestAuthenticator [16]byte, attributes []byte, secret []byte) [16]byte {
	header := []byte{code, id, byte(length >> 8), byte(length)}
	return MD5(header, requestAuthenticator[:], attributes, secret)
}

// MessageAuthenticator computes the RFC 2869 Message-Authenticator:
// HMAC-MD5(sharedSecret, code || id || length || authenticator || attributes) where the
// 16-byte Message-Authenticator attribute value inside attributes must already be zeroed
// by the caller.
func MessageAuthenticator(code byte, id byte, length uint16, authenticator [16]byte, attributesWithMAZeroed []byte, secret []byte) [16]byte {
	header := []byte{code, id, byte(length >> 8), byte(length)}
	return HMACMD5(secret, header, authenticator[:], attributesWithMAZeroed)
}

// HidePassword implements the RFC 2865 §5.2 User-Password hiding scheme. Cleartext is
// padded with zeros to a multiple of 16 bytes; its length is not checked against the
// RFC's 128-byte maximum. Each 16-byte block is XORed with
// MD5(secret || previous-hidden-block-or-authenticator).
func HidePassword(secret []byte, authenticator [16]byte, cleartext []byte) []byte {
	return cryptChain(secret, authenticator[:], padTo16(cleartext), true)
}

// UnhidePassword reverses HidePassword. The returned bytes are the padded, block-aligned
// plaintext; trimming trailing zero bytes is the caller's responsibility when the result
// is meant to be read back as a UTF-8 string (decodeAttributeValue does this for
// User-Password).
func UnhidePassword(secret []byte, authenticator [16]byte, hidden []byte) []byte {
	return cryptChain(secret, authenticator[:], hidden, false)
}

// HideSalted implements the "salted" (encrypt=2, e.g. Tunnel-Password) variant: the only
// difference from HidePassword is that the first block's key material is
// secret||authenticator||salt instead of secret||authenticator (draft-ietf-radius-saltencrypt).
func HideSalted(secret []byte, authenticator [16]byte, salt [2]byte, cleartext []byte) []byte {
	seed := append(append([]byte{}, authenticator[:]...), salt[:]...)
	return cryptChain(secret, seed, padTo16(cleartext), true)
}

// UnhideSalted reverses HideSalted.
func UnhideSalted(secret []byte, authenticator [16]byte, salt [2]byte, hidden []byte) []byte {
	seed := append(append([]byte{}, authenticator[:]...), salt[:]...)
	return cryptChain(secret, seed, hidden, false)
}

// cryptChain implements both directions of the RFC 2865 §5.2 construction: the chain
// b0 = MD5(secret||seed), bi = MD5(secret||c[i-1]) always runs over the hidden blocks c,
// which are the output when hiding and the input when unhiding; seed is authenticator
// (plain) or authenticator||salt (salted).
func cryptChain(secret []byte, seed []byte, in []byte, hiding bool) []byte {
	out := make([]byte, len(in))
	prev := seed
	for i := 0; i+16 <= len(in); i += 16 {
		b := MD5(secret, prev)
		for j := 0; j < 16; j++ {
			out[i+j] = in[i+j] ^ b[j]
		}
		if hiding {
			prev = out[i : i+16]
		} else {
			prev = in[i : i+16]
		}
	}
	return out
}

func padTo16(in []byte) []byte {
	n := len(in)
	if n == 0 {
		n = 16
	} else if rem := n % 16; rem != 0 {
		n += 16 - rem
	}
	out := make([]byte, n)
	copy(out, in)
	return out
}

// BuildRandomAuthenticator generates a 16-byte authenticator from crypto/rand, re-rolling
// any byte that comes back zero. spec.md invariant 1 requires a cryptographically strong
// source with no zero bytes for Access-Request/Status-Server authenticators; the teacher's
// own BuildRandomAuthenticator uses seeded math/rand, which does not qualify (see
// DESIGN.md).
func BuildRandomAuthenticator() [16]byte {
	var out [16]byte
	fillNonZero(out[:])
	return out
}

// BuildRandomSalt generates the 2-byte salt used by "salted" (encrypt=2) attributes, with
// the same cryptographically-strong, no-zero-byte requirement as the authenticator.
func BuildRandomSalt() [2]byte {
	var out [2]byte
	fillNonZero(out[:])
	return out
}

func fillNonZero(b []byte) {
	for i := range b {
		for {
			var single [1]byte
			if _, err := rand.Read(single[:]); err != nil {
				panic("crypto/rand unavailable: " + err.Error())
			}
			if single[0] != 0 {
				b[i] = single[0]
				break
			}
		}
	}
}
