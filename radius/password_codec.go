package radius

import "fmt"

// encodeAttributeValue produces the raw wire value bytes for a single attribute (base or
// vendor; code is 0 for vendor attributes),
// handling the code-2 (User-Password) and dictionary-flagged Encrypted/Salted/Tagged
// cases before falling back to the plain per-type encoder in attribute.go.
func encodeAttributeValue(attr *DictionaryAttribute, code byte, v Value, authenticator [16]byte, secret []byte) ([]byte, error) {
	if code == userPasswordCode || attr.Encrypted || attr.Salted {
		clear, err := clearTextBytes(attr.Name, v)
		if err != nil {
			return nil, err
		}

		if attr.Salted {
			salt := BuildRandomSalt()
			internal := append([]byte{byte(len(clear))}, clear...)
			hidden := HideSalted(secret, authenticator, salt, internal)
			out := make([]byte, 0, 2+len(hidden))
			out = append(out, salt[:]...)
			out = append(out, hidden...)
			return withTag(attr, v.Tag, out), nil
		}

		hidden := HidePassword(secret, authenticator, clear)
		return withTag(attr, v.Tag, hidden), nil
	}

	raw, err := encodeRawValue(attr.Name, attr.Type, v)
	if err != nil {
		return nil, err
	}
	return withTag(attr, v.Tag, raw), nil
}

// decodeAttributeValue is the inverse of encodeAttributeValue.
func decodeAttributeValue(attr *DictionaryAttribute, code byte, raw []byte, authenticator [16]byte, secret []byte) (Value, error) {
	tag := byte(0)
	if attr.Tagged {
		if len(raw) < 1 {
			return Value{}, fmt.Errorf("tagged attribute %q too short", attr.Name)
		}
		tag = raw[0]
		raw = raw[1:]
	}

	if code == userPasswordCode || attr.Encrypted || attr.Salted {
		var clear []byte
		if attr.Salted {
			if len(raw) < 2 {
				return Value{}, fmt.Errorf("salted attribute %q too short", attr.Name)
			}
			var salt [2]byte
			copy(salt[:], raw[:2])
			padded := UnhideSalted(secret, authenticator, salt, raw[2:])
			if len(padded) < 1 {
				return Value{}, fmt.Errorf("salted attribute %q decoded to nothing", attr.Name)
			}
			n := int(padded[0])
			if n > len(padded)-1 {
				n = len(padded) - 1
			}
			clear = padded[1 : 1+n]
		} else {
			clear = trimTrailingZero(UnhidePassword(secret, authenticator, raw))
		}

		v := clearTextValue(attr.Type, clear)
		v.Tag = tag
		return v, nil
	}

	dv, ok, err := decodeRawValue(attr.Type, raw)
	if err != nil {
		return Value{}, err
	}
	if !ok {
		packageLogger.Debugw("attribute type not decoded, skipping", "name", attr.Name, "type", attr.TypeName)
		return Value{}, &UnsupportedAttributeTypeError{Name: attr.Name, Type: attr.TypeName}
	}
	dv.Tag = tag
	return dv, nil
}

func clearTextBytes(name string, v Value) ([]byte, error) {
	switch v.Type {
	case TypeString:
		return []byte(v.str), nil
	case TypeOctets:
		return v.octets, nil
	default:
		return nil, &UnsupportedAttributeTypeError{Name: name, Type: v.Type.String()}
	}
}

func clearTextValue(declared AttrType, clear []byte) Value {
	if declared == TypeString {
		return StringValue(string(clear))
	}
	return OctetsValue(clear)
}

func withTag(attr *DictionaryAttribute, tag byte, raw []byte) []byte {
	if !attr.Tagged {
		return raw
	}
	out := make([]byte, 0, 1+len(raw))
	out = append(out, tag)
	return append(out, raw...)
}

func trimTrailingZero(b []byte) []byte {
	i := len(b)
	for i > 0 && b[i-1] == 0 {
		i--
	}
	return b[:i]
}
