package radius

import (
	"encoding/binary"
	"fmt"
	"net"
	"time"
)

// Value is the tagged-variant value type spec.md's Design Notes call for: one case per
// supported type in §4.3 (plus the supplemented ipv6prefix/ifid types), instead of the
// teacher's interface{}-typed AVP.Value. Only the field matching Type is meaningful.
type Value struct {
	Type AttrType

	str    string
	octets []byte
	ip     net.IP
	date   time.Time
	u16    uint16
	u32    uint32
	u64    uint64

	// Tag carries the RFC 2868 tag byte for attributes whose dictionary entry is Tagged.
	// Zero means "no tag" (tags are 1-31; 0 and values above 0x1f are untagged per RFC).
	Tag byte
}

func StringValue(s string) Value      { return Value{Type: TypeString, str: s} }
func OctetsValue(b []byte) Value      { return Value{Type: TypeOctets, octets: append([]byte(nil), b...)} }
func IPAddrValue(ip net.IP) Value     { return Value{Type: TypeIPAddr, ip: ip.To4()} }
func IPv6AddrValue(ip net.IP) Value   { return Value{Type: TypeIPv6Addr, ip: ip.To16()} }
func DateValue(t time.Time) Value     { return Value{Type: TypeDate, date: t} }
func ShortValue(v uint16) Value       { return Value{Type: TypeShort, u16: v} }
func IntegerValue(v uint32) Value     { return Value{Type: TypeInteger, u32: v} }
func Integer64Value(v uint64) Value   { return Value{Type: TypeInteger64, u64: v} }
func InterfaceIdValue(b []byte) Value { return Value{Type: TypeInterfaceId, octets: append([]byte(nil), b...)} }

// IPv6PrefixValue builds a value for the ipv6prefix type: prefixLen is the declared prefix
// length (0-128), addr the 16-byte address.
func IPv6PrefixValue(prefixLen byte, addr net.IP) Value {
	return Value{Type: TypeIPv6Prefix, u16: uint16(prefixLen), ip: addr.To16()}
}

func typeMismatch(got, want AttrType) error {
	return fmt.Errorf("value is of type %s, not %s", got, want)
}

func (v Value) AsString() (string, error) {
	if v.Type != TypeString {
		return "", typeMismatch(v.Type, TypeString)
	}
	return v.str, nil
}

func (v Value) AsOctets() ([]byte, error) {
	if v.Type != TypeOctets {
		return nil, typeMismatch(v.Type, TypeOctets)
	}
	return v.octets, nil
}

func (v Value) AsIP() (net.IP, error) {
	if v.Type != TypeIPAddr && v.Type != TypeIPv6Addr {
		return nil, typeMismatch(v.Type, TypeIPAddr)
	}
	return v.ip, nil
}

func (v Value) AsDate() (time.Time, error) {
	if v.Type != TypeDate {
		return time.Time{}, typeMismatch(v.Type, TypeDate)
	}
	return v.date, nil
}

func (v Value) AsShort() (uint16, error) {
	if v.Type != TypeShort {
		return 0, typeMismatch(v.Type, TypeShort)
	}
	return v.u16, nil
}

func (v Value) AsInteger() (uint32, error) {
	if v.Type != TypeInteger {
		return 0, typeMismatch(v.Type, TypeInteger)
	}
	return v.u32, nil
}

func (v Value) AsInteger64() (uint64, error) {
	if v.Type != TypeInteger64 {
		return 0, typeMismatch(v.Type, TypeInteger64)
	}
	return v.u64, nil
}

// AsIPv6Prefix returns the declared prefix length and the 16-byte address.
func (v Value) AsIPv6Prefix() (byte, net.IP, error) {
	if v.Type != TypeIPv6Prefix {
		return 0, nil, typeMismatch(v.Type, TypeIPv6Prefix)
	}
	return byte(v.u16), v.ip, nil
}

// String renders a human-readable form of the value, used for logging and the GetString
// family of Packet accessors (which, for non-string types, stringify rather than error).
func (v Value) String() string {
	switch v.Type {
	case TypeString:
		return v.str
	case TypeOctets, TypeInterfaceId:
		return fmt.Sprintf("%x", v.octets)
	case TypeIPAddr, TypeIPv6Addr:
		return v.ip.String()
	case TypeDate:
		return v.date.Format(time.RFC3339)
	case TypeShort:
		return fmt.Sprintf("%d", v.u16)
	case TypeInteger:
		return fmt.Sprintf("%d", v.u32)
	case TypeInteger64:
		return fmt.Sprintf("%d", v.u64)
	case TypeIPv6Prefix:
		return fmt.Sprintf("%s/%d", v.ip.String(), v.u16)
	default:
		return "<unknown>"
	}
}

// decodeRawValue decodes the raw value bytes (already stripped of any tag/salt/withlen
// wrapper, see packet.go) of an attribute into a typed Value, per the table in
// SPEC_FULL.md §4.3. ok is false when the declared type is not one this codec decodes
// (warn-and-skip); err is only returned for malformed bytes of a type we do decode.
func decodeRawValue(t AttrType, raw []byte) (Value, bool, error) {
	switch t {
	case TypeString:
		return StringValue(string(raw)), true, nil
	case TypeOctets:
		return OctetsValue(raw), true, nil
	case TypeIPAddr:
		if len(raw) != 4 {
			return Value{}, true, fmt.Errorf("ipaddr value must be 4 bytes, got %d", len(raw))
		}
		return IPAddrValue(net.IP(append([]byte(nil), raw...))), true, nil
	case TypeIPv6Addr:
		if len(raw) != 16 {
			return Value{}, true, fmt.Errorf("ipv6addr value must be 16 bytes, got %d", len(raw))
		}
		return IPv6AddrValue(net.IP(append([]byte(nil), raw...))), true, nil
	case TypeDate:
		if len(raw) != 4 {
			return Value{}, true, fmt.Errorf("date value must be 4 bytes, got %d", len(raw))
		}
		secs := binary.BigEndian.Uint32(raw)
		return DateValue(time.Unix(int64(secs), 0).UTC()), true, nil
	case TypeShort:
		if len(raw) != 2 {
			return Value{}, true, fmt.Errorf("short value must be 2 bytes, got %d", len(raw))
		}
		return ShortValue(binary.BigEndian.Uint16(raw)), true, nil
	case TypeInteger:
		if len(raw) != 4 {
			return Value{}, true, fmt.Errorf("integer value must be 4 bytes, got %d", len(raw))
		}
		return IntegerValue(binary.BigEndian.Uint32(raw)), true, nil
	case TypeInteger64:
		if len(raw) != 8 {
			return Value{}, true, fmt.Errorf("integer64 value must be 8 bytes, got %d", len(raw))
		}
		return Integer64Value(binary.BigEndian.Uint64(raw)), true, nil
	case TypeInterfaceId:
		if len(raw) != 8 {
			return Value{}, true, fmt.Errorf("ifid value must be 8 bytes, got %d", len(raw))
		}
		return InterfaceIdValue(raw), true, nil
	case TypeIPv6Prefix:
		if len(raw) != 18 {
			return Value{}, true, fmt.Errorf("ipv6prefix value must be 18 bytes, got %d", len(raw))
		}
		// byte 0 reserved, byte 1 prefix length, bytes 2..18 address
		return IPv6PrefixValue(raw[1], net.IP(append([]byte(nil), raw[2:18]...))), true, nil
	default:
		return Value{}, false, nil
	}
}

// encodeRawValue is the inverse of decodeRawValue: it produces the raw value bytes for the
// wire (before any tag/salt/withlen wrapping). An error here is always fatal to
// serialization, per spec.md §4.3 ("a value missing an obvious mapping is a fatal
// serialization error").
func encodeRawValue(name string, t AttrType, v Value) ([]byte, error) {
	if v.Type != t {
		return nil, &UnsupportedAttributeTypeError{Name: name, Type: t.String()}
	}
	switch t {
	case TypeString:
		return []byte(v.str), nil
	case TypeOctets:
		return v.octets, nil
	case TypeIPAddr:
		ip4 := v.ip.To4()
		if ip4 == nil {
			return nil, &UnsupportedAttributeTypeError{Name: name, Type: t.String()}
		}
		return ip4, nil
	case TypeIPv6Addr:
		ip6 := v.ip.To16()
		if ip6 == nil {
			return nil, &UnsupportedAttributeTypeError{Name: name, Type: t.String()}
		}
		return ip6, nil
	case TypeDate:
		var raw [4]byte
		binary.BigEndian.PutUint32(raw[:], uint32(v.date.Unix()))
		return raw[:], nil
	case TypeShort:
		var raw [2]byte
		binary.BigEndian.PutUint16(raw[:], v.u16)
		return raw[:], nil
	case TypeInteger:
		var raw [4]byte
		binary.BigEndian.PutUint32(raw[:], v.u32)
		return raw[:], nil
	case TypeInteger64:
		var raw [8]byte
		binary.BigEndian.PutUint64(raw[:], v.u64)
		return raw[:], nil
	case TypeInterfaceId:
		if len(v.octets) != 8 {
			return nil, &UnsupportedAttributeTypeError{Name: name, Type: t.String()}
		}
		return v.octets, nil
	case TypeIPv6Prefix:
		ip6 := v.ip.To16()
		if ip6 == nil {
			return nil, &UnsupportedAttributeTypeError{Name: name, Type: t.String()}
		}
		raw := make([]byte, 18)
		raw[1] = byte(v.u16)
		copy(raw[2:], ip6)
		return raw, nil
	default:
		return nil, &UnsupportedAttributeTypeError{Name: name, Type: t.String()}
	}
}
