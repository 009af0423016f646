package radius

import "fmt"

// AttrType identifies the decoded shape of an attribute's value, per the type table in
// §4.3 of the spec plus the ifid/ipv6prefix types the teacher already decodes.
type AttrType int

const (
	TypeUnknown AttrType = iota
	TypeString
	TypeOctets
	TypeIPAddr
	TypeIPv6Addr
	TypeDate
	TypeShort
	TypeInteger
	TypeInteger64
	TypeIPv6Prefix
	TypeInterfaceId
)

func (t AttrType) String() string {
	switch t {
	case TypeString:
		return "string"
	case TypeOctets:
		return "octets"
	case TypeIPAddr:
		return "ipaddr"
	case TypeIPv6Addr:
		return "ipv6addr"
	case TypeDate:
		return "date"
	case TypeShort:
		return "short"
	case TypeInteger:
		return "integer"
	case TypeInteger64:
		return "integer64"
	case TypeIPv6Prefix:
		return "ipv6prefix"
	case TypeInterfaceId:
		return "ifid"
	default:
		return "unknown"
	}
}

// parseAttrType maps a FreeRADIUS type string (and the case variants spec.md calls out) to
// an AttrType. Unrecognized strings return TypeUnknown, not an error: the dictionary stores
// them verbatim and AttributeCodec decides to warn-and-skip.
func parseAttrType(t string) AttrType {
	switch t {
	case "string", "String", "tagged-string":
		return TypeString
	case "octet", "octets", "Octets":
		return TypeOctets
	case "ipaddr", "Address":
		return TypeIPAddr
	case "ipv6addr", "IPv6Address":
		return TypeIPv6Addr
	case "date", "Time":
		return TypeDate
	case "short":
		return TypeShort
	case "integer", "signed", "tagged-integer", "Integer", "uint32", "byte", "time_delta":
		return TypeInteger
	case "integer64", "Integer64":
		return TypeInteger64
	case "ipv6prefix", "IPv6Prefix":
		return TypeIPv6Prefix
	case "ifid", "interface-id", "InterfaceId":
		return TypeInterfaceId
	default:
		return TypeUnknown
	}
}

// DictionaryAttribute describes one base (non-vendor) attribute definition.
type DictionaryAttribute struct {
	Name     string
	Code     byte
	TypeName string // raw type string as it appeared in the dictionary file
	Type     AttrType

	// Flags, supplemented beyond the bare {name, code, type} spec.md requires (see
	// SPEC_FULL.md §4.1): additive, never required for the ten base types to decode.
	Tagged    bool
	Encrypted bool
	Salted    bool
	WithLen   bool
	Concat    bool

	EnumValues map[string]int32
	EnumNames  map[int32]string
}

// DictionaryVendorAttribute describes one vendor-specific attribute definition, resolved by
// (VendorId, VendorCode) rather than by a single base code.
type DictionaryVendorAttribute struct {
	DictionaryAttribute
	VendorId   uint32
	VendorCode uint32
}

// Dictionary is the immutable, read-only-after-construction mapping from attribute
// codes/names to their declared types, loaded from FreeRADIUS-format text files.
type Dictionary struct {
	byCode map[byte]*DictionaryAttribute
	byName map[string]*DictionaryAttribute
	vendor []*DictionaryVendorAttribute

	vendorIdByName map[string]uint32
	vendorNameById map[uint32]string
}

func newDictionary() *Dictionary {
	return &Dictionary{
		byCode:         make(map[byte]*DictionaryAttribute),
		byName:         make(map[string]*DictionaryAttribute),
		vendorIdByName: make(map[string]uint32),
		vendorNameById: make(map[uint32]string),
	}
}

// GetByCode returns the base attribute definition for code, or an UnknownAttributeError.
// The parser of an incoming packet treats this as a recoverable per-attribute condition
// (warn and skip), per spec.md §4.1.
func (d *Dictionary) GetByCode(code byte) (*DictionaryAttribute, error) {
	if a, ok := d.byCode[code]; ok {
		return a, nil
	}
	return nil, &UnknownAttributeError{Code: code}
}

// GetByName returns the base attribute definition for name, or an UnknownAttributeError.
// A miss here is fatal during serialization: the caller cannot intend an anonymous
// attribute, per spec.md §4.1.
func (d *Dictionary) GetByName(name string) (*DictionaryAttribute, error) {
	if a, ok := d.byName[name]; ok {
		return a, nil
	}
	return nil, &UnknownAttributeError{Name: name}
}

// GetVendor resolves a vendor attribute by (vendorId, vendorCode) via a linear scan, which
// is acceptable for typical dictionary sizes (see SPEC_FULL.md Design Notes). Absence is
// recoverable on inbound parsing.
func (d *Dictionary) GetVendor(vendorId uint32, vendorCode uint32) (*DictionaryVendorAttribute, bool) {
	for _, v := range d.vendor {
		if v.VendorId == vendorId && v.VendorCode == vendorCode {
			return v, true
		}
	}
	return nil, false
}

// GetVendorByName resolves a vendor attribute by its name exactly as written on the
// ATTRIBUTE line inside its vendor block (e.g. "MS-MPPE-Send-Key"), used when serializing.
func (d *Dictionary) GetVendorByName(name string) (*DictionaryVendorAttribute, bool) {
	for _, v := range d.vendor {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// VendorId returns the numeric id registered for a VENDOR name.
func (d *Dictionary) VendorId(name string) (uint32, bool) {
	id, ok := d.vendorIdByName[name]
	return id, ok
}

func (d *Dictionary) addVendor(name string, id uint32) {
	d.vendorIdByName[name] = id
	d.vendorNameById[id] = name
}

func (d *Dictionary) addBaseAttribute(a *DictionaryAttribute) {
	d.byCode[a.Code] = a
	d.byName[a.Name] = a
}

func (d *Dictionary) addVendorAttribute(a *DictionaryVendorAttribute) {
	d.vendor = append(d.vendor, a)
}

func (d *Dictionary) addEnum(name string, enumName string, value int32) error {
	if a, ok := d.byName[name]; ok {
		if a.EnumValues == nil {
			a.EnumValues = make(map[string]int32)
			a.EnumNames = make(map[int32]string)
		}
		a.EnumValues[enumName] = value
		a.EnumNames[value] = enumName
		return nil
	}
	for _, v := range d.vendor {
		if v.Name == name {
			if v.EnumValues == nil {
				v.EnumValues = make(map[string]int32)
				v.EnumNames = make(map[int32]string)
			}
			v.EnumValues[enumName] = value
			v.EnumNames[value] = enumName
			return nil
		}
	}
	return fmt.Errorf("VALUE for unknown attribute %q", name)
}
