package radius

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"golang.org/x/exp/slices"
)

// PacketCode is the RADIUS packet type carried in the first octet of the header.
type PacketCode byte

const (
	AccessRequest      PacketCode = 1
	AccessAccept       PacketCode = 2
	AccessReject       PacketCode = 3
	AccountingRequest  PacketCode = 4
	AccountingResponse PacketCode = 5
	AccessChallenge    PacketCode = 11
	StatusServer       PacketCode = 12
	DisconnectRequest  PacketCode = 40
	DisconnectAck      PacketCode = 41
	DisconnectNak      PacketCode = 42
	CoaRequest         PacketCode = 43
	CoaAck             PacketCode = 44
	CoaNak             PacketCode = 45
)

func (c PacketCode) String() string {
	switch c {
	case AccessRequest:
		return "Access-Request"
	case AccessAccept:
		return "Access-Accept"
	case AccessReject:
		return "Access-Reject"
	case AccountingRequest:
		return "Accounting-Request"
	case AccountingResponse:
		return "Accounting-Response"
	case AccessChallenge:
		return "Access-Challenge"
	case StatusServer:
		return "Status-Server"
	case DisconnectRequest:
		return "Disconnect-Request"
	case DisconnectAck:
		return "Disconnect-ACK"
	case DisconnectNak:
		return "Disconnect-NAK"
	case CoaRequest:
		return "CoA-Request"
	case CoaAck:
		return "CoA-ACK"
	case CoaNak:
		return "CoA-NAK"
	default:
		return fmt.Sprintf("Code(%d)", byte(c))
	}
}

// isRequest reports whether c is a code initiated by a client rather than a reply.
func (c PacketCode) isRequest() bool {
	switch c {
	case AccessRequest, AccountingRequest, StatusServer, DisconnectRequest, CoaRequest:
		return true
	default:
		return false
	}
}

// usesRequestAuthenticatorScheme reports whether c computes its authenticator via the
// Request Authenticator formula (zeroed-authenticator MD5) rather than the Response
// Authenticator formula or a random value, per spec.md §4.4 step 4.
func (c PacketCode) usesRequestAuthenticatorScheme() bool {
	switch c {
	case AccountingRequest, DisconnectRequest, CoaRequest:
		return true
	default:
		return false
	}
}

const (
	userPasswordCode        = 2
	messageAuthenticatorCode = 80
	vsaCode                 = 26
	minPacketLength         = 20
	maxPacketLength         = 65535
)

// attrEntry is one slot of the Packet's ordered multi-map: insertion order of entries is
// the serialization order, and the same name may repeat with independent values.
type attrEntry struct {
	name  string
	value Value
}

// Packet is the in-memory RADIUS packet model: code, identifier, authenticator, an
// ordered attribute multi-map, the shared secret (never serialized), and — for responses —
// the authenticator of the request being replied to.
type Packet struct {
	Code          PacketCode
	Identifier    byte
	Authenticator [16]byte
	SharedSecret  []byte

	// RequestAuthenticator is set on response packets, holding the authenticator of the
	// request being answered; nil on requests.
	RequestAuthenticator *[16]byte

	entries []attrEntry
	index   map[string][]int
}

func newPacket(code PacketCode, identifier byte, secret []byte) *Packet {
	return &Packet{
		Code:         code,
		Identifier:   identifier,
		SharedSecret: append([]byte(nil), secret...),
		index:        make(map[string][]int),
	}
}

// NewRequest builds a request packet for code, identifier and secret. For AccessRequest and
// StatusServer the authenticator is generated immediately from a cryptographically strong
// random source with no zero bytes (spec.md invariant 1); other request codes leave the
// authenticator zeroed until Serialize computes the Request Authenticator. A StatusServer
// packet additionally gets a Message-Authenticator placeholder attribute at construction
// (spec.md invariant 2).
func NewRequest(code PacketCode, identifier byte, secret []byte) *Packet {
	p := newPacket(code, identifier, secret)
	if code == AccessRequest || code == StatusServer {
		p.Authenticator = BuildRandomAuthenticator()
	}
	if code == StatusServer {
		p.Add("Message-Authenticator", OctetsValue(make([]byte, 16)))
	}
	return p
}

// NewResponse builds a response packet of code replying to request, inheriting its
// Identifier, SharedSecret, and original Authenticator (retained to compute the Response
// Authenticator at serialization time).
func NewResponse(request *Packet, code PacketCode) *Packet {
	p := newPacket(code, request.Identifier, request.SharedSecret)
	ra := request.Authenticator
	p.RequestAuthenticator = &ra
	return p
}

// Add appends a value for name, preserving insertion order relative to all other Add calls
// on this packet (spec.md §3: "insertion order is preserved and is the serialization
// order").
func (p *Packet) Add(name string, v Value) {
	p.index[name] = append(p.index[name], len(p.entries))
	p.entries = append(p.entries, attrEntry{name: name, value: v})
}

// GetAll returns every value recorded for name, in insertion order.
func (p *Packet) GetAll(name string) []Value {
	idxs := p.index[name]
	if len(idxs) == 0 {
		return nil
	}
	out := make([]Value, len(idxs))
	for i, idx := range idxs {
		out[i] = p.entries[idx].value
	}
	return out
}

// Get returns the single value recorded for name. It is defined to fail when zero or
// multiple values exist, per spec.md's Design Notes ("the single-value accessor is
// defined to fail when multiple values exist for the name").
func (p *Packet) Get(name string) (Value, error) {
	idxs := p.index[name]
	switch len(idxs) {
	case 0:
		return Value{}, fmt.Errorf("attribute %q not present", name)
	case 1:
		return p.entries[idxs[0]].value, nil
	default:
		return Value{}, fmt.Errorf("attribute %q has %d values, expected one", name, len(idxs))
	}
}

// DeleteAll removes every value recorded for name.
func (p *Packet) DeleteAll(name string) {
	if _, ok := p.index[name]; !ok {
		return
	}
	filtered := p.entries[:0]
	newIndex := make(map[string][]int)
	for _, e := range p.entries {
		if e.name == name {
			continue
		}
		newIndex[e.name] = append(newIndex[e.name], len(filtered))
		filtered = append(filtered, e)
	}
	p.entries = filtered
	p.index = newIndex
}

// Copy returns a deep copy of p, optionally filtered to a positive allow-list and/or a
// negative deny-list of attribute names (nil means "no filter"), grounded on
// core/radius_packet.go's Copy method.
func (p *Packet) Copy(positiveFilter []string, negativeFilter []string) *Packet {
	out := newPacket(p.Code, p.Identifier, p.SharedSecret)
	out.Authenticator = p.Authenticator
	if p.RequestAuthenticator != nil {
		ra := *p.RequestAuthenticator
		out.RequestAuthenticator = &ra
	}
	for _, e := range p.entries {
		if positiveFilter != nil && !slices.Contains(positiveFilter, e.name) {
			continue
		}
		if negativeFilter != nil && slices.Contains(negativeFilter, e.name) {
			continue
		}
		out.Add(e.name, e.value)
	}
	return out
}

// resolvedAttribute bundles a dictionary lookup result, whether it is a vendor attribute,
// and (if so) its vendor id.
type resolvedAttribute struct {
	attr       *DictionaryAttribute
	isVendor   bool
	vendorID   uint32
	vendorCode uint32
}

func resolveByName(dict *Dictionary, name string) (resolvedAttribute, error) {
	if a, err := dict.GetByName(name); err == nil {
		return resolvedAttribute{attr: a}, nil
	}
	if v, ok := dict.GetVendorByName(name); ok {
		return resolvedAttribute{attr: &v.DictionaryAttribute, isVendor: true, vendorID: v.VendorId, vendorCode: v.VendorCode}, nil
	}
	return resolvedAttribute{}, &UnknownAttributeError{Name: name}
}

// Serialize encodes p into a RADIUS datagram against dict, per spec.md §4.4's serialization
// algorithm. reuseAuthenticator, if non-nil, is written in place of generating a fresh one
// for AccessRequest/StatusServer codes (grounded on core/radius_packet.go's
// reuseAuthenticator parameter, supporting retransmission without an authenticator change).
func (p *Packet) Serialize(dict *Dictionary, metrics *Metrics, reuseAuthenticator *[16]byte) ([]byte, error) {
	if reuseAuthenticator != nil && (p.Code == AccessRequest || p.Code == StatusServer) {
		p.Authenticator = *reuseAuthenticator
	}

	var body bytes.Buffer
	maPosition := -1 // offset of the Message-Authenticator attribute header within body

	for _, e := range p.entries {
		ra, err := resolveByName(dict, e.name)
		if err != nil {
			metrics.recordDictionaryMiss("outbound")
			return nil, err
		}

		isMA := !ra.isVendor && ra.attr.Code == messageAuthenticatorCode
		var valueBytes []byte
		if isMA {
			valueBytes = make([]byte, 16)
		} else {
			var code byte
			if !ra.isVendor {
				code = ra.attr.Code
			}
			valueBytes, err = encodeAttributeValue(ra.attr, code, e.value, p.Authenticator, p.SharedSecret)
			if err != nil {
				return nil, err
			}
		}

		if !ra.isVendor {
			if isMA {
				maPosition = body.Len()
			}
			if err := writeConcatOrPlain(&body, ra.attr, valueBytes); err != nil {
				return nil, err
			}
		} else {
			if err := writeVendorSpecificAttribute(&body, ra.vendorID, ra.vendorCode, valueBytes); err != nil {
				return nil, err
			}
		}
	}

	total := minPacketLength + body.Len()
	if total > maxPacketLength {
		return nil, &InvalidFramingError{Declared: total, Actual: maxPacketLength}
	}

	out := make([]byte, minPacketLength, total)
	out[0] = byte(p.Code)
	out[1] = p.Identifier
	binary.BigEndian.PutUint16(out[2:4], uint16(total))
	out = append(out, body.Bytes()...)

	switch {
	case p.Code.usesRequestAuthenticatorScheme():
		auth := RequestAuthenticator(byte(p.Code), p.Identifier, uint16(total), body.Bytes(), p.SharedSecret)
		copy(out[4:20], auth[:])
		p.Authenticator = auth
	case p.RequestAuthenticator != nil:
		auth := ResponseAuthenticator(byte(p.Code), p.Identifier, uint16(total), *p.RequestAuthenticator, body.Bytes(), p.SharedSecret)
		copy(out[4:20], auth[:])
		p.Authenticator = auth
	default:
		copy(out[4:20], p.Authenticator[:])
	}

	if maPosition >= 0 {
		ma := MessageAuthenticator(byte(p.Code), p.Identifier, uint16(total), p.Authenticator, out[minPacketLength:], p.SharedSecret)
		copy(out[minPacketLength+maPosition+2:minPacketLength+maPosition+18], ma[:])
	}

	return out, nil
}

// writeConcatOrPlain writes a base (non-vendor) attribute, splitting into multiple
// ≤255-byte wire attributes of the same code when the Concat flag is set and the value
// does not fit in one, per SPEC_FULL.md's Concat enrichment.
func writeConcatOrPlain(w *bytes.Buffer, attr *DictionaryAttribute, value []byte) error {
	const maxChunk = 253 // 255 - type(1) - length(1)
	if !attr.Concat || len(value) <= maxChunk {
		return writeBaseAttribute(w, attr.Code, value)
	}
	for off := 0; off < len(value); off += maxChunk {
		end := off + maxChunk
		if end > len(value) {
			end = len(value)
		}
		if err := writeBaseAttribute(w, attr.Code, value[off:end]); err != nil {
			return err
		}
	}
	return nil
}

func writeBaseAttribute(w *bytes.Buffer, code byte, value []byte) error {
	total := 2 + len(value)
	if total > 255 {
		return fmt.Errorf("attribute code %d value too long to encode (%d bytes)", code, len(value))
	}
	w.WriteByte(code)
	w.WriteByte(byte(total))
	w.Write(value)
	return nil
}

// vsaLength = 2 + len(value); totalLength = 8 + len(value), per spec.md §4.4 step 2.
func writeVendorSpecificAttribute(w *bytes.Buffer, vendorID uint32, vendorCode uint32, value []byte) error {
	vsaLen := 2 + len(value)
	total := 8 + len(value)
	if total > 255 || vsaLen > 255 {
		return fmt.Errorf("vendor attribute %d/%d value too long to encode (%d bytes)", vendorID, vendorCode, len(value))
	}
	w.WriteByte(vsaCode)
	w.WriteByte(byte(total))
	var vid [4]byte
	binary.BigEndian.PutUint32(vid[:], vendorID)
	w.Write(vid[:])
	w.WriteByte(byte(vendorCode))
	w.WriteByte(byte(vsaLen))
	w.Write(value)
	return nil
}
