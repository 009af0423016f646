package radius

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

// parserState tracks the vendor block a line is being parsed in, and accumulates the
// Dictionary under construction across a root file and its transitive $INCLUDEs.
type parserState struct {
	dict          *Dictionary
	currentVendor uint32 // 0 == not inside a BEGIN-VENDOR block
}

// ParseFreeradiusDictionaryFS parses a FreeRADIUS-format dictionary rooted at rootPath
// within fsys, following $INCLUDE directives relative to the including file's directory,
// and returns the resulting Dictionary. Grounded on core/freeradius_parser.go's
// ParseFreeradiusDictionary, re-expressed over io/fs instead of a ConfigurationManager.
func ParseFreeradiusDictionaryFS(ctx context.Context, fsys fs.FS, rootPath string) (*Dictionary, error) {
	st := &parserState{dict: newDictionary()}
	if err := st.parseFile(ctx, fsys, rootPath, ""); err != nil {
		return nil, err
	}
	return st.dict, nil
}

func (st *parserState) parseFile(ctx context.Context, fsys fs.FS, configObj string, parentConfigObj string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	// If the name of the object is embedded in an $INCLUDE directive, interpret the path
	// as relative to the location of the parent object.
	if parentConfigObj != "" {
		configObj = path.Join(path.Dir(parentConfigObj), configObj)
	}

	fileBytes, err := fs.ReadFile(fsys, configObj)
	if err != nil {
		return err
	}

	scanner := bufio.NewScanner(bytes.NewReader(fileBytes))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if strings.HasPrefix(line, "#") {
			continue
		}
		if cpos := strings.IndexByte(line, '#'); cpos >= 0 {
			line = line[:cpos]
		}

		words := strings.Fields(line)
		if len(words) < 1 {
			continue
		}

		switch words[0] {
		case "$INCLUDE":
			if len(words) < 2 {
				continue
			}
			if err := st.parseFile(ctx, fsys, words[1], configObj); err != nil {
				return &DictionaryParseError{File: configObj, Line: line, Err: err}
			}

		case "VENDOR":
			if len(words) < 3 {
				continue
			}
			id, err := strconv.ParseUint(words[2], 10, 32)
			if err != nil {
				continue
			}
			st.dict.addVendor(words[1], uint32(id))

		case "BEGIN-VENDOR":
			if len(words) < 2 {
				continue
			}
			id, ok := st.dict.VendorId(words[1])
			if !ok {
				return &DictionaryParseError{File: configObj, Line: line, Err: errors.New("vendor " + words[1] + " not found")}
			}
			st.currentVendor = id

		case "END-VENDOR":
			st.currentVendor = 0

		case "ATTRIBUTE":
			if err := st.parseAttribute(words, line); err != nil {
				return err
			}

		case "VALUE":
			if len(words) < 4 {
				continue
			}
			val, err := parseValueInt(words[3])
			if err != nil {
				continue
			}
			// Best-effort enrichment only (spec.md: VALUE lines may be ignored); a miss
			// here never aborts dictionary construction.
			_ = st.dict.addEnum(words[1], words[2], val)
		}
	}

	return scanner.Err()
}

func parseValueInt(s string) (int32, error) {
	if v, err := strconv.ParseInt(s, 10, 32); err == nil {
		return int32(v), nil
	}
	v, err := strconv.ParseInt(strings.TrimPrefix(s, "0x"), 16, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}

func (st *parserState) parseAttribute(words []string, line string) error {
	if len(words) < 4 {
		// Malformed ATTRIBUTE lines are silently skipped, matching FreeRADIUS behavior.
		return nil
	}

	// Outside a vendor block the code is u8 and the attribute goes in the base indexes;
	// inside a vendor block the code is u32 and it goes in the vendor list.
	var code uint64
	var err error
	if st.currentVendor == 0 {
		code, err = strconv.ParseUint(words[2], 10, 8)
	} else {
		code, err = strconv.ParseUint(words[2], 10, 32)
	}
	if err != nil {
		// Numeric token failed to parse (e.g. a ".1" tlv sub-code): silently skip.
		return nil
	}

	typeName := words[3]
	attrType := parseAttrType(typeName)

	var tagged, encrypted, salted, withLen, concat bool
	if len(words) > 4 {
		for _, option := range strings.Split(words[4], ",") {
			switch option {
			case "has_tag":
				tagged = true
			case "encrypt=1":
				encrypted = true
			case "encrypt=2":
				salted = true
				withLen = true
			case "encrypt=3":
				// Ascend proprietary encryption: treated as opaque octets.
				attrType = TypeOctets
				typeName = "octets"
			case "encrypt=8":
				tagged = true
				salted = true
			case "encrypt=9":
				salted = true
			case "concat":
				concat = true
			case "array":
				attrType = TypeOctets
				typeName = "octets"
			case "abinary", "extended", "long-extended":
				// Declared types this codec does not decode; left as TypeUnknown if they
				// weren't already resolved above.
			default:
				// Unknown option: ignored rather than aborting the whole dictionary, to
				// match the "most malformed lines are silently skipped" policy.
			}
		}
	}

	base := DictionaryAttribute{
		Name:      words[1],
		TypeName:  typeName,
		Type:      attrType,
		Tagged:    tagged,
		Encrypted: encrypted,
		Salted:    salted,
		WithLen:   withLen,
		Concat:    concat,
	}

	if st.currentVendor == 0 {
		base.Code = byte(code)
		a := base
		st.dict.addBaseAttribute(&a)
	} else {
		va := &DictionaryVendorAttribute{
			DictionaryAttribute: base,
			VendorId:            st.currentVendor,
			VendorCode:          uint32(code),
		}
		st.dict.addVendorAttribute(va)
	}

	return nil
}
