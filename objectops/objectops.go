// Package objectops implements the loose-object codec and the
// object-level read/write operations layered on top of an object store:
// hash-object, cat-file style reads, and raw encoded-data access.
package objectops

import (
	"errors"
	"io"
	"strconv"

	"github.com/hollowtree/gitcore/ginternals"
	"github.com/hollowtree/gitcore/ginternals/object"
	"github.com/hollowtree/gitcore/objectstore"
	"golang.org/x/xerrors"
)

// Errors returned while decoding a loose object's encoded frame
var (
	ErrMissingHeader    = errors.New("object: missing NUL header terminator")
	ErrMalformedHeader  = errors.New("object: malformed header")
	ErrObjectIDMismatch = errors.New("object: computed id does not match expected id")
	ErrUnknownType      = errors.New("object: unknown object type")
	ErrTypeMismatch     = errors.New("object: type does not match expectation")
	ErrBadLength        = errors.New("object: header length is not a valid decimal number")
	ErrLengthMismatch   = errors.New("object: header length does not match content length")
	ErrInvalidObject    = errors.New("object: content is empty")
	ErrInvalidType      = errors.New("object: unrecognised type name")
)

// MaxObjectSize caps how much content hash_object/read_object will ever
// hold in memory at once.
const MaxObjectSize = 1 << 30

// DecodeOptions configures Decode.
type DecodeOptions struct {
	// ExpectedType, if non-zero, is checked against the parsed type.
	ExpectedType object.Type
	// ExpectedID, if set, is checked against a freshly-computed hash of
	// the entire encoded input.
	ExpectedID ginternals.Oid
	// AllowUnknownType makes an unrecognised type tag non-fatal: the raw
	// tag is returned via UnknownTypeTag instead of Type.
	AllowUnknownType bool
}

// Decoded is the result of decoding a loose object's encoded frame.
type Decoded struct {
	Type           object.Type
	UnknownTypeTag string // set instead of Type when AllowUnknownType let an unknown tag through
	Data           []byte
	Len            int
}

// Decode parses the "<type> <len>\0<bytes>" encoded form of a loose
// object.
func Decode(encoded []byte, opts DecodeOptions) (*Decoded, error) {
	nul := indexByte(encoded, 0)
	if nul < 0 {
		return nil, ErrMissingHeader
	}
	header := encoded[:nul]
	content := encoded[nul+1:]

	sp := indexByte(header, ' ')
	if sp < 0 {
		return nil, ErrMalformedHeader
	}
	typeStr := string(header[:sp])
	lenStr := string(header[sp+1:])

	if opts.ExpectedID != nil && !opts.ExpectedID.IsZero() {
		sum := ginternals.NewOidFromContent(encoded)
		if sum != opts.ExpectedID {
			return nil, ErrObjectIDMismatch
		}
	}

	out := &Decoded{}
	typ, err := object.NewTypeFromString(typeStr)
	if err != nil {
		if !opts.AllowUnknownType {
			return nil, xerrors.Errorf("type %q: %w", typeStr, ErrUnknownType)
		}
		out.UnknownTypeTag = typeStr
	} else {
		out.Type = typ
		if opts.ExpectedType != 0 && typ != opts.ExpectedType {
			return nil, xerrors.Errorf("got %s, expected %s: %w", typ, opts.ExpectedType, ErrTypeMismatch)
		}
	}

	length, err := strconv.Atoi(lenStr)
	if err != nil {
		return nil, xerrors.Errorf("length %q: %w", lenStr, ErrBadLength)
	}
	if length != len(content) {
		return nil, xerrors.Errorf("header says %d, content is %d bytes: %w", length, len(content), ErrLengthMismatch)
	}

	out.Data = content
	out.Len = length
	return out, nil
}

func indexByte(b []byte, c byte) int {
	for i, v := range b {
		if v == c {
			return i
		}
	}
	return -1
}

// HashObject reads the full content of r (capped at MaxObjectSize),
// optionally validates it parses as typeName's canonical format, builds
// the encoded frame, and returns the hex object id. If persist is true,
// the encoded bytes are also written to store.
func HashObject(store *objectstore.Store, r io.Reader, typeName string, checkFormat, persist bool) (string, error) {
	typ, err := object.NewTypeFromString(typeName)
	if err != nil {
		return "", xerrors.Errorf("%q: %w", typeName, ErrInvalidType)
	}

	content, err := io.ReadAll(io.LimitReader(r, MaxObjectSize+1))
	if err != nil {
		return "", xerrors.Errorf("could not read content: %w", err)
	}
	if len(content) > MaxObjectSize {
		return "", xerrors.Errorf("content exceeds %d bytes: %w", MaxObjectSize, objectstore.ErrObjectTooLarge)
	}

	if checkFormat {
		if err := validateFormat(typ, content); err != nil {
			return "", err
		}
	}

	o := object.New(typ, content)
	if persist {
		if err := store.Write(o.ID().String(), Encode(typ, content)); err != nil {
			return "", xerrors.Errorf("could not persist object: %w", err)
		}
	}
	return o.ID().String(), nil
}

// Encode builds the "<type> <len>\0<bytes>" loose-object frame that the
// object store expects (it deflates the frame itself on Write).
func Encode(typ object.Type, content []byte) []byte {
	header := typ.String() + " " + strconv.Itoa(len(content)) + "\x00"
	out := make([]byte, 0, len(header)+len(content))
	out = append(out, header...)
	out = append(out, content...)
	return out
}

func validateFormat(typ object.Type, content []byte) error {
	o := object.New(typ, content)
	switch typ {
	case object.TypeBlob:
		return nil
	case object.TypeTree:
		_, err := o.AsTree()
		return err
	case object.TypeCommit:
		_, err := object.NewCommitFromObject(o)
		return err
	case object.TypeTag:
		_, err := object.NewTagFromObject(o)
		return err
	default:
		return xerrors.Errorf("type %s has no validator: %w", typ, ErrInvalidType)
	}
}

// ReadObject reads and decodes the object named by the 40-hex name and
// returns it as a generic object of the decoded type; the content is not
// parsed into a tree, commit or tag.
func ReadObject(store *objectstore.Store, name string, expectedType object.Type) (*object.Object, error) {
	oid, err := ginternals.NewOidFromStr(name)
	if err != nil {
		return nil, xerrors.Errorf("could not parse %q as an object id: %w", name, err)
	}

	data, err := store.Read(name)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s: %w", name, err)
	}
	if len(data) == 0 {
		return nil, ErrInvalidObject
	}

	decoded, err := Decode(data, DecodeOptions{ExpectedType: expectedType})
	if err != nil {
		return nil, err
	}
	return object.NewWithID(oid, decoded.Type, decoded.Data), nil
}

// ReadTypeAndSize returns an object's type string and payload length
// without decoding its body. If allowUnknownType is set, an
// unrecognised tag is preserved rather than rejected.
func ReadTypeAndSize(store *objectstore.Store, name string, allowUnknownType bool) (typ string, size int, err error) {
	if _, err = ginternals.NewOidFromStr(name); err != nil {
		return "", 0, xerrors.Errorf("could not parse %q as an object id: %w", name, err)
	}

	data, err := store.Read(name)
	if err != nil {
		return "", 0, xerrors.Errorf("could not read object %s: %w", name, err)
	}

	decoded, err := Decode(data, DecodeOptions{AllowUnknownType: allowUnknownType})
	if err != nil {
		return "", 0, err
	}
	if decoded.UnknownTypeTag != "" {
		return decoded.UnknownTypeTag, decoded.Len, nil
	}
	return decoded.Type.String(), decoded.Len, nil
}

// ReadEncodedData validates name and returns the raw (post-inflate)
// encoded bytes of the object, without decoding them.
func ReadEncodedData(store *objectstore.Store, name string) ([]byte, error) {
	if _, err := ginternals.NewOidFromStr(name); err != nil {
		return nil, xerrors.Errorf("could not parse %q as an object id: %w", name, err)
	}
	data, err := store.Read(name)
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s: %w", name, err)
	}
	return data, nil
}
