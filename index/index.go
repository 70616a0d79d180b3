// Package index parses and serializes git's index file (the "dircache"),
// found at <git_dir>/index.
// https://git-scm.com/docs/index-format
package index

import (
	"bytes"
	"encoding/binary"
	"errors"
	"strings"

	"github.com/emirpasic/gods/utils"
	"github.com/hollowtree/gitcore/ginternals"
	"github.com/hollowtree/gitcore/ginternals/githash"
	"golang.org/x/xerrors"
)

const signature = "DIRC"

// entryFixedSize is the size, in bytes, of an entry's fixed-layout prefix,
// before the variable-length path name.
const entryFixedSize = 62

// headerSize is the size, in bytes, of the index header.
const headerSize = 12

var (
	// ErrInvalidSignature is returned when the first 4 bytes of the file
	// are not "DIRC"
	ErrInvalidSignature = errors.New("index: invalid signature")
	// ErrUnsupportedVersion is returned for any version outside {2,3,4}
	ErrUnsupportedVersion = errors.New("index: unsupported version")
	// ErrUnexpectedEOF is returned when the file is truncated
	ErrUnexpectedEOF = errors.New("index: unexpected end of file")
	// ErrUnknownExtension is returned for a mandatory (not A-Z-prefixed)
	// extension this implementation doesn't understand
	ErrUnknownExtension = errors.New("index: unknown extension")
	// ErrInvalidChecksum is returned when the trailing SHA-1 doesn't match
	// the content that precedes it
	ErrInvalidChecksum = errors.New("index: invalid checksum")
	// ErrInvalidFormat is returned for any other structural inconsistency
	ErrInvalidFormat = errors.New("index: invalid format")
)

// Stage represents a merge stage. 0 means "not conflicted".
type Stage uint8

// Valid merge stages
const (
	StageNone Stage = 0
	StageBase Stage = 1
	StageOurs Stage = 2
	StageTheirs Stage = 3
)

// Entry represents a single tracked path in the index
type Entry struct {
	CTimeSec  uint32
	CTimeNano uint32
	MTimeSec  uint32
	MTimeNano uint32
	Dev       uint32
	Ino       uint32
	Mode      uint32
	UID       uint32
	GID       uint32
	Size      uint32

	Oid ginternals.Oid

	AssumeValid bool
	Stage       Stage

	// SkipWorktree and IntentToAdd are only meaningful when Extended is
	// true, which requires index version >= 3.
	Extended     bool
	SkipWorktree bool
	IntentToAdd bool

	Path string
}

// Extension represents an opaque, unrecognized (but well-formed) index
// extension that must be round-tripped unchanged.
type Extension struct {
	Signature string
	Payload   []byte
}

// Index represents a parsed git index (dircache) file
type Index struct {
	Version    uint32
	Entries    []Entry
	Extensions []Extension
}

// New returns an empty index of the given version (2, 3, or 4)
func New(version uint32) *Index {
	return &Index{Version: version}
}

// entryComparator sorts entries ascending by path (as unsigned-byte
// strings), breaking ties by stage, per the index's sort invariant.
func entryComparator(a, b interface{}) int {
	ea, eb := a.(Entry), b.(Entry)
	if c := strings.Compare(ea.Path, eb.Path); c != 0 {
		return c
	}
	return int(ea.Stage) - int(eb.Stage)
}

// Sort orders the index's entries per the on-disk sort invariant.
func (idx *Index) Sort() {
	boxed := make([]interface{}, len(idx.Entries))
	for i, e := range idx.Entries {
		boxed[i] = e
	}
	utils.Sort(boxed, entryComparator)
	for i, v := range boxed {
		idx.Entries[i] = v.(Entry)
	}
}

// Contains returns whether path is tracked exactly by some entry.
func (idx *Index) Contains(path string) bool {
	for _, e := range idx.Entries {
		if e.Path == path {
			return true
		}
	}
	return false
}

// ContainsPrefix returns whether path is a directory prefix of some
// tracked entry, i.e. removing a file at path would be required to
// materialise that tracked entry (the "killed" set). If trackedOnly is
// true, only entries at stage 0 are considered.
func (idx *Index) ContainsPrefix(path string, trackedOnly bool) bool {
	prefix := path + "/"
	for _, e := range idx.Entries {
		if trackedOnly && e.Stage != StageNone {
			continue
		}
		if strings.HasPrefix(e.Path, prefix) {
			return true
		}
	}
	return false
}

// Parse decodes a full index file's content into an Index.
func Parse(data []byte) (*Index, error) {
	if len(data) < headerSize+githash.NewSHA1().OidSize() {
		return nil, xerrors.Errorf("index file too short: %w", ErrUnexpectedEOF)
	}

	digestSize := githash.NewSHA1().OidSize()
	checksumAt := len(data) - digestSize
	body, trailer := data[:checksumAt], data[checksumAt:]

	sum := githash.NewSHA1().Sum(body)
	if !bytes.Equal(sum.Bytes(), trailer) {
		return nil, ErrInvalidChecksum
	}

	if string(body[0:4]) != signature {
		return nil, xerrors.Errorf("got %q: %w", body[0:4], ErrInvalidSignature)
	}
	version := binary.BigEndian.Uint32(body[4:8])
	if version != 2 && version != 3 && version != 4 {
		return nil, xerrors.Errorf("version %d: %w", version, ErrUnsupportedVersion)
	}
	entryCount := binary.BigEndian.Uint32(body[8:12])

	idx := &Index{Version: version}
	offset := headerSize
	for i := uint32(0); i < entryCount; i++ {
		e, consumed, err := parseEntry(body[offset:], version)
		if err != nil {
			return nil, xerrors.Errorf("entry %d: %w", i, err)
		}
		idx.Entries = append(idx.Entries, e)
		offset += consumed
	}

	exts, err := parseExtensions(body[offset:])
	if err != nil {
		return nil, err
	}
	idx.Extensions = exts

	return idx, nil
}

func parseEntry(b []byte, version uint32) (Entry, int, error) {
	if len(b) < entryFixedSize {
		return Entry{}, 0, ErrUnexpectedEOF
	}

	e := Entry{
		CTimeSec:  binary.BigEndian.Uint32(b[0:4]),
		CTimeNano: binary.BigEndian.Uint32(b[4:8]),
		MTimeSec:  binary.BigEndian.Uint32(b[8:12]),
		MTimeNano: binary.BigEndian.Uint32(b[12:16]),
		Dev:       binary.BigEndian.Uint32(b[16:20]),
		Ino:       binary.BigEndian.Uint32(b[20:24]),
		Mode:      binary.BigEndian.Uint32(b[24:28]),
		UID:       binary.BigEndian.Uint32(b[28:32]),
		GID:       binary.BigEndian.Uint32(b[32:36]),
		Size:      binary.BigEndian.Uint32(b[36:40]),
	}

	oid, err := ginternals.NewOidFromHex(b[40:60])
	if err != nil {
		return Entry{}, 0, xerrors.Errorf("could not parse entry oid: %w", err)
	}
	e.Oid = oid

	flags := binary.BigEndian.Uint16(b[60:62])
	e.AssumeValid = flags&0x8000 != 0
	e.Extended = flags&0x4000 != 0
	e.Stage = Stage((flags >> 12) & 0x3)
	nameLen := flags & 0xFFF

	offset := entryFixedSize
	if e.Extended {
		if version < 3 {
			return Entry{}, 0, xerrors.Errorf("extended flag set on version %d: %w", version, ErrInvalidFormat)
		}
		if len(b) < offset+2 {
			return Entry{}, 0, ErrUnexpectedEOF
		}
		extFlags := binary.BigEndian.Uint16(b[offset : offset+2])
		e.SkipWorktree = extFlags&0x4000 != 0
		e.IntentToAdd = extFlags&0x2000 != 0
		offset += 2
	}

	var path []byte
	if nameLen < 0xFFF {
		if len(b) < offset+int(nameLen)+1 {
			return Entry{}, 0, ErrUnexpectedEOF
		}
		path = b[offset : offset+int(nameLen)]
		offset += int(nameLen) + 1 // +1 for the terminating NUL
	} else {
		nul := bytes.IndexByte(b[offset:], 0)
		if nul < 0 {
			return Entry{}, 0, ErrUnexpectedEOF
		}
		path = b[offset : offset+nul]
		offset += nul + 1
	}
	e.Path = string(path)

	if version < 4 {
		padding := (8 - (offset % 8)) % 8
		if len(b) < offset+padding {
			return Entry{}, 0, ErrUnexpectedEOF
		}
		offset += padding
	}

	return e, offset, nil
}

func parseExtensions(b []byte) ([]Extension, error) {
	var exts []Extension
	offset := 0
	for offset < len(b) {
		if len(b) < offset+8 {
			return nil, ErrUnexpectedEOF
		}
		sig := string(b[offset : offset+4])
		size := binary.BigEndian.Uint32(b[offset+4 : offset+8])
		offset += 8
		if len(b) < offset+int(size) {
			return nil, ErrUnexpectedEOF
		}
		payload := b[offset : offset+int(size)]
		offset += int(size)

		if sig == "sdir" {
			if len(payload) != 0 {
				return nil, xerrors.Errorf("sdir extension must be empty: %w", ErrInvalidFormat)
			}
		} else if sig[0] < 'A' || sig[0] > 'Z' {
			return nil, xerrors.Errorf("extension %q: %w", sig, ErrUnknownExtension)
		}

		exts = append(exts, Extension{Signature: sig, Payload: append([]byte(nil), payload...)})
	}
	return exts, nil
}

// Serialize encodes the index back to its on-disk representation,
// including a freshly-computed trailing SHA-1 checksum.
func (idx *Index) Serialize() ([]byte, error) {
	buf := new(bytes.Buffer)
	buf.WriteString(signature)
	writeU32(buf, idx.Version)
	writeU32(buf, uint32(len(idx.Entries)))

	for _, e := range idx.Entries {
		if err := writeEntry(buf, e, idx.Version); err != nil {
			return nil, err
		}
	}

	for _, ext := range idx.Extensions {
		if len(ext.Signature) != 4 {
			return nil, xerrors.Errorf("extension signature %q must be 4 bytes: %w", ext.Signature, ErrInvalidFormat)
		}
		buf.WriteString(ext.Signature)
		writeU32(buf, uint32(len(ext.Payload)))
		buf.Write(ext.Payload)
	}

	sum := githash.NewSHA1().Sum(buf.Bytes())
	buf.Write(sum.Bytes())
	return buf.Bytes(), nil
}

func writeEntry(buf *bytes.Buffer, e Entry, version uint32) error {
	writeU32(buf, e.CTimeSec)
	writeU32(buf, e.CTimeNano)
	writeU32(buf, e.MTimeSec)
	writeU32(buf, e.MTimeNano)
	writeU32(buf, e.Dev)
	writeU32(buf, e.Ino)
	writeU32(buf, e.Mode)
	writeU32(buf, e.UID)
	writeU32(buf, e.GID)
	writeU32(buf, e.Size)
	buf.Write(e.Oid.Bytes())

	nameLen := len(e.Path)
	flags := uint16(nameLen)
	if nameLen >= 0xFFF {
		flags = 0xFFF
	}
	if e.AssumeValid {
		flags |= 0x8000
	}
	extended := e.Extended && version >= 3
	if extended {
		flags |= 0x4000
	}
	flags |= uint16(e.Stage&0x3) << 12
	writeU16(buf, flags)

	offset := entryFixedSize
	if extended {
		extFlags := uint16(0)
		if e.SkipWorktree {
			extFlags |= 0x4000
		}
		if e.IntentToAdd {
			extFlags |= 0x2000
		}
		writeU16(buf, extFlags)
		offset += 2
	}

	buf.WriteString(e.Path)
	buf.WriteByte(0)
	offset += nameLen + 1

	if version < 4 {
		padding := (8 - (offset % 8)) % 8
		buf.Write(make([]byte, padding))
	}

	return nil
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], v)
	buf.Write(tmp[:])
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var tmp [2]byte
	binary.BigEndian.PutUint16(tmp[:], v)
	buf.Write(tmp[:])
}
