// Package objectstore implements the content-addressed, on-disk store
// for git's loose objects: <objects_dir>/<aa>/<38-hex>, zlib-deflated.
package objectstore

import (
	"compress/zlib"
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/hollowtree/gitcore/internal/cache"
	"github.com/hollowtree/gitcore/internal/errutil"
	"github.com/hollowtree/gitcore/internal/gitpath"
	"github.com/hollowtree/gitcore/internal/syncutil"
	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// MaxObjectSize is the upper bound enforced on both the read and write
// paths: no loose object may exceed 1 GiB, compressed or not.
const MaxObjectSize = 1 << 30

// ErrObjectTooLarge is returned when an object's content exceeds MaxObjectSize.
var ErrObjectTooLarge = errors.New("object exceeds the maximum allowed size")

// defaultCacheSize bounds the in-memory LRU sitting in front of disk reads.
const defaultCacheSize = 256

// lockShards is the number of stripes used by the NamedMutex guarding
// concurrent writes of the same object id.
const lockShards = 127

// tempFilePattern is the prefix used for the staging file a write deflates
// into before it's atomically renamed into place. The "*" is replaced by
// afero.TempFile with a random string of decimal digits.
const tempFilePattern = ".tmp-obj-*"

// Store is the on-disk, content-addressed object store rooted at a git
// objects directory (<git_dir>/objects).
type Store struct {
	fs   afero.Fs
	root string

	writeLocks *syncutil.NamedMutex
	cache      *cache.LRU
}

// New returns a Store backed by fs, rooted at objectsDir.
func New(fs afero.Fs, objectsDir string) *Store {
	return &Store{
		fs:         fs,
		root:       objectsDir,
		writeLocks: syncutil.NewNamedMutex(lockShards),
		cache:      cache.NewLRU(defaultCacheSize),
	}
}

// Setup idempotently creates the info/ and pack/ subdirectories expected
// under the objects root, even though this implementation never
// populates them.
func (s *Store) Setup() error {
	for _, d := range []string{gitpath.ObjectsInfoPath, gitpath.ObjectsPackPath} {
		full := filepath.Join(filepath.Dir(s.root), d)
		if err := s.fs.MkdirAll(full, 0o750); err != nil {
			return xerrors.Errorf("could not create %s: %w", d, err)
		}
	}
	if err := s.fs.MkdirAll(s.root, 0o750); err != nil {
		return xerrors.Errorf("could not create objects directory: %w", err)
	}
	return nil
}

// path returns the sharded on-disk path for a 40-hex object name.
func (s *Store) path(name string) string {
	return filepath.Join(s.root, gitpath.LooseObjectPath(name))
}

// Has returns whether an object with the given hex name exists in the
// store, without reading or decompressing its content.
func (s *Store) Has(name string) (bool, error) {
	_, err := s.fs.Stat(s.path(name))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, xerrors.Errorf("could not stat object %s: %w", name, err)
}

// Read returns the decompressed (but still encoded: "<type> <len>\0<bytes>")
// content of the object identified by name. A missing object surfaces the
// filesystem's FileNotFound (os.ErrNotExist), inspectable via os.IsNotExist.
func (s *Store) Read(name string) (data []byte, err error) {
	if v, ok := s.cache.Get(name); ok {
		return v.([]byte), nil
	}

	p := s.path(name)
	f, err := s.fs.Open(p)
	if err != nil {
		return nil, xerrors.Errorf("could not open object %s: %w", name, err)
	}
	defer errutil.Close(f, &err)

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, xerrors.Errorf("could not decompress object %s: %w", name, err)
	}
	defer errutil.Close(zr, &err)

	data, err = io.ReadAll(io.LimitReader(zr, MaxObjectSize+1))
	if err != nil {
		return nil, xerrors.Errorf("could not read object %s: %w", name, err)
	}
	if len(data) > MaxObjectSize {
		return nil, xerrors.Errorf("object %s: %w", name, ErrObjectTooLarge)
	}

	s.cache.Add(name, data)
	return data, nil
}

// Write persists the already-encoded bytes of an object under name.
// The object store is content-addressed: if a file already exists at the
// target path, the write is a silent no-op, since the same name can only
// ever correspond to the same content. The payload is staged in a
// temporary file within the same shard directory and atomically renamed
// into place so concurrent readers never observe a partial file.
func (s *Store) Write(name string, data []byte) (err error) {
	if len(data) > MaxObjectSize {
		return xerrors.Errorf("object %s: %w", name, ErrObjectTooLarge)
	}

	s.writeLocks.Lock([]byte(name))
	defer s.writeLocks.Unlock([]byte(name))

	dest := s.path(name)
	if exists, err := s.Has(name); err != nil {
		return err
	} else if exists {
		return nil
	}

	dir := filepath.Dir(dest)
	if err = s.fs.MkdirAll(dir, 0o750); err != nil {
		return xerrors.Errorf("could not create directory %s: %w", dir, err)
	}

	tmp, err := afero.TempFile(s.fs, dir, tempFilePattern)
	if err != nil {
		return xerrors.Errorf("could not create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// best-effort cleanup; the file has already been renamed on the
		// success path, so this is a no-op there
		_ = s.fs.Remove(tmpName)
	}()

	zw := zlib.NewWriter(tmp)
	if _, err = zw.Write(data); err != nil {
		errutil.Close(tmp, &err)
		return xerrors.Errorf("could not deflate object %s: %w", name, err)
	}
	if err = zw.Close(); err != nil {
		errutil.Close(tmp, &err)
		return xerrors.Errorf("could not flush compressed object %s: %w", name, err)
	}
	if err = tmp.Close(); err != nil {
		return xerrors.Errorf("could not close temp file: %w", err)
	}

	if err = s.fs.Rename(tmpName, dest); err != nil {
		// a concurrent writer may have already created dest: that's
		// success, not failure, since both payloads are content-identical
		// by construction.
		if exists, hasErr := s.Has(name); hasErr == nil && exists {
			return nil
		}
		return xerrors.Errorf("could not persist object %s: %w", name, err)
	}

	s.cache.Add(name, cloneBytes(data))
	return nil
}

func cloneBytes(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
