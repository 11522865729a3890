// Package pak loads Quake PAK files.
//
// QPov
//
// Copyright (C) Thomas Habets <thomas@habets.se> 2015
// https://github.com/ThomasHabets/qpov
//
//   This program is free software; you can redistribute it and/or modify
//   it under the terms of the GNU General Public License as published by
//   the Free Software Foundation; either version 2 of the License, or
//   (at your option) any later version.
//
//   This program is distributed in the hope that it will be useful,
//   but WITHOUT ANY WARRANTY; without even the implied warranty of
//   MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
//   GNU General Public License for more details.
//
//   You should have received a copy of the GNU General Public License along
//   with this program; if not, write to the Free Software Foundation, Inc.,
//   51 Franklin Street, Fifth Floor, Boston, MA 02110-1301 USA.
//
// A PAK file is a header, the file data, and a directory of 64 byte entries
// (56 byte name, offset, size). Files inside are returned as
// io.SectionReader, which is what bsp.Load wants.
package pak

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	fileHeaderSize = 4 + 4 + 4
	fileEntrySize  = 56 + 4 + 4
)

var (
	// Verbose logs the directory as it's read.
	Verbose = false

	// ErrNotFound is returned by Get for names not in the pak.
	ErrNotFound = errors.New("not found in pak")

	// ErrBadMagic is returned by Open if the file doesn't start with "PACK".
	ErrBadMagic = errors.New("not a pak file")

	magic = [4]byte{'P', 'A', 'C', 'K'}
)

type fileHeader struct {
	ID            [4]byte
	Directory     uint32
	DirectorySize uint32
}

type fileEntry struct {
	NameBytes [56]byte
	Offset    uint32
	Size      uint32
}

func (e *fileEntry) Name() string {
	b := e.NameBytes[:]
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b)
}

// Entry is where in the pak a file is.
type Entry struct {
	Pos  uint32
	Size uint32
}

type Pak struct {
	r       io.ReaderAt
	closer  io.Closer
	Entries map[string]Entry
}

// Get returns a reader for one file in the pak.
func (p *Pak) Get(fn string) (*io.SectionReader, error) {
	entry, found := p.Entries[fn]
	if !found {
		return nil, errors.Wrapf(ErrNotFound, "%q", fn)
	}
	return io.NewSectionReader(p.r, int64(entry.Pos), int64(entry.Size)), nil
}

// List returns the file names, sorted.
func (p *Pak) List() []string {
	ret := make([]string, 0, len(p.Entries))
	for fn := range p.Entries {
		ret = append(ret, fn)
	}
	sort.Strings(ret)
	return ret
}

// Close closes the underlying file, if the pak was opened with OpenFile.
func (p *Pak) Close() error {
	if p.closer == nil {
		return nil
	}
	return p.closer.Close()
}

// Open reads the pak directory from r, which is size bytes long.
func Open(r io.ReaderAt, size int64) (*Pak, error) {
	var h fileHeader
	if err := binary.Read(io.NewSectionReader(r, 0, fileHeaderSize), binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(err, "reading pak header")
	}
	if h.ID != magic {
		return nil, errors.Wrapf(ErrBadMagic, "magic %q", string(h.ID[:]))
	}

	if end := uint64(h.Directory) + uint64(h.DirectorySize); end > uint64(size) {
		return nil, errors.Wrapf(io.ErrUnexpectedEOF, "pak directory ends at %d, file is %d bytes", end, size)
	}
	entries := make([]fileEntry, h.DirectorySize/fileEntrySize)
	dir := io.NewSectionReader(r, int64(h.Directory), int64(h.DirectorySize))
	if err := binary.Read(dir, binary.LittleEndian, entries); err != nil {
		return nil, errors.Wrapf(err, "reading pak directory of %d entries at %d", len(entries), h.Directory)
	}

	ret := &Pak{
		r:       r,
		Entries: make(map[string]Entry, len(entries)),
	}
	for i := range entries {
		e := &entries[i]
		if Verbose {
			log.Printf("pak entry %q at %d, %d bytes", e.Name(), e.Offset, e.Size)
		}
		ret.Entries[e.Name()] = Entry{
			Pos:  e.Offset,
			Size: e.Size,
		}
	}
	return ret, nil
}

// OpenFile opens a pak file on disk. Close it when done.
func OpenFile(fn string) (*Pak, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	p, err := Open(f, st.Size())
	if err != nil {
		f.Close()
		return nil, errors.Wrapf(err, "opening %q", fn)
	}
	p.closer = f
	return p, nil
}

// MultiPak is a list of paks searched as one. Later paks override earlier
// ones, the way pak1.pak overrides pak0.pak.
type MultiPak []*Pak

// List returns the file names in all paks, sorted and without duplicates.
func (m MultiPak) List() []string {
	seen := make(map[string]bool)
	var ret []string
	for _, p := range m {
		for fn := range p.Entries {
			if !seen[fn] {
				seen[fn] = true
				ret = append(ret, fn)
			}
		}
	}
	sort.Strings(ret)
	return ret
}

// MultiOpen opens the named paks. Empty names are skipped.
func MultiOpen(fns ...string) (MultiPak, error) {
	var ret MultiPak
	for _, fn := range fns {
		if fn == "" {
			continue
		}
		p, err := OpenFile(fn)
		if err != nil {
			ret.Close()
			return nil, err
		}
		ret = append(ret, p)
	}
	return ret, nil
}

// Get returns the file from the last pak that has it.
func (m MultiPak) Get(fn string) (*io.SectionReader, error) {
	for i := len(m) - 1; i >= 0; i-- {
		if r, err := m[i].Get(fn); err == nil {
			return r, nil
		}
	}
	return nil, errors.Wrapf(ErrNotFound, "%q in %d paks", fn, len(m))
}

func (m MultiPak) Close() error {
	var ret error
	for _, p := range m {
		if err := p.Close(); err != nil && ret == nil {
			ret = err
		}
	}
	return ret
}
