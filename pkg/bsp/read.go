package bsp

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

// Scalar readers. Everything in a BSP file is little endian.

import (
	"bytes"
	"encoding/binary"
	"io"
	"unicode/utf8"

	"github.com/pkg/errors"
)

// readErr turns short reads into ErrTruncatedInput. Other errors are passed on.
func readErr(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return ErrTruncatedInput
	}
	return err
}

func readValue(r io.Reader, v interface{}) error {
	return readErr(binary.Read(r, binary.LittleEndian, v))
}

func readInt8(r io.Reader) (int8, error) {
	var ret int8
	if err := readValue(r, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

func readUint8(r io.Reader) (uint8, error) {
	var ret uint8
	if err := readValue(r, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

func readInt16(r io.Reader) (int16, error) {
	var ret int16
	if err := readValue(r, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

func readUint16(r io.Reader) (uint16, error) {
	var ret uint16
	if err := readValue(r, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

func readInt32(r io.Reader) (int32, error) {
	var ret int32
	if err := readValue(r, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

func readUint32(r io.Reader) (uint32, error) {
	var ret uint32
	if err := readValue(r, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

func readFloat(r io.Reader) (float32, error) {
	var ret float32
	if err := readValue(r, &ret); err != nil {
		return 0, err
	}
	return ret, nil
}

// readBytes reads exactly n bytes.
func readBytes(r io.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, readErr(err)
	}
	return buf, nil
}

// readFixedString reads an n byte NUL padded name, such as a texture name.
// The name doesn't have to be NUL terminated if it uses all n bytes.
func readFixedString(r io.Reader, n int) (string, error) {
	b, err := readBytes(r, n)
	if err != nil {
		return "", err
	}
	return cString(b)
}

// readString reads a NUL terminated string.
func readString(r io.Reader) (string, error) {
	var b []byte
	ch := make([]byte, 1)
	for {
		if _, err := io.ReadFull(r, ch); err != nil {
			return "", readErr(err)
		}
		if ch[0] == 0 {
			return cString(b)
		}
		b = append(b, ch[0])
	}
}

// cString returns b up to the first NUL. Names must be valid text.
func cString(b []byte) (string, error) {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	if !utf8.Valid(b) {
		return "", errors.Wrapf(ErrInvalidText, "%q", b)
	}
	return string(b), nil
}

// checkFits returns ErrTruncatedInput if n bytes at off don't fit in r.
// Sizes come from the file, so this is done before allocating for them.
// The read position is left at the end of r, or unchanged if n is 0.
func checkFits(r io.Seeker, off, n uint64) error {
	if n == 0 {
		return nil
	}
	end, err := r.Seek(0, io.SeekEnd)
	if err != nil {
		return errors.Wrap(err, "finding input size")
	}
	if size := uint64(end); off > size || n > size-off {
		return errors.Wrapf(ErrTruncatedInput, "%d bytes at %d, input is %d bytes", n, off, end)
	}
	return nil
}
