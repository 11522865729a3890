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

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrUnsupportedVersion is matched by *UnsupportedVersionError.
	ErrUnsupportedVersion = errors.New("unsupported BSP version")

	// ErrTruncatedInput means a fixed size read hit the end of the input.
	// Everything after a short section is suspect, so parsing stops.
	ErrTruncatedInput = errors.New("truncated input")

	// ErrInvalidText is returned for texture names that are not text.
	ErrInvalidText = errors.New("invalid text")

	// ErrIndexOutOfBounds is returned by the face helpers. It only concerns
	// the one lookup, the rest of the File is still usable.
	ErrIndexOutOfBounds = errors.New("index out of bounds")

	// ErrEntitiesNotFound is returned by ScanEntities and WorldspawnMessage.
	ErrEntitiesNotFound = errors.New("entities not found")
)

// UnsupportedVersionError carries the magic bytes that were not recognized.
type UnsupportedVersionError struct {
	Magic [4]byte
}

func (e *UnsupportedVersionError) Error() string {
	return fmt.Sprintf("%v: magic % x (%q)", ErrUnsupportedVersion, e.Magic[:], string(e.Magic[:]))
}

// Is makes errors.Is(err, ErrUnsupportedVersion) true.
func (e *UnsupportedVersionError) Is(target error) bool {
	return target == ErrUnsupportedVersion
}

// outOfBounds wraps ErrIndexOutOfBounds with what was looked up.
func outOfBounds(what string, idx, n int) error {
	return errors.Wrapf(ErrIndexOutOfBounds, "%s %d not in [0,%d[", what, idx, n)
}
