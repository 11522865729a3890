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
	"io"
)

// Version is the BSP format revision.
// Only faces and edges differ between the two.
type Version int

const (
	// Version29 is the original Quake format, with 16 bit face and edge fields.
	Version29 Version = iota + 1

	// VersionBSP2 widens face and edge fields to 32 bits, for big maps.
	VersionBSP2
)

var (
	magic29   = [4]byte{29, 0, 0, 0}
	magicBSP2 = [4]byte{'B', 'S', 'P', '2'}
)

func (v Version) String() string {
	switch v {
	case Version29:
		return "29"
	case VersionBSP2:
		return "BSP2"
	}
	return "unknown"
}

// readVersion reads the 4 byte magic at the start of the file.
func readVersion(r io.Reader) (Version, error) {
	b, err := readBytes(r, 4)
	if err != nil {
		return 0, err
	}
	var m [4]byte
	copy(m[:], b)
	switch m {
	case magic29:
		return Version29, nil
	case magicBSP2:
		return VersionBSP2, nil
	}
	return 0, &UnsupportedVersionError{Magic: m}
}

// layout decodes the sections whose record shape depends on the version.
// Both implementations return the same canonical types.
type layout interface {
	faces(r io.ReadSeeker, e Entry) ([]Face, error)
	edges(r io.ReadSeeker, e Entry) ([]Edge, error)
}

func (v Version) layout() layout {
	if v == VersionBSP2 {
		return layoutBSP2{}
	}
	return layout29{}
}

type layout29 struct{}

func (layout29) faces(r io.ReadSeeker, e Entry) ([]Face, error) {
	return readLump(r, e, func(f fileFace29) Face {
		return Face{
			PlaneID:   uint32(f.PlaneID),
			Side:      uint32(f.Side),
			Edges:     span(f.LEdge, uint32(f.LEdgeNum)),
			TexInfoID: uint32(f.TexInfoID),
			LightType: f.LightType,
			LightBase: f.LightBase,
			Light:     f.Light,
			Lightmap:  f.Lightmap,
		}
	})
}

func (layout29) edges(r io.ReadSeeker, e Entry) ([]Edge, error) {
	return readLump(r, e, func(f fileEdge29) Edge {
		return Edge{V0: uint32(f.V0), V1: uint32(f.V1)}
	})
}

type layoutBSP2 struct{}

func (layoutBSP2) faces(r io.ReadSeeker, e Entry) ([]Face, error) {
	return readLump(r, e, func(f fileFaceBSP2) Face {
		return Face{
			PlaneID:   f.PlaneID,
			Side:      f.Side,
			Edges:     span(f.LEdge, f.LEdgeNum),
			TexInfoID: f.TexInfoID,
			LightType: f.LightType,
			LightBase: f.LightBase,
			Light:     f.Light,
			Lightmap:  f.Lightmap,
		}
	})
}

func (layoutBSP2) edges(r io.ReadSeeker, e Entry) ([]Edge, error) {
	return readLump(r, e, func(f fileEdgeBSP2) Edge {
		return Edge{V0: f.V0, V1: f.V1}
	})
}
