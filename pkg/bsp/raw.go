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

// The file contains the raw file loading code.

import (
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// Sizes of various structs that are part of the file format.
	// This is to prevent accidentally adding fields to those structs.
	fileFace29Size   = 2 + 2 + 4 + 2 + 2 + 1 + 1 + 2 + 4
	fileFaceBSP2Size = 4 + 4 + 4 + 4 + 4 + 1 + 1 + 2 + 4
	fileEdge29Size   = 2 + 2
	fileEdgeBSP2Size = 4 + 4
	filePlaneSize    = 3*4 + 4 + 4
	fileTexInfoSize  = 3*4 + 4 + 3*4 + 4 + 4 + 4
	fileModelSize    = 2*3*4 + 3*4 + 4*4 + 3*4
	fileMiptexSize   = 16 + 4 + 4 + 4*4
	fileVertexSize   = 4 * 3
	fileEdgeRefSize  = 4

	// Number of entries in the directory.
	numEntries = 15
	entrySize  = 4 + 4
)

// An Entry says where in the file a section is.
type Entry struct {
	Offset uint32
	Size   uint32
}

// Count returns how many records of wireSize bytes fit in the entry.
// Trailing bytes that don't make up a whole record are ignored.
func (e Entry) Count(wireSize int) int {
	return int(e.Size) / wireSize
}

// Directory follows the version magic in the file.
// Offsets are not checked here. A bad one fails when its section is read.
type Directory struct {
	Entities   Entry // Entities (lights, start points, weapons, enemies...)
	Planes     Entry
	Textures   Entry // Miptex directory.
	Vertices   Entry
	Visibility Entry // PVS. Not decoded.
	Nodes      Entry // BSP nodes. Not decoded.
	TexInfo    Entry // How to apply a miptex to a face.
	Faces      Entry // Polygons.
	Lightmaps  Entry
	ClipNodes  Entry // Not decoded.
	Leaves     Entry // BSP leaves. Not decoded.
	LeafFaces  Entry // List of faces. Used for BSP. Not decoded.
	Edges      Entry
	EdgeList   Entry // Signed edge indices, see EdgeRef.
	Models     Entry // See Model comment.
}

// A fileFace29 is a polygon as it appears in a version 29 file.
type fileFace29 struct {
	PlaneID   uint16
	Side      uint16
	LEdge     uint32 // First EdgeList entry.
	LEdgeNum  uint16 // Number of EdgeList entries.
	TexInfoID uint16
	LightType uint8
	LightBase uint8
	Light     [2]uint8
	Lightmap  int32
}

// A fileFaceBSP2 is a polygon as it appears in a BSP2 file.
type fileFaceBSP2 struct {
	PlaneID   uint32
	Side      uint32
	LEdge     uint32
	LEdgeNum  uint32
	TexInfoID uint32
	LightType uint8
	LightBase uint8
	Light     [2]uint8
	Lightmap  int32
}

type fileEdge29 struct {
	V0, V1 uint16
}

type fileEdgeBSP2 struct {
	V0, V1 uint32
}

type filePlane struct {
	Normal   Vertex
	Distance float32
	Type     int32
}

type fileTexInfo struct {
	VectorS   Vertex
	DistS     float32
	VectorT   Vertex
	DistT     float32
	TextureID uint32
	Flags     uint32
}

type fileModel struct {
	BoundBoxMin, BoundBoxMax Vertex
	Origin                   Vertex
	HeadNode                 [4]int32 // BSP node, then three clip nodes.
	NumLeafs                 int32
	FaceID                   uint32
	FaceNum                  uint32
}

// readLump reads the fixed size records of one section and converts them
// with conv. The record size is the wire size of W.
func readLump[W, T any](r io.ReadSeeker, e Entry, conv func(W) T) ([]T, error) {
	var w W
	size := binary.Size(w)
	n := e.Count(size)
	if err := checkFits(r, uint64(e.Offset), uint64(n)*uint64(size)); err != nil {
		return nil, err
	}
	if _, err := r.Seek(int64(e.Offset), io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seeking to %d", e.Offset)
	}
	raw := make([]W, n)
	if err := readValue(r, raw); err != nil {
		return nil, errors.Wrapf(err, "reading %d records of %d bytes at %d", n, size, e.Offset)
	}
	ret := make([]T, n)
	for i := range raw {
		ret[i] = conv(raw[i])
	}
	return ret, nil
}

func same[T any](v T) T { return v }

func planeFromFile(p filePlane) Plane {
	return Plane{Normal: p.Normal, Distance: p.Distance, Type: p.Type}
}

func texInfoFromFile(t fileTexInfo) TexInfo {
	return TexInfo{
		S:         TexAxis{Vector: t.VectorS, Offset: t.DistS},
		T:         TexAxis{Vector: t.VectorT, Offset: t.DistT},
		TextureID: t.TextureID,
		Flags:     t.Flags,
	}
}

func modelFromFile(m fileModel) Model {
	return Model{
		Min:      m.BoundBoxMin,
		Max:      m.BoundBoxMax,
		Origin:   m.Origin,
		HeadNode: m.HeadNode,
		NumLeafs: m.NumLeafs,
		Faces:    span(m.FaceID, m.FaceNum),
	}
}

// Load loads a BSP map from something that reads and seeks.
//
// Everything is copied out of r, so r can be closed afterwards.
// Any read error aborts the load. There are no partial results.
func Load(r io.ReadSeeker) (*File, error) {
	f := &File{}

	var err error
	if f.Version, err = readVersion(r); err != nil {
		return nil, err
	}
	if err := readValue(r, &f.Directory); err != nil {
		return nil, errors.Wrap(err, "reading directory")
	}
	d := &f.Directory
	if Verbose {
		log.Printf("BSP version %v", f.Version)
	}

	wrap := func(err error, what string, e Entry) error {
		return errors.Wrapf(err, "reading %s (offset %d, size %d)", what, e.Offset, e.Size)
	}

	{
		b, err := readLump(r, d.Entities, same[byte])
		if err != nil {
			return nil, wrap(err, "entities", d.Entities)
		}
		f.Entities = ParseEntities(b)
	}
	if f.Planes, err = readLump(r, d.Planes, planeFromFile); err != nil {
		return nil, wrap(err, "planes", d.Planes)
	}
	if f.Textures, err = readTextures(r, d.Textures); err != nil {
		return nil, wrap(err, "textures", d.Textures)
	}
	if f.Vertices, err = readLump(r, d.Vertices, same[Vertex]); err != nil {
		return nil, wrap(err, "vertices", d.Vertices)
	}
	if f.TexInfo, err = readLump(r, d.TexInfo, texInfoFromFile); err != nil {
		return nil, wrap(err, "texinfo", d.TexInfo)
	}
	if f.Lightmaps, err = readLump(r, d.Lightmaps, same[byte]); err != nil {
		return nil, wrap(err, "lightmaps", d.Lightmaps)
	}
	if f.EdgeList, err = readLump(r, d.EdgeList, same[EdgeRef]); err != nil {
		return nil, wrap(err, "edge list", d.EdgeList)
	}
	if f.Models, err = readLump(r, d.Models, modelFromFile); err != nil {
		return nil, wrap(err, "models", d.Models)
	}

	l := f.Version.layout()
	if f.Faces, err = l.faces(r, d.Faces); err != nil {
		return nil, wrap(err, "faces", d.Faces)
	}
	if f.Edges, err = l.edges(r, d.Edges); err != nil {
		return nil, wrap(err, "edges", d.Edges)
	}

	if Verbose {
		log.WithFields(log.Fields{
			"entities":  len(f.Entities),
			"planes":    len(f.Planes),
			"textures":  len(f.Textures),
			"vertices":  len(f.Vertices),
			"texinfo":   len(f.TexInfo),
			"faces":     len(f.Faces),
			"lightmaps": len(f.Lightmaps),
			"edges":     len(f.Edges),
			"edgelist":  len(f.EdgeList),
			"models":    len(f.Models),
		}).Printf("Loaded BSP")
	}
	return f, nil
}
