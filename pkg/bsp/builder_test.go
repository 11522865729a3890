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

// Synthetic BSP files for tests.

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// Directory slots, in file order.
const (
	lumpEntities = iota
	lumpPlanes
	lumpTextures
	lumpVertices
	lumpVisibility
	lumpNodes
	lumpTexInfo
	lumpFaces
	lumpLightmaps
	lumpClipNodes
	lumpLeaves
	lumpLeafFaces
	lumpEdges
	lumpEdgeList
	lumpModels
)

const testEntities = `{
"classname" "worldspawn"
"message" "Test map"
"wad" "gfx/base.wad"
}
{
"classname" "light"
"origin" "1 2 3"
}
` + "\x00"

// le encodes values little endian.
func le(t *testing.T, vs ...interface{}) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range vs {
		if err := binary.Write(&buf, binary.LittleEndian, v); err != nil {
			t.Fatalf("Encoding %v: %v", v, err)
		}
	}
	return buf.Bytes()
}

// mipTexture returns a texture header with its four mip levels right after.
// Pixel values are the index within the mip level.
func mipTexture(t *testing.T, name string, w, h uint32) []byte {
	t.Helper()
	var nameBytes [textureNameSize]byte
	copy(nameBytes[:], name)
	var offsets [NumMips]uint32
	var pixels []byte
	pos := uint32(fileMiptexSize)
	for i := range offsets {
		offsets[i] = pos
		n := (w >> uint(i)) * (h >> uint(i))
		for j := uint32(0); j < n; j++ {
			pixels = append(pixels, byte(j))
		}
		pos += n
	}
	return append(le(t, nameBytes, w, h, offsets), pixels...)
}

// textureLump returns a texture directory. nil entries are empty slots.
func textureLump(t *testing.T, textures ...[]byte) []byte {
	t.Helper()
	offsets := make([]int32, len(textures))
	var data []byte
	pos := int32(4 + 4*len(textures))
	for n, tex := range textures {
		if tex == nil {
			offsets[n] = -1
			continue
		}
		offsets[n] = pos
		data = append(data, tex...)
		pos += int32(len(tex))
	}
	return append(le(t, int32(len(textures)), offsets), data...)
}

// buildFile lays out magic, directory and lumps.
func buildFile(t *testing.T, magic [4]byte, lumps [numEntries][]byte) []byte {
	t.Helper()
	var dir Directory
	entries := []*Entry{
		&dir.Entities, &dir.Planes, &dir.Textures, &dir.Vertices, &dir.Visibility,
		&dir.Nodes, &dir.TexInfo, &dir.Faces, &dir.Lightmaps, &dir.ClipNodes,
		&dir.Leaves, &dir.LeafFaces, &dir.Edges, &dir.EdgeList, &dir.Models,
	}
	pos := uint32(4 + numEntries*entrySize)
	for n, l := range lumps {
		*entries[n] = Entry{Offset: pos, Size: uint32(len(l))}
		pos += uint32(len(l))
	}
	ret := append(magic[:], le(t, dir)...)
	for _, l := range lumps {
		ret = append(ret, l...)
	}
	return ret
}

// testLumps is a one room map: a square face, a trigger face and a door model.
//
// Vertices 0-3 are a 64x64 square. The face walks them with edge list
// [1 2 -5 4], so the reversed edge 5 (3->2) contributes vertex 2.
func testLumps(t *testing.T, v Version) [numEntries][]byte {
	t.Helper()
	var l [numEntries][]byte
	l[lumpEntities] = []byte(testEntities)
	l[lumpPlanes] = le(t,
		filePlane{Normal: Vertex{Z: 1}, Distance: 0, Type: 2},
		filePlane{Normal: Vertex{X: 1}, Distance: 64, Type: 0},
	)
	l[lumpTextures] = textureLump(t,
		mipTexture(t, "wall", 16, 8),
		nil,
		mipTexture(t, "trigger", 8, 8),
	)
	l[lumpVertices] = le(t,
		Vertex{0, 0, 0},
		Vertex{64, 0, 0},
		Vertex{64, 64, 0},
		Vertex{0, 64, 0},
	)
	l[lumpVisibility] = []byte{1, 2, 3}
	l[lumpTexInfo] = le(t,
		fileTexInfo{VectorS: Vertex{X: 1}, DistS: 8, VectorT: Vertex{Y: 1}, DistT: -8, TextureID: 0},
		fileTexInfo{VectorS: Vertex{X: 1}, VectorT: Vertex{Z: 1}, TextureID: 2, Flags: 1},
	)
	l[lumpLightmaps] = []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}
	l[lumpEdgeList] = le(t, []int32{1, 2, -5, 4})
	l[lumpModels] = le(t,
		fileModel{
			BoundBoxMin: Vertex{-1, -1, -1},
			BoundBoxMax: Vertex{65, 65, 1},
			HeadNode:    [4]int32{0, 0, 1, 0},
			NumLeafs:    3,
			FaceID:      0,
			FaceNum:     2,
		},
		fileModel{
			BoundBoxMin: Vertex{0, 0, 0},
			BoundBoxMax: Vertex{64, 64, 0},
			Origin:      Vertex{32, 32, 0},
			FaceID:      1,
			FaceNum:     1,
		},
	)

	edges := [][2]uint32{{0, 0}, {0, 1}, {1, 2}, {2, 3}, {3, 0}, {3, 2}}
	switch v {
	case Version29:
		for _, e := range edges {
			l[lumpEdges] = append(l[lumpEdges], le(t, fileEdge29{V0: uint16(e[0]), V1: uint16(e[1])})...)
		}
		l[lumpFaces] = le(t,
			fileFace29{PlaneID: 0, Side: 1, LEdge: 0, LEdgeNum: 4, TexInfoID: 0, LightType: 0, LightBase: 0xff, Light: [2]uint8{1, 2}, Lightmap: 0},
			fileFace29{PlaneID: 1, Side: 0, LEdge: 0, LEdgeNum: 4, TexInfoID: 1, LightType: 0xff, Lightmap: -1},
		)
	case VersionBSP2:
		for _, e := range edges {
			l[lumpEdges] = append(l[lumpEdges], le(t, fileEdgeBSP2{V0: e[0], V1: e[1]})...)
		}
		l[lumpFaces] = le(t,
			fileFaceBSP2{PlaneID: 0, Side: 1, LEdge: 0, LEdgeNum: 4, TexInfoID: 0, LightType: 0, LightBase: 0xff, Light: [2]uint8{1, 2}, Lightmap: 0},
			fileFaceBSP2{PlaneID: 1, Side: 0, LEdge: 0, LEdgeNum: 4, TexInfoID: 1, LightType: 0xff, Lightmap: -1},
		)
	default:
		t.Fatalf("Bad version %v", v)
	}
	return l
}

func testMagic(v Version) [4]byte {
	if v == VersionBSP2 {
		return magicBSP2
	}
	return magic29
}

// testFile loads the test map.
func testFile(t *testing.T, v Version) *File {
	t.Helper()
	f, err := Load(bytes.NewReader(buildFile(t, testMagic(v), testLumps(t, v))))
	if err != nil {
		t.Fatalf("Loading test map version %v: %v", v, err)
	}
	return f
}
