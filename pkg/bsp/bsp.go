// Package bsp loads Quake BSP files.
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
// Both version 29 and BSP2 files are supported. They decode into the same
// types. Visibility, nodes, clip nodes and leaves are not decoded.
//
// Indices between sections are not checked when loading. The face helpers
// (FaceTexInfo, FaceVertices, ...) check them when they are used.
//
// References:
// * http://www.gamers.org/dEngine/quake/spec/quake-spec34/qkspec_4.htm
// * http://www.gamers.org/dEngine/quake/QDP/qmapspec.html
package bsp

import (
	"fmt"

	"github.com/chewxy/math32"
)

var (
	// Verbose logs section counts while loading.
	Verbose = false
)

type Vertex struct {
	X, Y, Z float32
}

func (v *Vertex) String() string {
	return fmt.Sprintf("%g,%g,%g", v.X, v.Y, v.Z)
}

func (v *Vertex) DotProduct(w Vertex) float32 {
	return v.X*w.X + v.Y*w.Y + v.Z*w.Z
}

func (v *Vertex) Sub(w Vertex) *Vertex {
	return &Vertex{
		X: v.X - w.X,
		Y: v.Y - w.Y,
		Z: v.Z - w.Z,
	}
}

func (v *Vertex) Length() float32 {
	return math32.Sqrt(v.DotProduct(*v))
}

// Range is a half open range of indices into another section.
type Range struct {
	Start, End int
}

// span converts the (first, count) pair used on disk.
func span(first, count uint32) Range {
	return Range{Start: int(first), End: int(first) + int(count)}
}

func (r Range) Len() int {
	return r.End - r.Start
}

// An Edge connects two vertices, by index.
// Edges are not referenced directly from faces, only via the EdgeList.
type Edge struct {
	V0, V1 uint32
}

// An EdgeRef is an entry in the edge list. The sign is the winding:
// a positive (or zero) value walks Edges[e] from V0, a negative value walks
// Edges[-e] backwards, from V1.
type EdgeRef int32

// Edge returns the index into the Edges section.
func (e EdgeRef) Edge() int {
	if e < 0 {
		return -int(e)
	}
	return int(e)
}

// Reversed is true if the edge is walked from V1.
func (e EdgeRef) Reversed() bool {
	return e < 0
}

// Start returns the vertex index the face boundary visits for this edge.
func (e EdgeRef) Start(edge Edge) uint32 {
	if e.Reversed() {
		return edge.V1
	}
	return edge.V0
}

type Plane struct {
	Normal   Vertex
	Distance float32

	// 0-2: axial plane in X, Y, Z. 3-5: non axial, closest to X, Y, Z.
	Type int32
}

// A TexAxis is one of the two texture space axes of a TexInfo.
type TexAxis struct {
	Vector Vertex
	Offset float32
}

// Project returns the texture space coordinate of v along the axis.
func (a *TexAxis) Project(v Vertex) float32 {
	return v.DotProduct(a.Vector) + a.Offset
}

// A TexInfo is information about how to apply a texture (Texture) onto a face.
// Texture coordinates are not attached to vertices, but calculated by mapping
// world coordinates onto the S and T axes:
//   s = (v dot S.Vector) + S.Offset
//   t = (v dot T.Vector) + T.Offset
type TexInfo struct {
	S, T      TexAxis
	TextureID uint32 // Index into Textures.
	Flags     uint32 // 0 for ordinary textures, 1 for water, etc.
}

// ST returns the texture coordinates of v, in texels.
func (t *TexInfo) ST(v Vertex) (float32, float32) {
	return t.S.Project(v), t.T.Project(v)
}

// A Face is a polygon.
type Face struct {
	PlaneID   uint32
	Side      uint32 // 0 if in front of the plane.
	Edges     Range  // Range in EdgeList.
	TexInfoID uint32

	// 0 = normal light map.
	// 1 = fast pulse.
	// 2 = slow pulse.
	// 3-10 = other light effects.
	// 0xff = no light map
	LightType uint8

	LightBase uint8 // 0xff = dark, 0 = bright.
	Light     [2]uint8
	Lightmap  int32 // Offset in Lightmaps, or -1.
}

// Front is true if the face is on the front side of its plane.
func (f *Face) Front() bool {
	return f.Side == 0
}

func (f *Face) HasLightmap() bool {
	return f.Lightmap >= 0
}

// A Model is some polygons of the map.
// Most of level is in model 0. Others are doors and other movables.
//
// Models from BSP files show up in game as entities with model name "*N", where
// N is the index into Models.
type Model struct {
	Min, Max Vertex // The bounding box of the Model.
	Origin   Vertex // Origin of model, usually (0,0,0).
	HeadNode [4]int32
	NumLeafs int32
	Faces    Range // Range in Faces.
}

// File is a decoded BSP file.
//
// Indirections such as Face->EdgeList->Edge->Vertex are kept as indices.
// Nothing modifies a File after Load, so it can be shared between goroutines.
type File struct {
	Version   Version
	Directory Directory
	Entities  []Entity  // Player start point, weapons, enemies, ...
	Planes    []Plane
	Textures  []Texture // Indexed by directory slot. See Texture.Absent.
	Vertices  []Vertex
	TexInfo   []TexInfo // How to apply a texture to a face.
	Faces     []Face
	Lightmaps []byte
	Edges     []Edge    // Connections between vertices.
	EdgeList  []EdgeRef // Connect faces with edges.
	Models    []Model   // Parts of geometry. For levels 0 is everything non-movable.
}

// Worldspawn returns the first entity, which holds map wide settings.
func (f *File) Worldspawn() (Entity, bool) {
	if len(f.Entities) == 0 {
		return nil, false
	}
	return f.Entities[0], true
}
