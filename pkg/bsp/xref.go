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

// Face helpers. These follow the indices between sections and return
// ErrIndexOutOfBounds for broken ones. Nothing here modifies the File.

func (f *File) FacePlane(face *Face) (Plane, error) {
	if int(face.PlaneID) >= len(f.Planes) {
		return Plane{}, outOfBounds("plane", int(face.PlaneID), len(f.Planes))
	}
	return f.Planes[face.PlaneID], nil
}

func (f *File) FaceTexInfo(face *Face) (TexInfo, error) {
	if int(face.TexInfoID) >= len(f.TexInfo) {
		return TexInfo{}, outOfBounds("texinfo", int(face.TexInfoID), len(f.TexInfo))
	}
	return f.TexInfo[face.TexInfoID], nil
}

// FaceTexture returns the texture of the face, via its TexInfo.
// The texture may be Absent.
func (f *File) FaceTexture(face *Face) (Texture, error) {
	ti, err := f.FaceTexInfo(face)
	if err != nil {
		return Texture{}, err
	}
	if int(ti.TextureID) >= len(f.Textures) {
		return Texture{}, outOfBounds("texture", int(ti.TextureID), len(f.Textures))
	}
	return f.Textures[ti.TextureID], nil
}

// FaceVertexIndices returns the vertex indices around the face, in order.
// Each EdgeList entry contributes the vertex the edge starts at, which for
// reversed edges is V1.
func (f *File) FaceVertexIndices(face *Face) ([]uint32, error) {
	if face.Edges.Start < 0 || face.Edges.End > len(f.EdgeList) || face.Edges.Len() < 0 {
		return nil, outOfBounds("edge list end", face.Edges.End, len(f.EdgeList)+1)
	}
	ret := make([]uint32, 0, face.Edges.Len())
	for _, ref := range f.EdgeList[face.Edges.Start:face.Edges.End] {
		e := ref.Edge()
		if e >= len(f.Edges) {
			return nil, outOfBounds("edge", e, len(f.Edges))
		}
		ret = append(ret, ref.Start(f.Edges[e]))
	}
	return ret, nil
}

// FaceVertices returns the vertices around the face, in order.
func (f *File) FaceVertices(face *Face) ([]Vertex, error) {
	idx, err := f.FaceVertexIndices(face)
	if err != nil {
		return nil, err
	}
	ret := make([]Vertex, len(idx))
	for n, i := range idx {
		if int(i) >= len(f.Vertices) {
			return nil, outOfBounds("vertex", int(i), len(f.Vertices))
		}
		ret[n] = f.Vertices[i]
	}
	return ret, nil
}

// ModelFaces returns the faces of a model.
func (f *File) ModelFaces(m *Model) ([]Face, error) {
	if m.Faces.Start < 0 || m.Faces.End > len(f.Faces) || m.Faces.Len() < 0 {
		return nil, outOfBounds("face range end", m.Faces.End, len(f.Faces)+1)
	}
	return append([]Face(nil), f.Faces[m.Faces.Start:m.Faces.End]...), nil
}
