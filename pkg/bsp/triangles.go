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
	"github.com/pkg/errors"
)

// Textures with these names are never drawn.
var invisibleTextures = map[string]bool{
	"trigger": true,
	"clip":    true,
}

// A Triangle is three vertex indices from one face.
type Triangle struct {
	Face    int // Index in Faces.
	A, B, C uint32
}

// ModelTriangles takes the faces from one model in the BSP and returns them
// as triangles. Faces are convex, so each face becomes a fan around its
// first vertex. Faces with invisible textures, such as triggers, are skipped.
func (f *File) ModelTriangles(modelNumber int) ([]Triangle, error) {
	if modelNumber < 0 || modelNumber >= len(f.Models) {
		return nil, outOfBounds("model", modelNumber, len(f.Models))
	}
	m := &f.Models[modelNumber]
	faces, err := f.ModelFaces(m)
	if err != nil {
		return nil, errors.Wrapf(err, "model %d", modelNumber)
	}

	var tris []Triangle
	for n := range faces {
		fn := m.Faces.Start + n
		face := &faces[n]
		tex, err := f.FaceTexture(face)
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", fn)
		}
		if invisibleTextures[tex.Name] {
			continue
		}
		vs, err := f.FaceVertexIndices(face)
		if err != nil {
			return nil, errors.Wrapf(err, "face %d", fn)
		}
		for i := 0; i < len(vs)-2; i++ {
			tris = append(tris, Triangle{
				Face: fn,
				A:    vs[0],
				B:    vs[i+1],
				C:    vs[i+2],
			})
		}
	}
	return tris, nil
}
