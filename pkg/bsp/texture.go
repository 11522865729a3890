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
	"image"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	// NumMips is the number of mip levels stored per texture:
	// full, 1/2, 1/4 and 1/8 scale.
	NumMips = 4

	textureNameSize = 16
)

// A MipLevel is one downsample of a texture, as palette indices.
type MipLevel struct {
	Width  uint32
	Height uint32
	Offset uint32 // Absolute file offset of Data.
	Data   []byte // Width*Height palette indices.
}

// RGB returns the pixels as RGB triples.
func (m *MipLevel) RGB() []byte {
	return ExpandPalette(m.Data)
}

// Image returns the mip level as an image using the Quake palette.
func (m *MipLevel) Image() *image.Paletted {
	img := image.NewPaletted(image.Rectangle{
		Max: image.Point{X: int(m.Width), Y: int(m.Height)},
	}, quakePalette)
	copy(img.Pix, m.Data)
	return img
}

// A Texture is a wall texture with its four mip levels.
//
// Textures are stored in the file with offsets relative to the texture
// header, not to the beginning of the file. Offsets here are absolute.
type Texture struct {
	ID     int // Slot in the texture directory.
	Name   string
	Width  uint32 // Width of picture, should be a multiple of 8.
	Height uint32 // Height of picture, should be a multiple of 8.

	// Absent textures are directory slots without data.
	// They are kept so that TexInfo.TextureID stays a directory slot.
	Absent bool

	Mips [NumMips]MipLevel
}

// readTextures reads the texture directory at e and every texture in it.
//
// The directory is an int32 count followed by count int32 offsets,
// relative to the start of the directory. An offset <= 0 means the
// slot is empty.
func readTextures(r io.ReadSeeker, e Entry) ([]Texture, error) {
	if e.Size == 0 {
		return nil, nil
	}
	base := int64(e.Offset)
	if _, err := r.Seek(base, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seeking to texture directory at %d", base)
	}
	count, err := readInt32(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading texture count")
	}
	if count < 0 {
		count = 0
	}
	if err := checkFits(r, uint64(base)+4, 4*uint64(count)); err != nil {
		return nil, errors.Wrapf(err, "texture directory of %d entries", count)
	}
	if _, err := r.Seek(base+4, io.SeekStart); err != nil {
		return nil, errors.Wrapf(err, "seeking to texture offsets at %d", base+4)
	}
	offsets := make([]int32, count)
	if err := readValue(r, offsets); err != nil {
		return nil, errors.Wrapf(err, "reading %d texture offsets", count)
	}

	ret := make([]Texture, len(offsets))
	for n, rel := range offsets {
		if rel <= 0 {
			if Verbose {
				log.Printf("Texture slot %d is empty (offset %d)", n, rel)
			}
			ret[n] = Texture{ID: n, Absent: true}
			continue
		}
		t, err := readTexture(r, base+int64(rel))
		if err != nil {
			return nil, errors.Wrapf(err, "reading texture %d at %d+%d", n, base, rel)
		}
		t.ID = n
		ret[n] = *t
	}
	return ret, nil
}

// readTexture reads the texture header at pos and its mip levels.
func readTexture(r io.ReadSeeker, pos int64) (*Texture, error) {
	if _, err := r.Seek(pos, io.SeekStart); err != nil {
		return nil, err
	}
	t := &Texture{}
	var err error
	if t.Name, err = readFixedString(r, textureNameSize); err != nil {
		return nil, errors.Wrap(err, "name")
	}
	if t.Width, err = readUint32(r); err != nil {
		return nil, errors.Wrap(err, "width")
	}
	if t.Height, err = readUint32(r); err != nil {
		return nil, errors.Wrap(err, "height")
	}
	for i := range t.Mips {
		rel, err := readUint32(r)
		if err != nil {
			return nil, errors.Wrapf(err, "mip %d offset", i)
		}
		t.Mips[i] = MipLevel{
			Width:  t.Width >> uint(i),
			Height: t.Height >> uint(i),
			Offset: uint32(pos) + rel,
		}
	}
	for i := range t.Mips {
		m := &t.Mips[i]
		n := uint64(m.Width) * uint64(m.Height)
		if err := checkFits(r, uint64(m.Offset), n); err != nil {
			return nil, errors.Wrapf(err, "mip %d of %q (%dx%d)", i, t.Name, m.Width, m.Height)
		}
		if _, err := r.Seek(int64(m.Offset), io.SeekStart); err != nil {
			return nil, errors.Wrapf(err, "seeking to mip %d of %q", i, t.Name)
		}
		if m.Data, err = readBytes(r, int(n)); err != nil {
			return nil, errors.Wrapf(err, "reading mip %d of %q (%dx%d at %d)", i, t.Name, m.Width, m.Height, m.Offset)
		}
	}
	return t, nil
}
