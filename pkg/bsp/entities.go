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
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/text/encoding/unicode"
)

var (
	coordRE = regexp.MustCompile(`^(-?[0-9.]+) (-?[0-9.]+) (-?[0-9.]+)$`)

	worldspawnNeedle = []byte(`"worldspawn"`)
	messageNeedle    = []byte(`"message" "`)
)

// An Entity is the key/values of one entity, e.g.
//   "classname" "light"
//   "origin" "1 2 3"
type Entity map[string]string

// ClassName returns the "classname" value, e.g. "worldspawn".
func (e Entity) ClassName() string {
	return e["classname"]
}

// Origin parses the "origin" value.
func (e Entity) Origin() (Vertex, error) {
	s, found := e["origin"]
	if !found {
		return Vertex{}, errors.Errorf("entity %q has no origin", e.ClassName())
	}
	return parseVertex(s)
}

func parseFloat32(s string) (float32, error) {
	t, err := strconv.ParseFloat(s, 32)
	return float32(t), err
}

func parseVertex(s string) (Vertex, error) {
	m := coordRE.FindStringSubmatch(strings.TrimSpace(s))
	if len(m) != 4 {
		return Vertex{}, errors.Errorf("vertex coord parse fail: %q", s)
	}
	v := Vertex{}

	var err error
	if v.X, err = parseFloat32(m[1]); err != nil {
	} else if v.Y, err = parseFloat32(m[2]); err != nil {
	} else if v.Z, err = parseFloat32(m[3]); err != nil {
	}
	if err != nil {
		return Vertex{}, errors.Errorf("vertex coord parse fail: %q", s)
	}
	return v, nil
}

// entityText decodes entity bytes, stopping at a NUL if there is one.
// Maps use high bit characters for coloured text, so this never fails:
// invalid UTF-8 turns into U+FFFD.
func entityText(b []byte) string {
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	out, err := unicode.UTF8.NewDecoder().Bytes(b)
	if err != nil {
		return strings.ToValidUTF8(string(b), "\uFFFD")
	}
	return string(out)
}

// splitKeyValue splits `"key" "value"`.
func splitKeyValue(line string) (string, string, bool) {
	if len(line) < 2 || line[0] != '"' || line[len(line)-1] != '"' {
		return "", "", false
	}
	return strings.Cut(line[1:len(line)-1], `" "`)
}

// ParseEntities parses the entities section. It's a big string with a list
// of key values per entity. E.g.:
//   {
//     "classname" "light"
//     "origin" "1 2 3"
//   }
//   {
//     "classname" "weapon_shotgun"
//     "origin" "4 5 6"
//   }
//
// Lines that are not `{`, `}` or a key value pair are skipped, since real maps
// contain all kinds of junk.
func ParseEntities(data []byte) []Entity {
	var ents []Entity
	var cur Entity
	for _, line := range strings.Split(entityText(data), "\n") {
		line = strings.TrimSpace(line)
		switch line {
		case "":
		case "{":
			cur = make(Entity)
		case "}":
			if cur != nil {
				ents = append(ents, cur)
				cur = nil
			}
		default:
			if cur == nil {
				continue
			}
			if k, v, ok := splitKeyValue(line); ok {
				cur[k] = v
			}
		}
	}
	return ents
}

// FormatEntities is the inverse of ParseEntities. Keys are sorted.
func FormatEntities(ents []Entity) string {
	var b strings.Builder
	for _, e := range ents {
		keys := make([]string, 0, len(e))
		for k := range e {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		b.WriteString("{\n")
		for _, k := range keys {
			fmt.Fprintf(&b, "\"%s\" \"%s\"\n", k, e[k])
		}
		b.WriteString("}\n")
	}
	return b.String()
}

// ScanEntities finds the entities text in a whole BSP file without reading
// the directory. It's the text from the `{` before "worldspawn" to the last
// `}` before the terminating NUL, with colour bits stripped.
func ScanEntities(data []byte) (string, error) {
	w := bytes.Index(data, worldspawnNeedle)
	if w < 0 {
		return "", errors.Wrap(ErrEntitiesNotFound, "missing worldspawn")
	}
	from := bytes.LastIndexByte(data[:w], '{')
	if from < 0 {
		return "", errors.Wrap(ErrEntitiesNotFound, "no opening brace")
	}
	nul := bytes.IndexByte(data[from:], 0)
	if nul < 0 {
		return "", errors.Wrap(ErrEntitiesNotFound, "no null terminator")
	}
	to := bytes.LastIndexByte(data[from:from+nul], '}')
	if to < 0 {
		return "", errors.Wrap(ErrEntitiesNotFound, "no closing brace")
	}
	plain := make([]byte, to+1)
	for i, b := range data[from : from+to+1] {
		plain[i] = b & 0x7f
	}
	return string(plain), nil
}

// WorldspawnMessage returns the first "message" value in a whole BSP file.
// That's the level name shown when the map starts.
func WorldspawnMessage(data []byte) (string, error) {
	from := bytes.Index(data, messageNeedle)
	if from < 0 {
		return "", errors.Wrap(ErrEntitiesNotFound, "no message")
	}
	from += len(messageNeedle)
	to := bytes.IndexByte(data[from:], '"')
	if to < 0 {
		return "", errors.Wrap(ErrEntitiesNotFound, "unterminated message")
	}
	return entityText(data[from : from+to]), nil
}
