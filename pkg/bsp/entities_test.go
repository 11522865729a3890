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
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestParseEntities(t *testing.T) {
	for name, test := range map[string]struct {
		input string
		want  []Entity
	}{
		"empty": {},
		"only null": {
			input: "\x00",
		},
		"one": {
			input: "{\n\"classname\" \"worldspawn\"\n}\n",
			want:  []Entity{{"classname": "worldspawn"}},
		},
		"two": {
			input: testEntities,
			want: []Entity{
				{"classname": "worldspawn", "message": "Test map", "wad": "gfx/base.wad"},
				{"classname": "light", "origin": "1 2 3"},
			},
		},
		"crlf and indent": {
			input: "{\r\n  \"classname\" \"light\"\r\n\t\"light\" \"200\"\r\n}\r\n",
			want:  []Entity{{"classname": "light", "light": "200"}},
		},
		"junk lines": {
			input: "garbage\n{\n// comment\n\"classname\" \"light\"\nkey value\n\"half\n}\n}\n",
			want:  []Entity{{"classname": "light"}},
		},
		"text after null": {
			input: "{\n\"a\" \"b\"\n}\n\x00{\n\"c\" \"d\"\n}\n",
			want:  []Entity{{"a": "b"}},
		},
		"duplicate key keeps last": {
			input: "{\n\"target\" \"t1\"\n\"target\" \"t2\"\n}\n",
			want:  []Entity{{"target": "t2"}},
		},
		"value with quotes and spaces": {
			input: "{\n\"message\" \"the \"big\" one\"\n}\n",
			want:  []Entity{{"message": `the "big" one`}},
		},
		"empty value": {
			input: "{\n\"wad\" \"\"\n}\n",
			want:  []Entity{{"wad": ""}},
		},
		"empty entity": {
			input: "{\n}\n",
			want:  []Entity{{}},
		},
		"unterminated entity": {
			input: "{\n\"a\" \"b\"\n}\n{\n\"c\" \"d\"\n",
			want:  []Entity{{"a": "b"}},
		},
		"invalid utf-8": {
			input: "{\n\"message\" \"a\xffb\"\n}\n",
			want:  []Entity{{"message": "a\uFFFDb"}},
		},
	} {
		got := ParseEntities([]byte(test.input))
		if !reflect.DeepEqual(got, test.want) {
			t.Errorf("%s: got %q, want %q", name, got, test.want)
		}
	}
}

func TestFormatEntities(t *testing.T) {
	ents := []Entity{
		{"origin": "1 2 3", "classname": "light"},
		{"message": `back\slash "quoted"`, "classname": "worldspawn"},
	}
	s := FormatEntities(ents)
	want := "{\n\"classname\" \"light\"\n\"origin\" \"1 2 3\"\n}\n" +
		"{\n\"classname\" \"worldspawn\"\n\"message\" \"back\\slash \"quoted\"\"\n}\n"
	if s != want {
		t.Errorf("got %q, want %q", s, want)
	}
	if got := ParseEntities([]byte(s)); !reflect.DeepEqual(got, ents) {
		t.Errorf("Reparsed: got %q, want %q", got, ents)
	}
	if got := FormatEntities(ParseEntities([]byte(s))); got != s {
		t.Errorf("Not stable: got %q, want %q", got, s)
	}
}

func TestEntityOrigin(t *testing.T) {
	for name, test := range map[string]struct {
		ent  Entity
		want Vertex
		fail bool
	}{
		"ints":     {ent: Entity{"origin": "1 2 3"}, want: Vertex{1, 2, 3}},
		"floats":   {ent: Entity{"origin": "-1.5 0.25 -64"}, want: Vertex{-1.5, 0.25, -64}},
		"spaces":   {ent: Entity{"origin": " 8 16 24 "}, want: Vertex{8, 16, 24}},
		"missing":  {ent: Entity{"classname": "worldspawn"}, fail: true},
		"two":      {ent: Entity{"origin": "1 2"}, fail: true},
		"not nums": {ent: Entity{"origin": "a b c"}, fail: true},
		"dots":     {ent: Entity{"origin": "1 . 3"}, fail: true},
	} {
		got, err := test.ent.Origin()
		if test.fail {
			if err == nil {
				t.Errorf("%s: want error, got %v", name, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", name, err)
		} else if got != test.want {
			t.Errorf("%s: got %v, want %v", name, got, test.want)
		}
	}
}

func TestWorldspawn(t *testing.T) {
	f := &File{}
	if _, found := f.Worldspawn(); found {
		t.Errorf("Found worldspawn in empty file")
	}
	f = testFile(t, Version29)
	w, found := f.Worldspawn()
	if !found {
		t.Fatalf("No worldspawn")
	}
	if got, want := w.ClassName(), "worldspawn"; got != want {
		t.Errorf("ClassName: got %q, want %q", got, want)
	}
	if got, want := w["message"], "Test map"; got != want {
		t.Errorf("message: got %q, want %q", got, want)
	}
}

func TestScanEntities(t *testing.T) {
	for name, test := range map[string]struct {
		input string
		want  string
		fail  bool
	}{
		"plain": {
			input: "\x1d\x00\x00\x00junk{\n\"classname\" \"worldspawn\"\n}\n{\n\"classname\" \"light\"\n}\n\x00more",
			want:  "{\n\"classname\" \"worldspawn\"\n}\n{\n\"classname\" \"light\"\n}",
		},
		"colour bits": {
			input: "{\n\"classname\" \"worldspawn\"\n\"message\" \"\xc8\xe9\"\n}\x00",
			want:  "{\n\"classname\" \"worldspawn\"\n\"message\" \"Hi\"\n}",
		},
		"no worldspawn": {
			input: "{\n\"classname\" \"light\"\n}\x00",
			fail:  true,
		},
		"no brace": {
			input: "\"classname\" \"worldspawn\"\n}\x00",
			fail:  true,
		},
		"no null": {
			input: "{\n\"classname\" \"worldspawn\"\n}",
			fail:  true,
		},
		"no closing brace": {
			input: "{\n\"classname\" \"worldspawn\"\n\x00}",
			fail:  true,
		},
	} {
		got, err := ScanEntities([]byte(test.input))
		if test.fail {
			if !errors.Is(err, ErrEntitiesNotFound) {
				t.Errorf("%s: got error %v, want %v", name, err, ErrEntitiesNotFound)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", name, err)
		} else if got != test.want {
			t.Errorf("%s: got %q, want %q", name, got, test.want)
		}
	}
}

func TestScanEntitiesFile(t *testing.T) {
	data := buildFile(t, magic29, testLumps(t, Version29))
	s, err := ScanEntities(data)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := s+"\n\x00", testEntities; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
	if got, want := ParseEntities([]byte(s)), testFile(t, Version29).Entities; !reflect.DeepEqual(got, want) {
		t.Errorf("Parsed: got %q, want %q", got, want)
	}

	msg, err := WorldspawnMessage(data)
	if err != nil {
		t.Fatal(err)
	}
	if got, want := msg, "Test map"; got != want {
		t.Errorf("Message: got %q, want %q", got, want)
	}
}

func TestWorldspawnMessage(t *testing.T) {
	for name, test := range map[string]struct {
		input string
		want  string
		fail  bool
	}{
		"normal":       {input: `{"message" "The Slipgate Complex"}`, want: "The Slipgate Complex"},
		"first wins":   {input: "\"message\" \"one\"\n\"message\" \"two\"", want: "one"},
		"empty":        {input: `"message" ""`, want: ""},
		"high bits":    {input: "\"message\" \"a\xffb\"", want: "a\uFFFDb"},
		"missing":      {input: `"classname" "worldspawn"`, fail: true},
		"unterminated": {input: `"message" "abc`, fail: true},
	} {
		got, err := WorldspawnMessage([]byte(test.input))
		if test.fail {
			if !errors.Is(err, ErrEntitiesNotFound) {
				t.Errorf("%s: got error %v, want %v", name, err, ErrEntitiesNotFound)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", name, err)
		} else if got != test.want {
			t.Errorf("%s: got %q, want %q", name, got, test.want)
		}
	}
}
