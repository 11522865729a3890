// bsp inspects Quake BSP maps, on disk or in PAK files.
package main

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
	"flag"
	"fmt"
	"image/png"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	log "github.com/sirupsen/logrus"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/ThomasHabets/qbsp/pkg/bsp"
	"github.com/ThomasHabets/qbsp/pkg/pak"
)

var (
	pakFiles = flag.String("pak", "", "Comma-separated list of pakfiles to search for maps. If empty, maps are files on disk.")
	verbose  = flag.Bool("v", false, "Verbose logging while loading.")
)

// openMap finds a map in the paks, or on disk if there are no paks.
func openMap(p pak.MultiPak, name string) (io.ReadSeeker, func(), error) {
	if len(p) > 0 {
		r, err := p.Get(name)
		return r, func() {}, err
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func loadMap(p pak.MultiPak, name string) *bsp.File {
	r, done, err := openMap(p, name)
	if err != nil {
		log.Fatalf("Finding map %q: %v", name, err)
	}
	defer done()
	m, err := bsp.Load(r)
	if err != nil {
		log.Fatalf("Loading map %q: %v", name, err)
	}
	return m
}

func mapArg(fs *flag.FlagSet) string {
	if fs.NArg() != 1 {
		fs.Usage()
		log.Fatalf("Need to specify exactly one map name.")
	}
	return fs.Arg(0)
}

func info(p pak.MultiPak, args ...string) {
	fs := flag.NewFlagSet("info", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-pak <pak0,pak1,...>] info [options] <maps/eXmX.bsp>\n", os.Args[0])
		fs.PrintDefaults()
	}
	fs.Parse(args)
	mapName := mapArg(fs)
	m := loadMap(p, mapName)

	fmt.Printf("Version:   %v\n", m.Version)
	if w, ok := m.Worldspawn(); ok {
		fmt.Printf("Message:   %q\n", w["message"])
	}
	fmt.Printf("Entities:  %v\n", len(m.Entities))
	fmt.Printf("Planes:    %v\n", len(m.Planes))
	fmt.Printf("Textures:  %v\n", len(m.Textures))
	fmt.Printf("Vertices:  %v\n", len(m.Vertices))
	fmt.Printf("TexInfos:  %v\n", len(m.TexInfo))
	fmt.Printf("Faces:     %v\n", len(m.Faces))
	fmt.Printf("Lightmaps: %v\n", len(m.Lightmaps))
	fmt.Printf("Edges:     %v\n", len(m.Edges))
	fmt.Printf("EdgeList:  %v\n", len(m.EdgeList))
	fmt.Printf("Models:    %v\n", len(m.Models))

	fmt.Printf("Model  Faces  Triangles\n")
	for n, mod := range m.Models {
		tris, err := m.ModelTriangles(n)
		if err != nil {
			log.Warningf("Model %d of %q: %v", n, mapName, err)
		}
		fmt.Printf("%5d %6d %10d\n", n, mod.Faces.Len(), len(tris))
	}
}

// entitiesJSON converts entities to a JSON list of objects.
func entitiesJSON(ents []bsp.Entity) ([]byte, error) {
	list := make([]interface{}, len(ents))
	for n, e := range ents {
		obj := make(map[string]interface{}, len(e))
		for k, v := range e {
			obj[k] = v
		}
		list[n] = obj
	}
	v, err := structpb.NewList(list)
	if err != nil {
		return nil, err
	}
	return protojson.MarshalOptions{Multiline: true, Indent: "  "}.Marshal(v)
}

func entities(p pak.MultiPak, args ...string) {
	fs := flag.NewFlagSet("entities", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-pak <pak0,pak1,...>] entities [options] <maps/eXmX.bsp>\n", os.Args[0])
		fs.PrintDefaults()
	}
	format := fs.String("format", "text", "Output format: text or json.")
	scan := fs.Bool("scan", false, "Find entities by searching the file instead of using the directory.")
	fs.Parse(args)
	mapName := mapArg(fs)

	var ents []bsp.Entity
	if *scan {
		r, done, err := openMap(p, mapName)
		if err != nil {
			log.Fatalf("Finding map %q: %v", mapName, err)
		}
		data, err := io.ReadAll(r)
		done()
		if err != nil {
			log.Fatalf("Reading map %q: %v", mapName, err)
		}
		s, err := bsp.ScanEntities(data)
		if err != nil {
			log.Fatalf("Scanning %q: %v", mapName, err)
		}
		ents = bsp.ParseEntities([]byte(s))
	} else {
		ents = loadMap(p, mapName).Entities
	}

	switch *format {
	case "text":
		fmt.Print(bsp.FormatEntities(ents))
	case "json":
		b, err := entitiesJSON(ents)
		if err != nil {
			log.Fatalf("Encoding entities: %v", err)
		}
		fmt.Println(string(b))
	default:
		log.Fatalf("Unknown format %q", *format)
	}
}

// textureFilename returns the png name of texture n.
// Texture names can contain '*' (liquids) and '+' (animations), but not '/'.
func textureFilename(n int, name string) string {
	return fmt.Sprintf("%03d_%s.png", n, strings.ReplaceAll(name, "/", "_"))
}

func textures(p pak.MultiPak, args ...string) {
	fs := flag.NewFlagSet("textures", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [-pak <pak0,pak1,...>] textures [options] <maps/eXmX.bsp>\n", os.Args[0])
		fs.PrintDefaults()
	}
	outDir := fs.String("out", ".", "Output directory.")
	mip := fs.Int("mip", 0, "Mip level to export, 0-3.")
	fs.Parse(args)
	mapName := mapArg(fs)
	if *mip < 0 || *mip >= bsp.NumMips {
		log.Fatalf("Mip level %d out of range", *mip)
	}
	m := loadMap(p, mapName)

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		log.Fatalf("Creating %q: %v", *outDir, err)
	}
	for n, t := range m.Textures {
		if t.Absent {
			log.Debugf("Skipping absent texture %d", n)
			continue
		}
		fn := filepath.Join(*outDir, textureFilename(n, t.Name))
		func() {
			of, err := os.Create(fn)
			if err != nil {
				log.Fatalf("Texture create of %q fail: %v", fn, err)
			}
			defer of.Close()
			if err := (&png.Encoder{CompressionLevel: png.BestCompression}).Encode(of, t.Mips[*mip].Image()); err != nil {
				log.Fatalf("Encoding texture to png: %v", err)
			}
		}()
		log.Infof("Wrote %q (%dx%d)", fn, t.Mips[*mip].Width, t.Mips[*mip].Height)
	}
}

func list(p pak.MultiPak, args ...string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s -pak <pak0,pak1,...> list [options]\n", os.Args[0])
		fs.PrintDefaults()
	}
	maps := fs.String("maps", ".*", "Maps regex.")
	fs.Parse(args)
	if len(p) == 0 {
		log.Fatalf("list needs -pak")
	}
	re, err := regexp.Compile(*maps)
	if err != nil {
		log.Fatalf("Maps regex %q invalid: %v", *maps, err)
	}

	for _, mf := range p.List() {
		if path.Ext(mf) != ".bsp" || !re.MatchString(mf) {
			continue
		}
		r, err := p.Get(mf)
		if err != nil {
			log.Fatalf("Getting %q: %v", mf, err)
		}
		m, err := bsp.Load(r)
		if err != nil {
			log.Warningf("Loading %q: %v", mf, err)
			continue
		}
		var msg string
		if w, ok := m.Worldspawn(); ok {
			msg = w["message"]
		}
		fmt.Printf("%-24s %-5v %6d faces %4d textures  %q\n", mf, m.Version, len(m.Faces), len(m.Textures), msg)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [global options] command [options]\n", os.Args[0])
	fmt.Fprintf(os.Stderr, "Commands:\n  info\n  entities\n  textures\n  list\nGlobal options:\n")
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if *verbose {
		bsp.Verbose = true
		pak.Verbose = true
		log.SetLevel(log.DebugLevel)
	}

	p, err := pak.MultiOpen(strings.Split(*pakFiles, ",")...)
	if err != nil {
		log.Fatalf("Opening pakfiles %q: %v", *pakFiles, err)
	}
	defer p.Close()

	if flag.NArg() == 0 {
		usage()
		log.Fatalf("Need to specify a command.")
	}

	cmd := flag.Arg(0)
	args := flag.Args()[1:]
	switch cmd {
	case "info":
		info(p, args...)
	case "entities":
		entities(p, args...)
	case "textures":
		textures(p, args...)
	case "list":
		list(p, args...)
	case "help":
		usage()
	default:
		log.Fatalf("Unknown command %q", cmd)
	}
}
