// pak allows listing and extracting Quake PAK files.
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
	"io"
	"os"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/ThomasHabets/qbsp/pkg/pak"
)

var (
	outDir  = flag.String("out", ".", "Directory to extract into.")
	verbose = flag.Bool("v", false, "Verbose logging.")
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s [options] <pakfiles> command [command args...]\nCommands:\n  list\n  extract <file>...\n", os.Args[0])
	flag.PrintDefaults()
}

// extract copies fn from the paks to the same path under dir.
func extract(p pak.MultiPak, dir, fn string) error {
	handle, err := p.Get(fn)
	if err != nil {
		return err
	}
	out := filepath.Join(dir, filepath.FromSlash(fn))
	if err := os.MkdirAll(filepath.Dir(out), 0755); err != nil {
		return err
	}
	of, err := os.Create(out)
	if err != nil {
		return err
	}
	if _, err := io.Copy(of, handle); err != nil {
		of.Close()
		os.Remove(out)
		return err
	}
	return of.Close()
}

func main() {
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 2 {
		usage()
		os.Exit(1)
	}
	if *verbose {
		pak.Verbose = true
	}

	pakFiles := strings.Split(flag.Arg(0), ",")
	p, err := pak.MultiOpen(pakFiles...)
	if err != nil {
		log.Fatal(err)
	}
	defer p.Close()
	switch flag.Arg(1) {
	case "list":
		for _, k := range p.List() {
			fmt.Printf("%s\n", k)
		}
	case "extract":
		for _, fn := range flag.Args()[2:] {
			if err := extract(p, *outDir, fn); err != nil {
				log.Fatalf("Failed to extract %q: %v", fn, err)
			}
			log.Infof("Extracted %q", fn)
		}
	default:
		log.Fatalf("Unknown command %q", flag.Arg(1))
	}
}
