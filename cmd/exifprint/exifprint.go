package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
	"bitbucket.org/kleinnic74/geosnap/domain/tags"
	"bitbucket.org/kleinnic74/geosnap/filesystem"
	"bitbucket.org/kleinnic74/geosnap/geocoding"
	"bitbucket.org/kleinnic74/geosnap/geocoding/openstreetmap"
	"bitbucket.org/kleinnic74/geosnap/library"
)

type tagSet map[string]bool

func (t tagSet) Set(value string) error {
	for _, name := range strings.Split(value, ",") {
		if name = strings.TrimSpace(name); name != "" {
			t[name] = true
		}
	}
	return nil
}

func (t tagSet) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	var sep string
	for k := range t {
		b.WriteString(sep)
		b.WriteString(k)
		sep = ","
	}
	return b.String()
}

func (t tagSet) Contains(tag string) bool {
	_, found := t[tag]
	return found
}

type Action func(ctx context.Context, path string, set tags.Set) error

func printTags(ctx context.Context, path string, set tags.Set) error {
	for _, name := range set.Names() {
		if len(filter) == 0 || filter.Contains(name) {
			fmt.Printf("%s: %s=%s\n", path, name, set[name])
		}
	}
	return nil
}

func printMeta(resolver geocoding.Resolver) Action {
	return func(ctx context.Context, path string, set tags.Set) error {
		info := set.CameraInfo()
		fmt.Printf("%s: Camera=%s\n", path, info.Camera)
		fmt.Printf("%s: Lens=%s\n", path, info.Lens)
		fmt.Printf("%s: Exposure=%s %s %s %s\n", path, info.Shutter, info.Aperture, info.ISO, info.FocalLength)
		r, err := gps.Parse(set)
		if err != nil {
			fmt.Printf("%s: Location=none (%s)\n", path, err)
			return nil
		}
		fmt.Printf("%s: Location=%s\n", path, r.ISO6709())
		if resolver != nil {
			a, found, err := resolver.ReverseGeocode(ctx, r.Latitude, r.Longitude)
			switch {
			case err != nil:
				return err
			case found:
				fmt.Printf("%s: Address=%v\n", path, a)
			}
		}
		return nil
	}
}

var (
	filter        = make(tagSet)
	modeMeta      = false
	lookupAddress = false
	dumpQT        = false
	language      = "en"
)

func main() {
	flag.Var(filter, "t", "EXIF tags to print")
	flag.BoolVar(&modeMeta, "m", false, "Print the GPS position and camera settings")
	flag.BoolVar(&lookupAddress, "a", false, "Resolve location to an address")
	flag.BoolVar(&dumpQT, "q", false, "Produce an SVG of the geo quadtree")
	flag.StringVar(&language, "lang", language, "Preferred language for addresses")
	flag.Parse()

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <file or dir>...\n", os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	ctx := context.Background()
	var action Action = printTags
	if modeMeta {
		var resolver geocoding.Resolver
		if lookupAddress {
			cache := geocoding.NewGeoCache(openstreetmap.NewResolver(language))
			defer func() {
				s := cache.Stats()
				fmt.Fprintf(os.Stderr, "  Quadtree cache hits: %d\n", s.Hits)
				fmt.Fprintf(os.Stderr, "  Quadtree cache misses: %d\n", s.Misses)
				fmt.Fprintf(os.Stderr, "  Quadtree places: %d\n", s.Places)
				if s.Total > 0 {
					fmt.Fprintf(os.Stderr, "  Quadtree performance: %.1f%%\n", 100*float64(s.Hits)/float64(s.Total))
				}
				if dumpQT {
					out, err := os.Create("qt.svg")
					if err != nil {
						log.Printf("Cannot write quadtree: %s", err)
						return
					}
					defer out.Close()
					geocoding.WriteSVG(out, cache)
				}
			}()
			resolver = cache
		}
		action = printMeta(resolver)
	}

	extractor := tags.NewExtractor(filesystem.Local)
	for _, arg := range flag.Args() {
		paths, err := pathsOf(ctx, arg)
		if err != nil {
			log.Printf("Cannot access %s: %s", arg, err)
			continue
		}
		for _, p := range paths {
			if err := action(ctx, p, extractor.Extract(ctx, p)); err != nil {
				log.Printf("%s: %s", p, err)
			}
		}
	}
}

func pathsOf(ctx context.Context, arg string) ([]string, error) {
	s, err := os.Stat(arg)
	if err != nil {
		return nil, err
	}
	if !s.IsDir() {
		return []string{arg}, nil
	}
	found, err := library.ScanDir(ctx, arg, true)
	if err != nil {
		return nil, err
	}
	paths := make([]string, len(found))
	for i, p := range found {
		paths[i] = string(p)
	}
	return paths, nil
}
