// geosnap serves a photo collection with its EXIF metadata and locations
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"bitbucket.org/kleinnic74/geosnap/app"
	"bitbucket.org/kleinnic74/geosnap/config"
	"bitbucket.org/kleinnic74/geosnap/consts"
	"bitbucket.org/kleinnic74/geosnap/logging"

	"go.uber.org/zap"
)

var (
	libDir      string
	port        uint
	cacheSize   int
	language    string
	noGeocoding bool
	noWatch     bool
	logFile     bool
	saveConfig  bool
)

func init() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] [folder...]\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.StringVar(&libDir, "l", "", "Path to the GeoSnap data directory")
	flag.UintVar(&port, "p", 0, "HTTP port to listen on")
	flag.IntVar(&cacheSize, "c", 0, "Number of photos kept in the metadata cache")
	flag.StringVar(&language, "lang", "", "Preferred language for addresses")
	flag.BoolVar(&noGeocoding, "nogeo", false, "Disable address lookups")
	flag.BoolVar(&noWatch, "nowatch", false, "Disable watching folders for removed photos")
	flag.BoolVar(&logFile, "logfile", false, "Also write logs to geosnap.log in the data directory")
	flag.BoolVar(&saveConfig, "save", false, "Write the effective options to the config file")
}

func main() {
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	o, err := config.Read()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to read config: %s\n", err)
		os.Exit(1)
	}
	applyFlags(&o)

	if logFile {
		err := os.MkdirAll(o.LibDir, os.ModePerm)
		if err == nil {
			err = logging.AddFile(filepath.Join(o.LibDir, "geosnap.log"))
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Cannot write log file: %s\n", err)
		}
	}

	logger, ctx := logging.SubFrom(ctx, "main")
	logger.Info("Starting GeoSnap", zap.String("version", consts.Version), zap.Bool("devmode", consts.IsDevMode()))

	if saveConfig {
		path, err := config.Path()
		if err == nil {
			err = config.Write(path, o)
		}
		if err != nil {
			logger.Fatal("Failed to write config", zap.Error(err))
		}
		logger.Info("Saved config", zap.String("path", path))
	}

	a, err := app.NewApp(ctx, o)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	a.Run(ctx)
}

func applyFlags(o *config.Options) {
	if libDir != "" {
		o.LibDir = libDir
	}
	if port != 0 {
		o.Port = port
	}
	if cacheSize > 0 {
		o.CacheSize = cacheSize
	}
	if language != "" {
		o.Language = language
	}
	if noGeocoding {
		o.Geocoding = false
	}
	if noWatch {
		o.Watch = false
	}
	o.Folders = append(o.Folders, flag.Args()...)
}
