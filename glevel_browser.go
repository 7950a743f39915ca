package main

import (
	"flag"
	"log"
	"os"

	"github.com/mogaika/glevel_browser/config"
	"github.com/mogaika/glevel_browser/status"
	"github.com/mogaika/glevel_browser/vfs"
	"github.com/mogaika/glevel_browser/web"
)

func main() {
	var configPath, addr, levels, assetsDir, encoding string
	flag.StringVar(&configPath, "config", "", "Path to yaml config")
	flag.StringVar(&addr, "i", "", "Address of server, overrides config")
	flag.StringVar(&levels, "levels", "", "Path to folder with level files, overrides config")
	flag.StringVar(&assetsDir, "assets", "", "Path to folder with textures and sounds, overrides config")
	flag.StringVar(&encoding, "encoding", "", "Level text encoding, overrides config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatal(err)
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if levels != "" {
		cfg.LevelsDir = levels
	}
	if assetsDir != "" {
		cfg.AssetsDir = assetsDir
	}
	if encoding != "" {
		cfg.Encoding = encoding
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}
	if err := cfg.Apply(); err != nil {
		log.Fatal(err)
	}

	for _, dir := range []string{cfg.LevelsDir, cfg.AssetsDir} {
		if st, err := os.Stat(dir); err != nil || !st.IsDir() {
			log.Fatalf("'%s' is not a directory: %v", dir, err)
		}
	}

	s := web.NewServer(vfs.NewDirectoryDriver(cfg.LevelsDir), vfs.NewDirectoryDriver(cfg.AssetsDir), status.Default(), cfg.Workers)

	if cfg.WatchEnabled() {
		w, err := s.NewWatcher()
		if err != nil {
			log.Fatal(err)
		}
		defer w.Close()
		go s.Watch(w)
		log.Printf("Watching '%s' for level changes", cfg.LevelsDir)
	}

	if err := web.StartServer(cfg.Addr, s); err != nil {
		log.Fatal(err)
	}
}
