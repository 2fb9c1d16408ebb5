package main

import (
	"flag"
	"log"
	"net/http"
	"strings"

	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"restruct/internal/config"
	"restruct/internal/index"
	"restruct/internal/move"
	"restruct/internal/ops"
	"restruct/internal/resolve"
	"restruct/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	port := flag.String("port", cfg.Port, "server port")
	root := flag.String("root", cfg.Root, "project root directory")
	flag.Parse()
	if !strings.HasPrefix(*port, ":") {
		*port = ":" + *port
	}
	cfg.Port = *port
	cfg.Root = *root
	if err := cfg.Validate(); err != nil {
		log.Fatal(err)
	}

	store, err := storage.New(cfg.Root)
	if err != nil {
		log.Fatal(err)
	}
	cache, err := index.NewCache(index.Config{
		MaxProjects: cfg.MaxProjects,
		MaxParsed:   cfg.MaxParsed,
		ParseTTL:    cfg.ParseTTL,
	})
	if err != nil {
		log.Fatal(err)
	}

	var resolver resolve.Resolver = resolve.Heuristic{}
	if cfg.Resolver == "table" {
		resolver = resolve.Table{}
	}
	host := ops.Host{
		Store:  store,
		Cache:  cache,
		Opts:   move.Options{InjectFields: cfg.InjectFields, Resolver: resolver},
		Stream: ops.NewHub(),
	}
	reg := ops.NewRegistry()
	ops.RegisterDefaultTools(reg, host)

	mux := ops.BuildMux(reg, host)
	log.Printf("restructd serving %s on %s", store.Root(), cfg.Port)
	log.Fatal(http.ListenAndServe(cfg.Port, h2c.NewHandler(mux, &http2.Server{})))
}
