package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"restruct/internal/index"
	"restruct/internal/ops"
	"restruct/internal/storage"
)

var servePort string

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the operation surface over HTTP",
	Long: `Starts the tool server: POST /tools/{name} dispatches operations,
GET /tools lists them and /ws/reports streams batch reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if servePort != "" {
			if !strings.HasPrefix(servePort, ":") {
				servePort = ":" + servePort
			}
			cfg.Port = servePort
		}
		store, err := storage.New(cfg.Root)
		if err != nil {
			return err
		}
		cache, err := index.NewCache(index.Config{
			MaxProjects: cfg.MaxProjects,
			MaxParsed:   cfg.MaxParsed,
			ParseTTL:    cfg.ParseTTL,
		})
		if err != nil {
			return err
		}
		host := ops.Host{
			Store:  store,
			Cache:  cache,
			Opts:   engineOptions(cfg),
			Stream: ops.NewHub(),
		}
		reg := ops.NewRegistry()
		ops.RegisterDefaultTools(reg, host)

		mux := ops.BuildMux(reg, host)
		log.Printf("restruct serving %s on %s", store.Root(), cfg.Port)
		return http.ListenAndServe(cfg.Port, h2c.NewHandler(mux, &http2.Server{}))
	},
}

func init() {
	serveCmd.Flags().StringVar(&servePort, "port", "", "Listen address, \":8080\" style")
	rootCmd.AddCommand(serveCmd)
}
