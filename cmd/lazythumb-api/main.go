package main

import (
	"flag"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/lazythumb/lazythumb/internal/config"
	"github.com/lazythumb/lazythumb/internal/logger"
	"github.com/lazythumb/lazythumb/internal/router"
	"github.com/lazythumb/lazythumb/internal/setup"
)

func main() {
	var configFolder string
	flag.StringVar(&configFolder, "config_folder", "config", "path to folder with configs")
	flag.Parse()

	cfg := config.MustLoad(configFolder)
	logger.Initialize(cfg.Public.Logging.Level, cfg.Public.Logging.Json)

	deps, err := setup.SetupDependencies(cfg, setup.Options{})
	if err != nil {
		log.Fatal(err)
	}
	defer deps.Storage.Cleanup()

	r := router.New(deps)

	httpPort := os.Getenv("PORT")
	if httpPort == "" {
		httpPort = strconv.Itoa(cfg.Public.Http.Port)
	}

	logger.Log.Info("server started", "port", httpPort, "sizes", deps.Catalog.Len())
	log.Fatal(http.ListenAndServe(":"+httpPort, r))
}
