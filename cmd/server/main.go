package main

import (
	"net/http"
	"os"
	"strings"

	"fieldreport/internal/app/server/api"
	"fieldreport/internal/app/server/config"
	"fieldreport/internal/infrastructure/storage/postgres"
	"fieldreport/internal/utils/logger"
)

func main() {
	conf := config.MustLoad()
	log := logger.NewLogger(conf.Env)

	storage, err := postgres.New(conf)
	if err != nil {
		log.Error("storage init failed", "error", err)
		os.Exit(1)
	}
	defer storage.Close()

	mux := api.New(storage, conf, log)

	// Сохраненные фото отдаются как статика по их публичному URL.
	prefix := strings.TrimSuffix(conf.Uploads.BaseURL, "/")
	mux.Handle(prefix+"/*", http.StripPrefix(prefix+"/", http.FileServer(http.Dir(conf.Uploads.Dir))))

	log.Info("server listening", "address", conf.Server.RunAddress)
	if err := http.ListenAndServe(conf.Server.RunAddress, mux); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}
