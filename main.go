package main

import (
	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"

	"facecam/internal/config"
	"facecam/internal/logging"
	ui "facecam/internal/ui"
	processing "facecam/processing/detector"
)

func main() {
	configPath := flag.StringP("config", "c", config.DefaultConfigPath, "path to the JSON config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.WithError(err).Fatal("failed to load config")
	}

	logging.Setup(cfg.Log)

	det, err := processing.NewCascadeDetector(cfg.Cascade)
	if err != nil {
		log.WithError(err).Fatal("failed to load haar cascades")
	}
	defer det.Close()

	app := ui.CreateApp(cfg, det)

	app.Run()
}
