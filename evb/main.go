package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	evb "github.com/sesps/evb_go/pkg"
)

var (
	logger        Logger
	configuration evb.Configuration
)

func init() {
	opts := &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}
	handlerStdOut := NewHandler(os.Stdout, opts)
	handlerStdErr := slog.NewJSONHandler(os.Stderr, opts)
	logger = Logger{
		InfoLog:  slog.New(handlerStdOut),
		ErrorLog: slog.New(handlerStdErr),
	}
}

func main() {
	configFilename := flag.String("config", "", "Configuration file path")
	flag.Parse()

	var err error
	configuration, err = evb.LoadConfiguration(*configFilename)
	if err != nil {
		message := fmt.Errorf("error reading configuration file: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}
	evb.SetLogger(logger)

	if configuration.Verbosity > 0 {
		message := fmt.Sprintf("Reading configuration file: %s", *configFilename)
		logger.Info(message, "main")
		printConfiguration(configuration, logger)
	}

	params := configuration.ProcessParams()

	// The channel and shift maps come from the run database unless the
	// configuration carries them inline.
	if !configuration.NoDB {
		dbConn, err := evb.ConnectToDatabase(configuration.User, configuration.Passwd,
			configuration.Host, configuration.DBName)
		if err != nil {
			message := fmt.Errorf("error connecting to database: %w", err)
			logger.Error(message.Error())
			os.Exit(1)
		}
		defer dbConn.Close()

		boards, err := evb.ChannelMapFromDB(dbConn, configuration.RunMin)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		shifts, err := evb.ShiftsFromDB(dbConn, configuration.RunMin)
		if err != nil {
			logger.Error(err.Error())
			os.Exit(1)
		}
		params.ChannelMap = boards
		params.ShiftMap = shifts
	}

	progress := &evb.Progress{}
	done := make(chan struct{})
	go watchProgress(progress, done)

	start := time.Now()
	err = evb.ProcessRuns(params, progress)
	close(done)
	if err != nil {
		message := fmt.Errorf("error processing runs: %w", err)
		logger.Error(message.Error())
		os.Exit(1)
	}

	duration := time.Since(start)
	logger.Info(fmt.Sprintf("Total time: %d ms", duration.Milliseconds()), "main")
}

func watchProgress(progress *evb.Progress, done <-chan struct{}) {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			logger.Info(fmt.Sprintf("progress: %3.0f%%", progress.Fraction()*100.0), "main")
		}
	}
}

func printConfiguration(config evb.Configuration, logger Logger) {
	logger.Info(fmt.Sprintf("Archive dir: %s", config.ArchiveDir), "config")
	logger.Info(fmt.Sprintf("Unpack dir: %s", config.UnpackDir), "config")
	logger.Info(fmt.Sprintf("Output dir: %s", config.OutputDir), "config")
	logger.Info(fmt.Sprintf("Mass file: %s", config.MassFile), "config")
	logger.Info(fmt.Sprintf("Coincidence window (ns): %f", config.CoincidenceWindow), "config")
	logger.Info(fmt.Sprintf("Run min: %d", config.RunMin), "config")
	logger.Info(fmt.Sprintf("Run max: %d", config.RunMax), "config")
	logger.Info(fmt.Sprintf("Boards mapped: %d", len(config.ChannelMap)), "config")
	logger.Info(fmt.Sprintf("Shift entries: %d", len(config.ShiftMap)), "config")
	logger.Info(fmt.Sprintf("Scaler entries: %d", len(config.ScalerList)), "config")
	logger.Info(fmt.Sprintf("No DB: %t", config.NoDB), "config")
	logger.Info(fmt.Sprintf("Host: %s", config.Host), "config")
	logger.Info(fmt.Sprintf("DB name: %s", config.DBName), "config")
	logger.Info(fmt.Sprintf("Verbosity: %d", config.Verbosity), "config")
}
