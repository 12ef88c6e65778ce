package main

import (
	"os"

	"github.com/admitflow/admitflow/internal/pkg/logger"
	"github.com/admitflow/admitflow/internal/server"
)

// @title AdmitFlow API
// @version 1.0
// @description Application lifecycle and review workflow engine for admissions management

// @contact.name API Support
// @contact.email support@admitflow.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey Bearer
// @in header
// @name Authorization
// @description JWT token with Bearer prefix

func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server execution failed")
		os.Exit(1)
	}
}
