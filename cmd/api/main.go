package main

import (
	"os"

	"github.com/mesconnect/backend/internal/pkg/logger"
	"github.com/mesconnect/backend/internal/server"
)

// @title MES Connect API
// @version 1.0
// @description Social interaction backend for the MES campus community.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.
func main() {
	srv, err := server.NewServer()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	if err := srv.Run(); err != nil {
		logger.Error().Err(err).Msg("Server exited with error")
		os.Exit(1)
	}
}
