package main

import (
	"context"
	"os"

	"github.com/yigit/devcamper/internal/pkg/logger"
	"github.com/yigit/devcamper/internal/server"
)

// @title DevCamper API
// @version 1.0
// @description Backend API for the DevCamper bootcamp directory
// @termsOfService http://swagger.io/terms/

// @contact.name API Support
// @contact.email support@devcamper.io

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:5000
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Bearer access token

func main() {
	srv, err := server.NewServer()
	if err != nil {
		// setup functions already logged the details
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// blocks until shutdown
	if err := srv.Run(context.Background()); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
