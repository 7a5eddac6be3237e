package main

import (
	"github.com/collegebuddy/api/app"
	"github.com/collegebuddy/api/utils/logger"
	"go.uber.org/zap"
)

func main() {
	// setup and run app
	if err := app.SetupAndRunServer(); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
