package main

import (
	"github.com/agoralab/agora/backend/internal/server"
	"github.com/agoralab/agora/backend/internal/util"
	"github.com/agoralab/agora/backend/pkg/logger"
	"github.com/agoralab/agora/backend/pkg/logger/console"
)

func main() {
	util.LoadEnv()

	debug := util.GetEnvBool("DEBUG", false)

	consoleLogger := console.NewConsoleLogger(console.ConsoleLoggerParams{
		Debug: debug,
	})
	logger.Init(consoleLogger)

	server.Init()
}
