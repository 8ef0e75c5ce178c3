package main

import (
	"os"

	"flow-ai/chatcore/internal/app"
)

// @title           Flow AI Chat Core API
// @version         1.0
// @description     Streams assistant replies with inline citations and a web search panel.
// @host            localhost:8000
// @BasePath        /api
func main() {
	os.Exit(app.Run())
}
