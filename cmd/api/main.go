package main

import (
	"fieldops/internal/adapter/http/routes"

	_ "github.com/joho/godotenv/autoload"
)

// @title           Field Operations API
// @version         1.0
// @description     Assignment lifecycle and offline synchronization service backed by DynamoDB.

// @host localhost:8080

// @BasePath  /v1

func main() {
	routes.Run()
}
