package main

import (
	"flag"
	"log"

	"github.com/iamvkosarev/docchat/config"
	"github.com/iamvkosarev/docchat/internal/app"
	"github.com/joho/godotenv"
)

func main() {
	cfgPath := flag.String("config", "", "path to yaml config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Println("no .env file loaded:", err)
	}

	cfg, err := config.LoadConfig(*cfgPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := app.Run(cfg); err != nil {
		log.Fatalf("app stopped with error: %v", err)
	}
}
