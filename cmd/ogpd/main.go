package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/ogp-project/ogp/internal/logging"
	"github.com/ogp-project/ogp/internal/server"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to TOML config file")
		listenAddr = flag.String("listen", "", "listen address override")
		adminAddr  = flag.String("admin", "", "admin listen address override")
	)
	flag.Parse()

	fmt.Println("OGP Server starting...")

	logging.ConfigureRuntime()
	log.Logger = log.With().Str("app", "ogpd").Logger()

	cfg := server.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadServerConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ogpd: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *listenAddr != "" {
		cfg.ListenAddr = *listenAddr
	}
	if *adminAddr != "" {
		cfg.AdminListenAddr = *adminAddr
	}

	srv := server.New(cfg, nil)
	fmt.Printf("Protocol version: %d\n", srv.Config().Session.Version)
	fmt.Println("OGP Server ready")

	if err := srv.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "ogpd: %v\n", err)
		os.Exit(1)
	}
}
