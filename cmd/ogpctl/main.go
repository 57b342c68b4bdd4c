package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/ogp-project/ogp/internal/client"
	"github.com/ogp-project/ogp/internal/logging"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to TOML config file")
		addr       = flag.String("addr", "", "server address override")
	)
	flag.Parse()

	fmt.Println("OGP Client starting...")

	logging.ConfigureRuntime()
	log.Logger = log.With().Str("app", "ogpctl").Logger()

	cfg := client.DefaultConfig()
	if *configPath != "" {
		loaded, err := loadClientConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "ogpctl: %v\n", err)
			os.Exit(1)
		}
		cfg = loaded
	}
	if *addr != "" {
		cfg.Address = *addr
	}
	cfg.Session = cfg.Session.WithDefaults()

	cli, err := client.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "ogpctl: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Protocol version: %d\n", cfg.Session.Version)
	fmt.Println("OGP Client ready")

	payloads := make([][]byte, 0, len(flag.Args()))
	for _, arg := range flag.Args() {
		payloads = append(payloads, []byte(arg))
	}
	if len(payloads) == 0 {
		payloads = [][]byte{[]byte("ping")}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	responses, err := cli.Exchange(ctx, payloads)
	for _, resp := range responses {
		fmt.Printf("%s\n", resp)
	}
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.Address).Msg("exchange failed")
		fmt.Fprintf(os.Stderr, "ogpctl: %v\n", err)
		os.Exit(1)
	}
}
