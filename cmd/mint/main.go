package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"minter/internal/app"
	"minter/internal/domain"
	"minter/internal/infra"
	"minter/internal/workflow"
)

func main() {
	var (
		promptFlag string
		envFlag    string
		localeFlag string
	)
	flag.StringVar(&promptFlag, "prompt", "", "text prompt to turn into an NFT (defaults to the remaining arguments)")
	flag.StringVar(&envFlag, "env", ".env", "optional env file to load before reading configuration")
	flag.StringVar(&localeFlag, "locale", "en", "language for progress messages (en or id)")
	flag.Parse()

	prompt := strings.TrimSpace(promptFlag)
	if prompt == "" {
		prompt = strings.TrimSpace(strings.Join(flag.Args(), " "))
	}
	if prompt == "" {
		exitWithError(errors.New("a prompt is required via -prompt or arguments"))
	}

	if envFlag != "" {
		_ = godotenv.Load(envFlag)
	}
	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	logger := infra.NewLogger("cli").With().Str("cmd", "mint").Logger()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	components, err := app.Build(ctx, cfg, logger)
	if err != nil {
		exitWithError(err)
	}
	defer components.Close()

	components.Orchestrator.OnTransition(func(s workflow.Snapshot) {
		if s.State == domain.StateIdle {
			return
		}
		fmt.Println(workflow.Label(s.State, localeFlag))
		if s.State == domain.StateMinting && s.ImageURI != "" {
			fmt.Printf("image: %s\n", s.ImageURI)
		}
	})

	res, err := components.Orchestrator.Submit(ctx, prompt)
	if err != nil {
		exitWithError(err)
	}

	fmt.Printf("id:        %s\n", res.ID)
	fmt.Printf("image:     %s\n", res.Publication.ImageURI)
	fmt.Printf("token uri: %s\n", res.Publication.TokenURI)
	fmt.Printf("tx:        %s\n", res.Receipt.TxHash)
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "mint: %v\n", err)
	os.Exit(1)
}
