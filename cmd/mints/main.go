package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"

	"minter/internal/adapter/repo"
	"minter/internal/domain"
	"minter/internal/infra"
)

func main() {
	var (
		idFlag    string
		limitFlag int
		jsonFlag  bool
	)
	flag.StringVar(&idFlag, "id", "", "mint ID to show (UUID)")
	flag.IntVar(&limitFlag, "limit", 20, "number of recent mints to list")
	flag.BoolVar(&jsonFlag, "json", false, "print JSON instead of a table")
	flag.Parse()

	_ = godotenv.Load()
	dbURL := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dbURL == "" {
		exitWithError(errors.New("DATABASE_URL is required"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := infra.NewDBPool(ctx, &infra.Config{DatabaseURL: dbURL})
	if err != nil {
		exitWithError(fmt.Errorf("failed to connect database: %w", err))
	}
	defer pool.Close()

	logger := infra.NewLogger("cli").With().Str("cmd", "mints").Logger()
	mints := repo.NewMintRepository(infra.NewSQLRunner(pool, logger))

	var records []domain.Mint
	if id := strings.TrimSpace(idFlag); id != "" {
		m, err := mints.GetByID(ctx, id)
		if errors.Is(err, domain.ErrNotFound) {
			exitWithError(fmt.Errorf("mint %s not found", id))
		}
		if err != nil {
			exitWithError(err)
		}
		records = []domain.Mint{*m}
	} else {
		records, err = mints.ListRecent(ctx, limitFlag)
		if err != nil {
			exitWithError(err)
		}
	}

	if err := writeMints(os.Stdout, records, jsonFlag); err != nil {
		exitWithError(err)
	}
}

// writeMints prints records as indented JSON, using the same keys as the
// HTTP API, or as an aligned table.
func writeMints(w io.Writer, records []domain.Mint, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(records)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tCREATED\tTOKEN URI\tTX")
	for _, m := range records {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", m.ID, m.Status, m.CreatedAt.Format(time.RFC3339), m.TokenURI, m.TxHash)
	}
	return tw.Flush()
}

func exitWithError(err error) {
	fmt.Fprintln(os.Stderr, err)
	os.Exit(1)
}
