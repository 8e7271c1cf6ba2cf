package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/onepos/storefront/internal/adapters/memory"
	"github.com/onepos/storefront/internal/commerce"
	domaincatalog "github.com/onepos/storefront/internal/domain/catalog"
)

func runBackendPing(ctx *commandContext, args []string) error {
	fs := flag.NewFlagSet("backend-ping", flag.ContinueOnError)
	count := fs.Int("count", 1, "number of probe requests")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *count < 1 {
		*count = 1
	}

	// The probe hits an unauthenticated endpoint, so an empty in-memory
	// credential store is enough.
	client, err := commerce.NewClient(commerce.ClientConfig{
		BaseURL: ctx.Config.Backend.BaseURL,
		Creds:   memory.NewCredentialStore(),
		Timeout: ctx.Config.Backend.Timeout,
		Logger:  ctx.Logger,
	})
	if err != nil {
		return fmt.Errorf("backend client: %w", err)
	}

	probeID := uuid.NewString()
	for i := 0; i < *count; i++ {
		start := time.Now()
		stores, pingErr := client.Stores(ctx.Ctx, domaincatalog.StoreQuery{})
		elapsed := time.Since(start)
		if pingErr != nil {
			ctx.Logger.ErrorContext(ctx.Ctx, "backend unreachable",
				"probe_id", probeID,
				"attempt", i+1,
				"elapsed", elapsed,
				"error", pingErr)
			return pingErr
		}

		ctx.Logger.InfoContext(ctx.Ctx, "backend reachable",
			"probe_id", probeID,
			"attempt", i+1,
			"elapsed", elapsed,
			"stores", len(stores))
	}

	return nil
}
