package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	redisadapter "github.com/onepos/storefront/internal/adapters/redis"
	"github.com/onepos/storefront/internal/bootstrap"
	"github.com/onepos/storefront/internal/ports"
)

// credentialKeys is the full keyspace the session manager writes.
var credentialKeys = []string{
	ports.KeyCustomerToken,
	ports.KeyGuestToken,
	ports.KeyGuestID,
	ports.KeyTenantSlug,
	ports.KeyTenantID,
}

// secretKeys hold bearer credentials; their values are masked on output.
var secretKeys = map[string]bool{
	ports.KeyCustomerToken: true,
	ports.KeyGuestToken:    true,
}

func runCredsShow(ctx *commandContext, _ []string) error {
	store, closeFn, err := connectCredentialStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	if err := writef(w, "KEY\tVALUE\n"); err != nil {
		return err
	}

	for _, key := range credentialKeys {
		value, getErr := store.Get(ctx.Ctx, key)
		switch {
		case errors.Is(getErr, ports.ErrCredentialNotFound):
			value = "(not set)"
		case getErr != nil:
			return fmt.Errorf("read %s: %w", key, getErr)
		case secretKeys[key]:
			value = mask(value)
		}
		if err := writef(w, "%s\t%s\n", key, value); err != nil {
			return err
		}
	}

	return w.Flush()
}

func runCredsClear(ctx *commandContext, _ []string) error {
	store, closeFn, err := connectCredentialStore(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	for _, key := range credentialKeys {
		if delErr := store.Delete(ctx.Ctx, key); delErr != nil {
			return fmt.Errorf("delete %s: %w", key, delErr)
		}
	}

	ctx.Logger.InfoContext(ctx.Ctx, "credentials cleared", "keys", len(credentialKeys))
	return nil
}

func connectCredentialStore(ctx *commandContext) (ports.CredentialStore, func(), error) {
	client, err := bootstrap.ConnectRedis(bootstrap.RedisDeps{
		Config: ctx.Config.Redis,
		Logger: ctx.Logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("connect redis: %w", err)
	}

	closeFn := func() {
		if cerr := client.Close(); cerr != nil {
			ctx.Logger.ErrorContext(ctx.Ctx, "close redis failed", "error", cerr)
		}
	}
	return redisadapter.NewCredentialStore(client), closeFn, nil
}

// mask keeps enough of a token to correlate with backend logs without
// printing the whole credential.
func mask(value string) string {
	const keep = 6
	if len(value) <= keep {
		return "******"
	}
	return value[:keep] + "…"
}
