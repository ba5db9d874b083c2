package nakama

import (
	"context"
	"database/sql"
	"fmt"

	"battleship/internal/app"
	"battleship/internal/config"

	"github.com/heroiclabs/nakama-common/runtime"
)

// InitModule wires RPCs for Nakama runtime.
func InitModule(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, initializer runtime.Initializer) error {
	env, _ := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string)

	path := env[EnvConfigPath]
	if path == "" {
		path = config.DefaultPath
	}
	if err := config.LoadGameConfig(path); err != nil {
		logger.Warn("InitModule: Could not load game config, using defaults: %v", err)
	}

	svc, err := app.NewService(NewNakamaGameStore(nk), config.GetGameConfig(), nil)
	if err != nil {
		return fmt.Errorf("failed to build battleship service: %w", err)
	}

	secret := env[EnvAdminSecret]
	if secret == "" {
		logger.Warn("InitModule: %s is not set, admin tokens are disabled.", EnvAdminSecret)
	}
	tokens := app.NewAdminTokens(secret, AdminTokenIssuer)
	auth := app.NewAuthorizer(tokens, app.ParseAdminList(env[EnvAdminUserIDs]))

	if err := RegisterRPCs(initializer, newRPCHandlers(svc, auth, tokens, NewNakamaChannelNotifier(nk))); err != nil {
		return err
	}

	logger.Info("Battleship Go module loaded.")
	return nil
}
