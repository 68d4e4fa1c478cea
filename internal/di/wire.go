//go:build wireinject
// +build wireinject

package di

import (
	"context"

	"StockScope/internal/app"
	"StockScope/internal/config"

	"github.com/google/wire"
)

// InitializeApp wires up all dependencies and returns the application.
// The returned cleanup closes the cache and snapshot store.
func InitializeApp(ctx context.Context, cfg *config.Config) (*app.App, func(), error) {
	wire.Build(ProviderSet)
	return nil, nil, nil
}
