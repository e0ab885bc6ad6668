package codeforces

import (
	"github.com/arulyan/cfauth/config"
	"github.com/arulyan/cfauth/services/logging"
	"go.uber.org/fx"
)

func ProvideClient(cfg *config.Config, logger *logging.Service) *Client {
	return NewClient(&cfg.Codeforces, logger)
}

var Module = fx.Options(
	fx.Provide(ProvideClient),
	fx.Provide(func(c *Client) ProfileOracle { return c }),
)
