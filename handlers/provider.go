package handlers

import (
	"github.com/arulyan/cfauth/server"
	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(NewUserHandler),
	fx.Invoke(RegisterUserRoutes),
)

func RegisterUserRoutes(srv *server.Server, h *UserHandler) {
	h.RegisterRoutes(srv.Group("/user"))
}
