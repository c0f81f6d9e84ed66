package inbound

import (
	"context"

	"github.com/wiratama/otplogin/internal/login/usecase"
	"github.com/wiratama/otplogin/internal/pkg/router"
)

type uc interface {
	Authenticate(ctx context.Context, in usecase.AuthenticateInput) (*usecase.PageOutput, error)
}

func RegisterHTTPEndpoint(r *router.Router, uc uc) {
	end := &HTTPEndpoint{uc: uc}

	r.POST("/api/v1/login/authenticate", end.Authenticate)
}
