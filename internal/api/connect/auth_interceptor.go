// Package connect provides Connect RPC service implementations.
package connect

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/domain/mix"
)

// ClientResolver builds the caller's catalog client from request headers.
type ClientResolver interface {
	ClientFromHeader(ctx context.Context, header http.Header) (catalog.Client, error)
}

// NewAuthInterceptor creates an interceptor that resolves the caller's catalog
// client from request metadata and carries it in the handler context.
func NewAuthInterceptor(resolver ClientResolver) connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			cat, err := resolver.ClientFromHeader(ctx, req.Header())
			if err != nil {
				zlog.Debug().Msgf("request unauthenticated: procedure=%s error=%v", req.Spec().Procedure, err)
				return nil, connect.NewError(connect.CodeUnauthenticated, errors.New(mix.MsgUnauthenticated))
			}

			// Call next handler
			return next(catalog.NewContext(ctx, cat), req)
		}
	}
}

// clientFrom returns the catalog client carried by ctx.
func clientFrom(ctx context.Context) (catalog.Client, error) {
	cat, ok := catalog.FromContext(ctx)
	if !ok {
		return nil, connect.NewError(connect.CodeUnauthenticated, errors.New(mix.MsgUnauthenticated))
	}
	return cat, nil
}
