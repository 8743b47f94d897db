package connect

import (
	"connectrpc.com/connect"
	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/osa030/artimix/internal/app/catalog"
	"github.com/osa030/artimix/internal/domain/mix"
)

// toConnectError maps a mix pipeline error to a connect error whose message is
// the user-facing text.
func toConnectError(procedure string, err error) error {
	var cerr *connect.Error
	if errors.As(err, &cerr) {
		return cerr
	}

	code := errorCode(err)
	msg := mix.UserMessage(err)
	if code == connect.CodeInternal || code == connect.CodeUnavailable {
		zlog.Error().Msgf("request failed: procedure=%s code=%s error=%+v", procedure, code, err)
	} else {
		zlog.Debug().Msgf("request rejected: procedure=%s code=%s message=%q", procedure, code, msg)
	}
	return connect.NewError(code, errors.New(msg))
}

func errorCode(err error) connect.Code {
	switch {
	case errors.Is(err, mix.ErrValidation), errors.Is(err, mix.ErrNoTracks):
		return connect.CodeInvalidArgument
	case errors.Is(err, mix.ErrNotFound), errors.Is(err, mix.ErrCorrupt):
		return connect.CodeNotFound
	case catalog.IsTransient(err):
		return connect.CodeUnavailable
	default:
		return connect.CodeInternal
	}
}
