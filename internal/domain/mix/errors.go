package mix

import (
	"github.com/cockroachdb/errors"
)

// Error kinds. Match them with errors.Is; the user-facing text is carried as a hint.
var (
	ErrValidation = errors.New("validation failed")
	ErrNoTracks   = errors.New("no tracks selected")
	ErrNotFound   = errors.New("preview not found")
	ErrCorrupt    = errors.New("preview record is corrupt")
	ErrCommit     = errors.New("playlist commit failed")
)

// Messages shown to users.
const (
	MsgNoArtists       = "Add at least one artist."
	MsgInvalidWeight   = "Invalid percentage."
	MsgWeightRange     = "Percentages must be 1-100."
	MsgUnresolved      = "Could not resolve any of the requested artists."
	MsgNoTracks        = "No tracks selected. Try different artists/percentages."
	MsgNotFound        = "Preview data not found. It may have expired or been removed."
	MsgMissingHandle   = "Missing preview identifier. Please try again."
	MsgSuggestFailed   = "Could not fetch suggestions"
	MsgCommitPrefix    = "Playlist creation error: "
	MsgProfileFailed   = "Could not get user info: "
	MsgLibraryFailed   = "Could not fetch liked songs: "
	MsgArtistsFailed   = "Could not fetch liked artists: "
	MsgUnauthenticated = "User not authenticated"
)

// NewValidationError returns an ErrValidation carrying msg as its user-facing text.
func NewValidationError(msg string) error {
	return errors.WithHint(errors.Wrap(ErrValidation, msg), msg)
}

// NewNoTracksError returns the synthesis failure for an empty mix.
func NewNoTracksError() error {
	return errors.WithHint(errors.WithStack(ErrNoTracks), MsgNoTracks)
}

// NewNotFoundError returns a not-found error for the given handle.
func NewNotFoundError(handle string) error {
	return errors.WithHint(errors.Wrapf(ErrNotFound, "handle %q", handle), MsgNotFound)
}

// NewCorruptError marks cause as a structurally invalid record.
func NewCorruptError(handle string, cause error) error {
	return errors.Mark(errors.Wrapf(cause, "preview %q failed validation", handle), ErrCorrupt)
}

// NewCommitError wraps a remote failure during playlist commit.
func NewCommitError(prefix string, cause error) error {
	err := errors.Mark(errors.Wrap(cause, "commit"), ErrCommit)
	return errors.WithHint(err, prefix+errors.UnwrapAll(cause).Error())
}

// NewUpstreamError wraps a catalog failure, with prefix and the root cause as its user-facing text.
func NewUpstreamError(prefix string, cause error) error {
	return errors.WithHint(errors.WithStack(cause), prefix+errors.UnwrapAll(cause).Error())
}

// UserMessage returns the human-readable text for err.
// Errors without an attached hint fall back to a message for their kind.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	if hints := errors.GetAllHints(err); len(hints) > 0 {
		return hints[0]
	}
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrCorrupt):
		return MsgNotFound
	case errors.Is(err, ErrNoTracks):
		return MsgNoTracks
	case errors.Is(err, ErrCommit):
		return MsgCommitPrefix + errors.UnwrapAll(err).Error()
	default:
		return err.Error()
	}
}
