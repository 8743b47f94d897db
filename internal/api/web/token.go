package web

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/oauth2"
)

const nonceSize = 24

// claims is the session cookie payload. Tok is the sealed OAuth token.
type claims struct {
	jwt.RegisteredClaims
	Tok string `json:"tok"`
}

// tokenCodec turns an OAuth token into a signed session value and back.
type tokenCodec struct {
	signKey []byte
	sealKey [32]byte
	maxAge  time.Duration
	now     func() time.Time
}

func newTokenCodec(secret string, maxAge time.Duration) *tokenCodec {
	return &tokenCodec{
		signKey: []byte(secret),
		sealKey: sha256.Sum256([]byte("artimix-session-seal:" + secret)),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// encode seals tok for userID into an HS256 JWT.
func (c *tokenCodec) encode(userID string, tok *oauth2.Token) (string, error) {
	sealed, err := c.seal(tok)
	if err != nil {
		return "", err
	}

	now := c.now()
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.maxAge)),
		},
		Tok: sealed,
	})
	signed, err := t.SignedString(c.signKey)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign session")
	}
	return signed, nil
}

// decode verifies value and returns the user ID and OAuth token it carries.
func (c *tokenCodec) decode(value string) (string, *oauth2.Token, error) {
	var cl claims
	_, err := jwt.ParseWithClaims(value, &cl, func(*jwt.Token) (any, error) {
		return c.signKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(c.now), jwt.WithExpirationRequired())
	if err != nil {
		return "", nil, errors.Wrap(err, "invalid session")
	}

	tok, err := c.open(cl.Tok)
	if err != nil {
		return "", nil, err
	}
	return cl.Subject, tok, nil
}

func (c *tokenCodec) seal(tok *oauth2.Token) (string, error) {
	plain, err := json.Marshal(tok)
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal token")
	}

	var nonce [nonceSize]byte
	if _, err := rand.Read(nonce[:]); err != nil {
		return "", errors.Wrap(err, "failed to generate nonce")
	}
	box := secretbox.Seal(nonce[:], plain, &nonce, &c.sealKey)
	return base64.RawURLEncoding.EncodeToString(box), nil
}

func (c *tokenCodec) open(sealed string) (*oauth2.Token, error) {
	box, err := base64.RawURLEncoding.DecodeString(sealed)
	if err != nil {
		return nil, errors.Wrap(err, "malformed sealed token")
	}
	if len(box) < nonceSize+secretbox.Overhead {
		return nil, errors.New("sealed token too short")
	}

	var nonce [nonceSize]byte
	copy(nonce[:], box[:nonceSize])
	plain, ok := secretbox.Open(nil, box[nonceSize:], &nonce, &c.sealKey)
	if !ok {
		return nil, errors.New("sealed token failed authentication")
	}

	var tok oauth2.Token
	if err := json.Unmarshal(plain, &tok); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal token")
	}
	return &tok, nil
}
