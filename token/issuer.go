// Package token mints short-lived signed room-access grants and serves
// them over HTTP.
package token

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/vocalis/voicekit/config"
)

var (
	// ErrMissingIdentity is returned when a request omits the required
	// identity parameter.
	ErrMissingIdentity = errors.New("token: identity is required")
	// ErrMissingCredentials is returned when the server has no API
	// key/secret configured; issuance is disabled, not crashed.
	ErrMissingCredentials = errors.New("token: server credentials are not configured")
)

// Grant is the successful issuance response: the signed token plus the
// realtime server the client should join. Region is included only when one
// applies.
type Grant struct {
	Token  string `json:"token"`
	URL    string `json:"url"`
	Region string `json:"region,omitempty"`
}

// Issuer mints grants. Credentials and defaults are fixed at construction.
type Issuer struct {
	apiKey     string
	apiSecret  string
	serverURL  string
	region     string
	roomPrefix string
	ttl        time.Duration
	now        func() time.Time
}

// NewIssuer builds an Issuer from configuration.
func NewIssuer(cfg *config.Config) *Issuer {
	return &Issuer{
		apiKey:     cfg.Token.APIKey,
		apiSecret:  cfg.Token.APISecret,
		serverURL:  cfg.Token.URL,
		region:     cfg.App.Region,
		roomPrefix: cfg.Room.Prefix,
		ttl:        cfg.Token.TTL,
		now:        time.Now,
	}
}

// Issue mints a grant for identity. An empty room selects a generated
// `<prefix>-<fragment>` name; an empty region falls back to the configured
// default.
func (i *Issuer) Issue(identity, room, region string) (*Grant, error) {
	if identity == "" {
		return nil, ErrMissingIdentity
	}
	if i.apiKey == "" || i.apiSecret == "" {
		return nil, ErrMissingCredentials
	}
	if room == "" {
		room = i.generateRoomName()
	}
	if region == "" {
		region = i.region
	}

	now := i.now()
	claims := jwt.MapClaims{
		"iss": i.apiKey,
		"sub": identity,
		"nbf": now.Unix(),
		"exp": now.Add(i.ttl).Unix(),
		"video": map[string]any{
			"room":     room,
			"roomJoin": true,
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(i.apiSecret))
	if err != nil {
		return nil, fmt.Errorf("token: sign grant: %w", err)
	}

	return &Grant{Token: signed, URL: i.serverURL, Region: region}, nil
}

// generateRoomName produces `<prefix>-<8 hex chars>`, unique enough to keep
// ad-hoc rooms from colliding.
func (i *Issuer) generateRoomName() string {
	fragment := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return i.roomPrefix + "-" + fragment
}
