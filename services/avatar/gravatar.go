package avatarsvc

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"resty.dev/v3"

	"github.com/Umairism/Teachers-Club/core"
	"github.com/Umairism/Teachers-Club/core/user"
)

// Gravatar finds the public avatar registered for an email address on gravatar.com (or a compatible server).
type Gravatar struct {
	client  *resty.Client
	baseURL string
}

var _ user.AvatarResolver = (*Gravatar)(nil)

func NewGravatar(conf core.AvatarsConfig) *Gravatar {
	baseURL := strings.TrimRight(conf.BaseURL, "/")
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         conf.Timeout,
		TLSHandshakeTimeout:   conf.Timeout,
		ResponseHeaderTimeout: conf.Timeout,
	})
	client.SetBaseURL(baseURL).SetTimeout(conf.Timeout)
	return &Gravatar{client: client, baseURL: baseURL}
}

func (g *Gravatar) Close() error {
	return g.client.Close()
}

func avatarPath(email string) string {
	sum := sha256.Sum256([]byte(core.CleanString(email, true /* lower */)))
	return "/avatar/" + hex.EncodeToString(sum[:])
}

// Resolve returns the avatar URL of email, or an empty string if none is registered.
func (g *Gravatar) Resolve(ctx context.Context, email string) (string, error) {
	path := avatarPath(email)
	res, err := g.client.R().
		WithContext(ctx).
		SetQueryParam("d", "404"). // 404 instead of a default image
		Head(path)
	if err != nil {
		return "", errors.Wrap(err, "requesting gravatar")
	}

	switch res.StatusCode() {
	case http.StatusOK:
		return g.baseURL + path, nil
	case http.StatusNotFound:
		return "", nil
	}
	return "", errors.Errorf("gravatar: unexpected status %d", res.StatusCode())
}
