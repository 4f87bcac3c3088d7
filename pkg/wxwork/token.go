package wxwork

import (
	"context"
	"fmt"
	"time"

	"github.com/bft-labs/wxnotify/internal/api"
	"github.com/bft-labs/wxnotify/pkg/cache"
	"github.com/bft-labs/wxnotify/pkg/log"
)

type tokenSource interface {
	GetToken(ctx context.Context, corpID, secret string) (api.TokenResponse, error)
}

// TokenProvider resolves access tokens, serving them from the credential
// cache until they expire.
//
// Concurrent misses for the same credentials may each fetch a token; both
// tokens are valid and the last one stored wins.
type TokenProvider struct {
	cache  *cache.Cache
	source tokenSource
	ttl    time.Duration
	now    func() time.Time
	logger log.Logger
}

// Resolve returns an access token for auth. A cached, unexpired token is
// returned without a remote call. Missing auth fields yield ErrConfig; a
// failed or rejected token request yields ErrAuth. Resolve never retries.
func (p *TokenProvider) Resolve(ctx context.Context, auth Auth) (string, error) {
	if err := auth.Validate(); err != nil {
		return "", err
	}

	key := CacheKey(auth)
	if token, ok := p.cache.Get(key); ok {
		return token, nil
	}

	p.logger.Debug("fetching access token",
		log.String("corp_id", auth.CorpID),
		log.Int("agent_id", auth.AgentID),
	)

	resp, err := p.source.GetToken(ctx, auth.CorpID, auth.Secret)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuth, err)
	}
	if !resp.OK() {
		return "", fmt.Errorf("%w: %w", ErrAuth, &RemoteError{Op: "gettoken", Code: resp.Code(), Msg: resp.ErrMsg})
	}
	if resp.AccessToken == "" {
		return "", fmt.Errorf("%w: response has no access_token", ErrAuth)
	}

	if _, err := p.cache.Set(key, resp.AccessToken, p.now().Add(p.ttl)); err != nil {
		return "", fmt.Errorf("%w: cache token: %w", ErrAuth, err)
	}
	return resp.AccessToken, nil
}

// Invalidate drops the cached token for auth, so the next Resolve fetches
// a fresh one.
func (p *TokenProvider) Invalidate(auth Auth) {
	p.cache.Delete(CacheKey(auth))
}
