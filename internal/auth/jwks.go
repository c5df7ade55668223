package auth

import (
	"context"
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	defaultJWKSTTL = 15 * time.Minute
	// 未知kid触发刷新的最小间隔
	jwksMinRefresh = time.Minute
)

// jwksDocument JWKS接口返回的公钥集合
type jwksDocument struct {
	Keys []struct {
		Kty string `json:"kty"`
		Kid string `json:"kid"`
		Alg string `json:"alg"`
		Use string `json:"use"`
		N   string `json:"n"`
		E   string `json:"e"`
	} `json:"keys"`
}

// JWKSCache 按kid缓存RSA公钥
type JWKSCache struct {
	uri    string
	client *http.Client
	ttl    time.Duration
	now    func() time.Time

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	fetched time.Time
}

// NewJWKSCache 创建公钥缓存，ttl为0时使用默认值
func NewJWKSCache(uri string, client *http.Client, ttl time.Duration) *JWKSCache {
	if ttl == 0 {
		ttl = defaultJWKSTTL
	}
	return &JWKSCache{
		uri:    uri,
		client: defaultClient(client),
		ttl:    ttl,
		now:    time.Now,
		keys:   make(map[string]*rsa.PublicKey),
	}
}

// GetKey 获取公钥，缓存过期或kid未知时刷新；刷新失败时继续使用已缓存的公钥
func (c *JWKSCache) GetKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	c.mu.RLock()
	key, ok := c.keys[kid]
	age := c.now().Sub(c.fetched)
	c.mu.RUnlock()

	if ok && age <= c.ttl {
		return key, nil
	}

	keys, err := c.refresh(ctx, ok)
	if err != nil {
		if ok {
			return key, nil
		}
		return nil, err
	}

	key, ok = keys[kid]
	if !ok {
		return nil, fmt.Errorf("%w: unknown key id %q", ErrIdentityRejected, kid)
	}
	return key, nil
}

func (c *JWKSCache) refresh(ctx context.Context, expiredOnly bool) (map[string]*rsa.PublicKey, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	// 其他goroutine可能已经刷新过
	age := c.now().Sub(c.fetched)
	if len(c.keys) > 0 && (age < jwksMinRefresh || (expiredOnly && age <= c.ttl)) {
		return c.keys, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.uri, http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: JWKS status %d", ErrProviderUnavailable, resp.StatusCode)
	}

	var doc jwksDocument
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: decode JWKS: %v", ErrProviderUnavailable, err)
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		nBytes, err := decodeSegment(k.N)
		if err != nil {
			continue
		}
		eBytes, err := decodeSegment(k.E)
		if err != nil {
			continue
		}
		e := 0
		for _, b := range eBytes {
			e = e<<8 + int(b)
		}
		keys[k.Kid] = &rsa.PublicKey{N: new(big.Int).SetBytes(nBytes), E: e}
	}

	c.keys = keys
	c.fetched = c.now()
	return c.keys, nil
}

// decodeSegment base64url解码，兼容缺少填充的情况
func decodeSegment(s string) ([]byte, error) {
	switch len(s) % 4 {
	case 2:
		s += "=="
	case 3:
		s += "="
	}
	return base64.URLEncoding.DecodeString(s)
}
