package services

import (
	"context"
	"crypto/rsa"
	"crypto/subtle"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/sync/singleflight"

	"github.com/yungbote/todo-backend/internal/domain/auth"
	"github.com/yungbote/todo-backend/internal/platform/logger"
)

const (
	firebaseIssuerPrefix = "https://securetoken.google.com/"
	// Firebase ID tokens are signed by this service account; its keys are served as a JWK set.
	FirebaseJWKSURL = "https://www.googleapis.com/service_accounts/v1/jwk/securetoken@system.gserviceaccount.com"
)

type FirebaseVerifierConfig struct {
	ProjectID  string
	JWKSURL    string
	HTTPClient *http.Client
	Leeway     time.Duration
	// Now overrides the clock for time-claim checks.
	Now func() time.Time
}

type firebaseVerifier struct {
	log       *logger.Logger
	projectID string
	issuer    string
	leeway    time.Duration
	now       func() time.Time
	jwks      *jwksCache
}

// NewFirebaseVerifier verifies Firebase ID tokens: RS256, kid resolved against
// Google's JWK set, iss = securetoken.google.com/<project>, aud = project.
func NewFirebaseVerifier(cfg FirebaseVerifierConfig, log *logger.Logger) (Verifier, error) {
	projectID := strings.TrimSpace(cfg.ProjectID)
	if projectID == "" {
		return nil, fmt.Errorf("FIREBASE_PROJECT_ID is required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	url := strings.TrimSpace(cfg.JWKSURL)
	if url == "" {
		url = FirebaseJWKSURL
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	cache := newJWKSCache(httpClient, now)
	cache.setURL(url)
	return &firebaseVerifier{
		log:       log.With("service", "FirebaseVerifier"),
		projectID: projectID,
		issuer:    firebaseIssuerPrefix + projectID,
		leeway:    cfg.Leeway,
		now:       now,
		jwks:      cache,
	}, nil
}

func (v *firebaseVerifier) Verify(ctx context.Context, token string) (*auth.Claim, error) {
	if strings.TrimSpace(token) == "" {
		return nil, fmt.Errorf("id token is empty")
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithoutClaimsValidation(),
	)
	claims := jwt.MapClaims{}
	tok, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		kid, _ := t.Header["kid"].(string)
		if strings.TrimSpace(kid) == "" {
			return nil, fmt.Errorf("missing kid")
		}
		return v.jwks.getKey(ctx, kid)
	})
	if err != nil {
		v.log.Debug("firebase token rejected", "error", err)
		return nil, fmt.Errorf("invalid id token: %w", err)
	}
	if tok == nil || !tok.Valid {
		return nil, fmt.Errorf("invalid id token")
	}

	if err := validateTimeClaims(claims, v.now(), v.leeway); err != nil {
		return nil, err
	}
	iss, _ := claims["iss"].(string)
	if !constantTimeEq(iss, v.issuer) {
		return nil, fmt.Errorf("issuer mismatch: %q", iss)
	}
	if !audContains(claims["aud"], v.projectID) {
		return nil, fmt.Errorf("audience mismatch")
	}
	sub, _ := claims["sub"].(string)
	if strings.TrimSpace(sub) == "" {
		return nil, fmt.Errorf("missing sub")
	}
	if len(sub) > 128 {
		return nil, fmt.Errorf("sub too long")
	}

	out := &auth.Claim{
		Subject:  sub,
		Issuer:   iss,
		Provider: "firebase",
	}
	out.Email, _ = claims["email"].(string)
	out.Name, _ = claims["name"].(string)
	if t, err := parseNumericTime(claims["iat"]); err == nil {
		out.IssuedAt = t
	}
	if t, err := parseNumericTime(claims["exp"]); err == nil {
		out.ExpiresAt = t
	}
	return out, nil
}

func validateTimeClaims(claims jwt.MapClaims, now time.Time, leeway time.Duration) error {
	expAny, ok := claims["exp"]
	if !ok {
		return fmt.Errorf("missing exp")
	}
	exp, err := parseNumericTime(expAny)
	if err != nil {
		return fmt.Errorf("invalid exp: %w", err)
	}
	if now.After(exp.Add(leeway)) {
		return fmt.Errorf("token expired")
	}

	if nbfAny, ok := claims["nbf"]; ok {
		nbf, err := parseNumericTime(nbfAny)
		if err != nil {
			return fmt.Errorf("invalid nbf: %w", err)
		}
		if now.Add(leeway).Before(nbf) {
			return fmt.Errorf("token not valid yet")
		}
	}

	// Firebase requires iat in the past and auth_time in the past.
	for _, key := range []string{"iat", "auth_time"} {
		raw, ok := claims[key]
		if !ok {
			continue
		}
		ts, err := parseNumericTime(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", key, err)
		}
		if ts.After(now.Add(leeway)) {
			return fmt.Errorf("%s is in the future", key)
		}
	}
	return nil
}

func parseNumericTime(v any) (time.Time, error) {
	var sec int64
	switch x := v.(type) {
	case float64:
		sec = int64(x)
	case int64:
		sec = x
	case int:
		sec = int64(x)
	case json.Number:
		n, err := x.Int64()
		if err != nil {
			return time.Time{}, err
		}
		sec = n
	case string:
		n, err := strconv.ParseInt(x, 10, 64)
		if err != nil {
			return time.Time{}, err
		}
		sec = n
	default:
		return time.Time{}, fmt.Errorf("unexpected type %T", v)
	}
	if sec <= 0 {
		return time.Time{}, fmt.Errorf("non-positive numeric date")
	}
	return time.Unix(sec, 0).UTC(), nil
}

func constantTimeEq(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func audContains(aud any, required string) bool {
	switch v := aud.(type) {
	case string:
		return v == required
	case []any:
		for _, it := range v {
			if s, ok := it.(string); ok && s == required {
				return true
			}
		}
	case []string:
		for _, s := range v {
			if s == required {
				return true
			}
		}
	}
	return false
}

// ----- JWKS cache -----

// jwksMinRefresh bounds how often a kid miss may refetch the key set.
const jwksMinRefresh = time.Minute

type jwksCache struct {
	httpClient *http.Client
	now        func() time.Time
	sf         singleflight.Group

	mu          sync.RWMutex
	jwksURL     string
	keys        map[string]*rsa.PublicKey
	fetchedAt   time.Time
	attemptedAt time.Time
	ttl         time.Duration
}

func newJWKSCache(httpClient *http.Client, now func() time.Time) *jwksCache {
	return &jwksCache{
		httpClient: httpClient,
		now:        now,
		keys:       map[string]*rsa.PublicKey{},
		ttl:        6 * time.Hour,
	}
}

func (j *jwksCache) setURL(url string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jwksURL = url
}

type jwkSet struct {
	Keys []jwk `json:"keys"`
}

type jwk struct {
	Kty string `json:"kty"`
	Kid string `json:"kid"`
	Use string `json:"use"`
	Alg string `json:"alg"`
	N   string `json:"n"`
	E   string `json:"e"`
}

func (j *jwksCache) getKey(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	now := j.now()
	j.mu.RLock()
	key := j.keys[kid]
	stale := now.Sub(j.fetchedAt) > j.ttl
	throttled := now.Sub(j.attemptedAt) < jwksMinRefresh
	url := j.jwksURL
	j.mu.RUnlock()

	if key != nil && (!stale || throttled) {
		return key, nil
	}
	if throttled {
		return nil, fmt.Errorf("kid not found in jwks: %s", kid)
	}
	if strings.TrimSpace(url) == "" {
		return nil, errors.New("jwks url not set")
	}

	_, err, _ := j.sf.Do(url, func() (any, error) {
		return nil, j.refresh(ctx, url)
	})
	j.mu.RLock()
	defer j.mu.RUnlock()
	// keep serving a key we already had if the refresh fails
	if key = j.keys[kid]; key != nil {
		return key, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fmt.Errorf("kid not found in jwks: %s", kid)
}

func (j *jwksCache) refresh(ctx context.Context, url string) error {
	j.mu.Lock()
	j.attemptedAt = j.now()
	j.mu.Unlock()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	res, err := j.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return fmt.Errorf("jwks fetch failed: %s", res.Status)
	}

	var set jwkSet
	if err := json.NewDecoder(res.Body).Decode(&set); err != nil {
		return err
	}

	next := map[string]*rsa.PublicKey{}
	for _, k := range set.Keys {
		if strings.TrimSpace(k.Kid) == "" || k.Kty != "RSA" {
			continue
		}
		if pub, err := rsaFromModExp(k.N, k.E); err == nil {
			next[k.Kid] = pub
		}
	}
	if len(next) == 0 {
		return fmt.Errorf("jwks contained no usable keys")
	}

	j.mu.Lock()
	j.keys = next
	j.fetchedAt = j.now()
	j.mu.Unlock()
	return nil
}

func rsaFromModExp(nB64, eB64 string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(nB64)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(eB64)
	if err != nil {
		return nil, err
	}
	n := new(big.Int).SetBytes(nb)
	e := 0
	for _, b := range eb {
		e = e<<8 + int(b)
	}
	if e == 0 {
		return nil, fmt.Errorf("invalid exponent")
	}
	return &rsa.PublicKey{N: n, E: e}, nil
}
