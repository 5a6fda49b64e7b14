// Package lookup implements the postal-code lookup adapter against a
// ViaCEP-compatible API.
package lookup

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"account_server/core/domain"
	"account_server/core/port/out"
	"account_server/pkg/cache"
	"account_server/pkg/httputil"
	"account_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
)

// viaCEPResponse mirrors the upstream JSON shape. A missing "cep" field
// (ViaCEP answers {"erro": true} for unknown codes) means not found.
type viaCEPResponse struct {
	Cep         string `json:"cep"`
	Logradouro  string `json:"logradouro"`
	Complemento string `json:"complemento"`
	Bairro      string `json:"bairro"`
	Localidade  string `json:"localidade"`
	UF          string `json:"uf"`
	Erro        bool   `json:"erro"`
}

// ViaCEPAdapter implements out.ZipcodeProvider
type ViaCEPAdapter struct {
	baseURL  string
	client   *http.Client
	cb       *gobreaker.CircuitBreaker
	cache    *cache.RedisCache
	cacheTTL time.Duration
}

// Config holds ViaCEP adapter configuration.
type Config struct {
	BaseURL  string
	CacheTTL time.Duration
}

// NewViaCEPAdapter creates a new adapter. redisClient may be nil; the cache
// is then skipped entirely.
func NewViaCEPAdapter(cfg *Config, redisClient *redis.Client) *ViaCEPAdapter {
	cbSettings := gobreaker.Settings{
		Name:        "viacep",
		MaxRequests: 3,
		Interval:    60 * time.Second,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.ConsecutiveFailures > 5 ||
				(counts.Requests >= 10 && failureRatio >= 0.6)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("circuit breaker %s: %s -> %s", name, from.String(), to.String())
		},
	}

	var zipCache *cache.RedisCache
	if redisClient != nil {
		zipCache = cache.NewRedisCache(redisClient)
	}

	return &ViaCEPAdapter{
		baseURL:  strings.TrimSuffix(cfg.BaseURL, "/"),
		client:   httputil.NewClient(httputil.ZipcodeClientConfig()),
		cb:       gobreaker.NewCircuitBreaker(cbSettings),
		cache:    zipCache,
		cacheTTL: cfg.CacheTTL,
	}
}

// Lookup resolves a postal code. Not-found upstream answers and transport
// failures both surface as errors; callers treat them as non-fatal.
func (a *ViaCEPAdapter) Lookup(ctx context.Context, zipcode string) (*domain.ZipcodeInfo, error) {
	if cached := a.fromCache(ctx, zipcode); cached != nil {
		return cached, nil
	}

	result, err := a.cb.Execute(func() (interface{}, error) {
		return a.fetch(ctx, zipcode)
	})
	if err != nil {
		return nil, err
	}

	info := result.(*domain.ZipcodeInfo)
	a.toCache(ctx, zipcode, info)
	return info, nil
}

func (a *ViaCEPAdapter) fetch(ctx context.Context, zipcode string) (*domain.ZipcodeInfo, error) {
	url := fmt.Sprintf("%s/ws/%s/json/", a.baseURL, zipcode)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build zipcode request: %w", err)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("zipcode request: %w", err)
	}
	defer resp.Body.Close()

	// ViaCEP answers 400 for malformed codes and 200 with {"erro": true}
	// for well-formed unknown codes.
	if resp.StatusCode == http.StatusBadRequest {
		return nil, out.ErrZipcodeNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("zipcode request failed with status %d", resp.StatusCode)
	}

	var body viaCEPResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode zipcode response: %w", err)
	}

	if body.Erro || body.Cep == "" {
		return nil, out.ErrZipcodeNotFound
	}

	return &domain.ZipcodeInfo{
		Zipcode:      strings.ReplaceAll(body.Cep, "-", ""),
		Street:       body.Logradouro,
		Neighborhood: body.Bairro,
		City:         body.Localidade,
		State:        body.UF,
		Complement:   body.Complemento,
	}, nil
}

func (a *ViaCEPAdapter) cacheKey(zipcode string) string {
	return "zipcode:" + zipcode
}

func (a *ViaCEPAdapter) fromCache(ctx context.Context, zipcode string) *domain.ZipcodeInfo {
	if a.cache == nil {
		return nil
	}

	var info domain.ZipcodeInfo
	hit, err := a.cache.GetJSON(ctx, a.cacheKey(zipcode), &info)
	if err != nil || !hit {
		return nil
	}
	return &info
}

func (a *ViaCEPAdapter) toCache(ctx context.Context, zipcode string, info *domain.ZipcodeInfo) {
	if a.cache == nil {
		return
	}

	if err := a.cache.SetJSON(ctx, a.cacheKey(zipcode), info, a.cacheTTL); err != nil {
		logger.WithError(err).Debug("failed to cache zipcode %s", zipcode)
	}
}

var _ out.ZipcodeProvider = (*ViaCEPAdapter)(nil)
