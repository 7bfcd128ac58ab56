// Package cache stores upload results for status polling and invalidates
// agency summary caches after a run changes the underlying data.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/redis/go-redis/v9"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Config holds Redis connection configuration
type Config struct {
	Host      string
	Port      int
	Password  string
	DB        int
	ResultTTL time.Duration
}

// Client wraps the Redis client with the pipeline's cache operations.
type Client struct {
	rdb       *redis.Client
	logger    ectologger.Logger
	resultTTL time.Duration
}

// NewClient creates a new Redis-backed cache client
func NewClient(cfg Config, logger ectologger.Logger) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)

	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}

	logger.Infof("Connected to Redis at %s", addr)

	resultTTL := cfg.ResultTTL
	if resultTTL <= 0 {
		resultTTL = 24 * time.Hour
	}

	return &Client{
		rdb:       rdb,
		logger:    logger,
		resultTTL: resultTTL,
	}, nil
}

// Close closes the Redis connection
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Ping checks if Redis is reachable
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func uploadResultKey(agencyID, uploadID string) string {
	return fmt.Sprintf("clover:%s:uploads:%s", agencyID, uploadID)
}

func summaryKeys(agencyID string) []string {
	return []string{
		fmt.Sprintf("clover:%s:households:summary", agencyID),
		fmt.Sprintf("clover:%s:sales:summary", agencyID),
	}
}

// SetUploadResult stores a run result for status polling.
func (c *Client) SetUploadResult(ctx context.Context, uctx models.UploadContext, result *models.UploadResult) error {
	ctx, span := tracing.StartSpan(ctx, "cache.Client.SetUploadResult")
	defer span.End()

	payload, err := json.Marshal(result)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, uploadResultKey(uctx.AgencyID, uctx.UploadID), payload, c.resultTTL).Err()
}

// GetUploadResult returns a stored run result, or nil when unknown or expired.
func (c *Client) GetUploadResult(ctx context.Context, agencyID, uploadID string) (*models.UploadResult, error) {
	ctx, span := tracing.StartSpan(ctx, "cache.Client.GetUploadResult")
	defer span.End()

	payload, err := c.rdb.Get(ctx, uploadResultKey(agencyID, uploadID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		c.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{"agency_id": agencyID, "upload_id": uploadID}).Error("Failed to read upload result from cache")
		return nil, err
	}

	var result models.UploadResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// InvalidateAgency drops the agency's derived summary caches. Called after a
// run so dashboards rebuild from fresh data.
func (c *Client) InvalidateAgency(ctx context.Context, agencyID string) error {
	ctx, span := tracing.StartSpan(ctx, "cache.Client.InvalidateAgency")
	defer span.End()

	return c.rdb.Del(ctx, summaryKeys(agencyID)...).Err()
}
