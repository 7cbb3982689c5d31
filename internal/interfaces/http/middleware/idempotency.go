package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/medstore/backend/internal/domain/shared"
	"github.com/medstore/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// IdempotencyKeyHeader is the header clients set to make a POST safe to resubmit
const IdempotencyKeyHeader = "Idempotency-Key"

const maxIdempotencyKeyLength = 128

// IdempotencyConfig configures the Idempotency middleware
type IdempotencyConfig struct {
	Store  shared.IdempotencyStore
	TTL    time.Duration
	Logger *zap.Logger
}

// Idempotency rejects a repeated request carrying an Idempotency-Key that was
// already accepted within TTL with 409 DUPLICATE_REQUEST. Requests without the
// header pass through. A request that ends in an error response releases its
// key so the client can retry with the same key.
//
// When the store fails the request is processed anyway; a lost duplicate check
// is better than refusing every sale.
func Idempotency(cfg IdempotencyConfig) gin.HandlerFunc {
	log := cfg.Logger
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Store == nil {
		return func(c *gin.Context) { c.Next() }
	}

	return func(c *gin.Context) {
		key := strings.TrimSpace(c.GetHeader(IdempotencyKeyHeader))
		if key == "" {
			c.Next()
			return
		}
		if len(key) > maxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeValidation, "Idempotency-Key is too long", GetRequestID(c)))
			return
		}

		storeKey := idempotencyStoreKey(c, key)
		ctx := c.Request.Context()

		isNew, err := cfg.Store.MarkProcessed(ctx, storeKey, cfg.TTL)
		if err != nil {
			log.Warn("failed to check idempotency key, processing anyway",
				zap.String("request_id", GetRequestID(c)),
				zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			log.Info("duplicate submission rejected",
				zap.String("request_id", GetRequestID(c)),
				zap.String("path", c.FullPath()))
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest,
				"This request was already submitted",
				GetRequestID(c)))
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusBadRequest {
			// The request context may already be cancelled
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
			defer cancel()
			if err := cfg.Store.Release(releaseCtx, storeKey); err != nil {
				log.Warn("failed to release idempotency key", zap.Error(err))
			}
		}
	}
}

// idempotencyStoreKey scopes a client key to the user and route
func idempotencyStoreKey(c *gin.Context, key string) string {
	return GetJWTUsername(c) + ":" + c.Request.Method + ":" + c.FullPath() + ":" + key
}
