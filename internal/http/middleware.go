package http

import (
	"context"
	"net/http"
	"regexp"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"usersvc/internal/repository"
)

const txKey = "usersvc.tx"

var numericID = regexp.MustCompile(`^[0-9]+$`)

// Transaction opens one transactional scope per request and guarantees it is
// finalized exactly once: handlers commit on success, the deferred rollback
// covers error paths, panics and client disconnects. Finalization uses a
// background context so a cancelled request cannot leave the scope dangling.
func Transaction(store repository.UserStore, logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tx, err := store.Begin(c.Request.Context())
		if err != nil {
			logger.WithError(err).Error("begin transaction")
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}
		defer func() {
			if err := tx.Rollback(context.Background()); err != nil {
				logger.WithError(err).Warn("rollback transaction")
			}
		}()

		c.Set(txKey, tx)
		c.Next()
	}
}

func txFromContext(c *gin.Context) repository.UserTx {
	v, _ := c.Get(txKey)
	tx, _ := v.(repository.UserTx)
	return tx
}

// requireNumericID rejects non-numeric id segments at routing level with the
// same 404 a missing resource would produce.
func requireNumericID() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !numericID.MatchString(c.Param("id")) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "user not found"})
		}
	}
}

// RequestLogger tags every request with an id and logs its outcome.
func RequestLogger(logger *logrus.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		requestID := uuid.NewString()
		c.Writer.Header().Set("X-Request-ID", requestID)

		c.Next()

		logger.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"duration":   time.Since(start).String(),
		}).Info("request handled")
	}
}
