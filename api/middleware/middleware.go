/*
Copyright 2024 Blnk Finance Authors.

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package middleware

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v7"
	"github.com/didip/tollbooth/v7/limiter"
	"github.com/gin-gonic/gin"

	"github.com/blnkfinance/teller/config"
)

// KeyHeader carries the server secret when server.secure is enabled.
const KeyHeader = "X-Teller-Key"

// defaultLimiterTTL is used when no cleanup interval is configured.
const defaultLimiterTTL = 3 * time.Hour

// RateLimitMiddleware limits each client address to the configured rate.
// Without both a rate and a burst it lets every request through.
func RateLimitMiddleware(conf *config.Configuration) gin.HandlerFunc {
	rl := conf.RateLimit
	if rl.RequestsPerSecond == nil || rl.Burst == nil {
		return func(c *gin.Context) { c.Next() }
	}

	ttl := defaultLimiterTTL
	if rl.CleanupIntervalSec != nil && *rl.CleanupIntervalSec > 0 {
		ttl = time.Duration(*rl.CleanupIntervalSec) * time.Second
	}
	lmt := tollbooth.NewLimiter(*rl.RequestsPerSecond, &limiter.ExpirableOptions{DefaultExpirationTTL: ttl})
	lmt.SetBurst(*rl.Burst)

	return func(c *gin.Context) {
		if limited := tollbooth.LimitByRequest(lmt, c.Writer, c.Request); limited != nil {
			c.AbortWithStatusJSON(limited.StatusCode, gin.H{"error": limited.Message})
			return
		}
		c.Next()
	}
}

// SecretKeyAuthMiddleware requires KeyHeader to match secret on every route
// except the health check. An empty secret rejects everything.
func SecretKeyAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/" {
			c.Next()
			return
		}

		switch presented := c.GetHeader(KeyHeader); {
		case secret == "":
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "Secret key is not configured"})
		case presented == "":
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Missing secret key"})
		case subtle.ConstantTimeCompare([]byte(secret), []byte(presented)) != 1:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid secret key"})
		default:
			c.Next()
		}
	}
}
