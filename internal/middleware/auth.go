package middleware

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// authTimingFloor is the minimum response time of a rejected request, so
// valid and invalid keys cannot be told apart by latency.
const authTimingFloor = 50 * time.Millisecond

// ClientIDKey is the gin context key holding the authenticated client label.
const ClientIDKey = "client_id"

var errUnknownKey = errors.New("unknown api key")

// KeyLookup resolves an API key to a client label.
type KeyLookup interface {
	ClientByAPIKey(ctx context.Context, apiKey string) (string, error)
}

// StaticKeys is a KeyLookup over a fixed set of keys. Only SHA-256 hashes of
// the keys are kept in memory.
type StaticKeys struct {
	hashes [][sha256.Size]byte
}

// NewStaticKeys builds a StaticKeys from raw keys. Blank entries are ignored.
func NewStaticKeys(keys []string) *StaticKeys {
	s := &StaticKeys{}

	for _, k := range keys {
		if k = strings.TrimSpace(k); k != "" {
			s.hashes = append(s.hashes, sha256.Sum256([]byte(k)))
		}
	}

	return s
}

// Len returns the number of configured keys.
func (s *StaticKeys) Len() int {
	return len(s.hashes)
}

// ClientByAPIKey returns "key-N" for the N-th configured key. Every stored
// hash is compared so the lookup time does not depend on the match position.
func (s *StaticKeys) ClientByAPIKey(_ context.Context, apiKey string) (string, error) {
	h := sha256.Sum256([]byte(apiKey))
	match := -1

	for i := range s.hashes {
		if subtle.ConstantTimeCompare(h[:], s.hashes[i][:]) == 1 && match < 0 {
			match = i
		}
	}

	if match < 0 {
		return "", errUnknownKey
	}

	return "key-" + strconv.Itoa(match+1), nil
}

// truncateKey returns at most the first 4 characters of key followed by "...".
func truncateKey(key string) string {
	if len(key) > 4 {
		return key[:4] + "..."
	}

	return key
}

func keyHash(apiKey string) string {
	h := sha256.Sum256([]byte(apiKey))
	return hex.EncodeToString(h[:])
}

func enforceTimingFloor(start time.Time) {
	if elapsed := time.Since(start); elapsed < authTimingFloor {
		time.Sleep(authTimingFloor - elapsed)
	}
}

// AuthMiddleware authenticates requests via Bearer token. If a BruteForceGuard
// is provided, failed attempts are tracked per key hash.
func AuthMiddleware(lookup KeyLookup, log *logrus.Logger, guards ...*BruteForceGuard) gin.HandlerFunc {
	var guard *BruteForceGuard
	if len(guards) > 0 {
		guard = guards[0]
	}

	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if c.Writer.Status() == http.StatusUnauthorized {
				enforceTimingFloor(start)
			}
		}()

		apiKey := ExtractBearerToken(c)
		if apiKey == "" {
			respondError(c, http.StatusUnauthorized, "unauthorized", "missing or invalid authorization header")
			return
		}

		clientID, err := lookup.ClientByAPIKey(c.Request.Context(), apiKey)
		if err != nil {
			log.WithFields(logrus.Fields{
				"client_ip":  c.ClientIP(),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"request_id": c.GetString(RequestIDKey),
				"key_prefix": truncateKey(apiKey),
			}).Warn("authentication failed: invalid api key")

			if guard != nil {
				guard.RecordFailure(apiKey)
			}

			respondError(c, http.StatusUnauthorized, "unauthorized", "invalid api key")

			return
		}

		if guard != nil {
			guard.ResetKey(apiKey)
		}

		c.Set(ClientIDKey, clientID)
		c.Next()
	}
}

// ExtractBearerToken extracts the API key from the Authorization header. The
// websocket endpoint may pass it as the "token" query parameter instead,
// since browsers cannot set headers on a websocket handshake.
func ExtractBearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return token
	}

	if header == "" && isWebSocketUpgrade(c.Request) {
		return c.Query("token")
	}

	return ""
}

func isWebSocketUpgrade(r *http.Request) bool {
	return strings.EqualFold(r.Header.Get("Upgrade"), "websocket")
}
