package portalauth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// defaultRefreshWindow is how far ahead of expiry a token is refreshed
// proactively.
const defaultRefreshWindow = 5 * time.Minute

// expiryFromSeconds converts the service's expiresIn (seconds from now) to
// the epoch-millis bookkeeping used everywhere else.
func expiryFromSeconds(now time.Time, expiresIn int64) int64 {
	return now.Add(time.Duration(expiresIn) * time.Second).UnixMilli()
}

// tokenExpiry recovers the expiry embedded in an access token without
// verifying its signature. The client treats tokens as opaque bearer
// credentials, this is only a fallback for responses that omit expiresIn.
func tokenExpiry(raw string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(raw, claims); err != nil {
		return time.Time{}, false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}

// resolveExpiry prefers expiresIn and falls back to the token's own exp
// claim. A zero return means the expiry is unknown and the token must be
// treated as already expired.
func resolveExpiry(now time.Time, accessToken string, expiresIn int64) int64 {
	if expiresIn > 0 {
		return expiryFromSeconds(now, expiresIn)
	}
	if exp, ok := tokenExpiry(accessToken); ok {
		return exp.UnixMilli()
	}
	return 0
}
