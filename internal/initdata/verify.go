package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// webAppDataKey is the HMAC key used to derive the per-bot signing key.
// Per the Telegram Web App protocol the constant is the KEY and the bot
// token is the MESSAGE; swapping them produces a different key.
const webAppDataKey = "WebAppData"

// defaultClockSkew bounds how far ahead of server time an auth_date may
// sit before the payload is rejected as suspicious.
const defaultClockSkew = 5 * time.Minute

// Claims is the verified content of a launch payload, minus the hash.
// Constructed only by Verifier.Verify and never mutated afterwards.
type Claims struct {
	// AuthDate is when Telegram signed the payload.
	AuthDate time.Time

	// UserJSON is the raw user claim, still JSON-encoded. Empty for
	// launches without a user context (e.g. inline queries).
	UserJSON string

	QueryID      string
	ChatInstance string
	ChatType     string
	StartParam   string

	values url.Values
}

// Get returns the first value of an arbitrary verified key.
func (c Claims) Get(key string) string {
	return c.values.Get(key)
}

// Verifier checks that a launch payload was genuinely produced by
// Telegram for the configured bot. Stateless and safe for concurrent
// use; pure apart from wall-clock reads.
type Verifier struct {
	botToken []byte
	maxAge   time.Duration
	skew     time.Duration

	// clock is injectable for deterministic tests.
	clock func() time.Time
}

func NewVerifier(botToken string, maxAge time.Duration) *Verifier {
	return &Verifier{
		botToken: []byte(botToken),
		maxAge:   maxAge,
		skew:     defaultClockSkew,
		clock:    time.Now,
	}
}

// Verify parses raw init data, recomputes its signature and checks the
// auth_date freshness window. The returned error is always one of the
// package sentinels (possibly wrapped); cryptographic failures are
// deterministic and must not be retried.
func (v *Verifier) Verify(raw string) (Claims, error) {
	values, err := url.ParseQuery(raw)
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	received := values.Get("hash")
	if received == "" {
		return Claims{}, ErrHashMissing
	}
	values.Del("hash")

	if !hmac.Equal([]byte(v.expectedHash(values)), []byte(received)) {
		return Claims{}, ErrHashMismatch
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return Claims{}, ErrAuthDateMissing
	}

	now := v.clock()
	if now.Unix()-authDate > int64(v.maxAge.Seconds()) {
		return Claims{}, ErrExpired
	}
	if authDate-now.Unix() > int64(v.skew.Seconds()) {
		return Claims{}, ErrFromFuture
	}

	return Claims{
		AuthDate:     time.Unix(authDate, 0).UTC(),
		UserJSON:     values.Get("user"),
		QueryID:      values.Get("query_id"),
		ChatInstance: values.Get("chat_instance"),
		ChatType:     values.Get("chat_type"),
		StartParam:   values.Get("start_param"),
		values:       values,
	}, nil
}

// expectedHash reconstructs the exact message Telegram signed: every
// key=value pair except hash, sorted lexicographically and joined with
// newlines. The sort is load-bearing; insertion order of the query
// string must not influence the result.
func (v *Verifier) expectedHash(values url.Values) string {
	pairs := make([]string, 0, len(values))
	for key, vals := range values {
		pairs = append(pairs, key+"="+vals[0])
	}
	sort.Strings(pairs)
	checkString := strings.Join(pairs, "\n")

	keyMAC := hmac.New(sha256.New, []byte(webAppDataKey))
	keyMAC.Write(v.botToken)
	signingKey := keyMAC.Sum(nil)

	sigMAC := hmac.New(sha256.New, signingKey)
	sigMAC.Write([]byte(checkString))
	return hex.EncodeToString(sigMAC.Sum(nil))
}
