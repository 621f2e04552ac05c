package initdata

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strings"
	"testing"
	"time"
)

const testBotToken = "botsecret"

// signPayload computes the hash Telegram would attach for the given
// pairs, independently of the production code path.
func signPayload(botToken string, pairs map[string]string) string {
	lines := make([]string, 0, len(pairs))
	for k, v := range pairs {
		lines = append(lines, k+"="+v)
	}
	sort.Strings(lines)

	keyMAC := hmac.New(sha256.New, []byte("WebAppData"))
	keyMAC.Write([]byte(botToken))
	secret := keyMAC.Sum(nil)

	mac := hmac.New(sha256.New, secret)
	mac.Write([]byte(strings.Join(lines, "\n")))
	return hex.EncodeToString(mac.Sum(nil))
}

func encodePayload(pairs map[string]string, hash string) string {
	v := url.Values{}
	for k, val := range pairs {
		v.Set(k, val)
	}
	v.Set("hash", hash)
	return v.Encode()
}

func newTestVerifier(now int64) *Verifier {
	v := NewVerifier(testBotToken, 24*time.Hour)
	v.clock = func() time.Time { return time.Unix(now, 0).UTC() }
	return v
}

func TestVerify_ValidPayload(t *testing.T) {
	pairs := map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"first_name":"Ann"}`,
	}
	raw := encodePayload(pairs, signPayload(testBotToken, pairs))

	claims, err := newTestVerifier(1700000100).Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if got := claims.AuthDate.Unix(); got != 1700000000 {
		t.Fatalf("auth_date = %d, want 1700000000", got)
	}
	if claims.UserJSON != `{"id":42,"first_name":"Ann"}` {
		t.Fatalf("unexpected user claim: %q", claims.UserJSON)
	}
}

func TestVerify_StalePayloadExpires(t *testing.T) {
	pairs := map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"first_name":"Ann"}`,
	}
	raw := encodePayload(pairs, signPayload(testBotToken, pairs))

	// More than 24h after signing; the signature itself is still valid.
	_, err := newTestVerifier(1700090000).Verify(raw)
	if !errors.Is(err, ErrExpired) {
		t.Fatalf("err = %v, want ErrExpired", err)
	}
}

func TestVerify_FutureAuthDateRejected(t *testing.T) {
	pairs := map[string]string{
		"auth_date": "1700010000",
		"user":      `{"id":42}`,
	}
	raw := encodePayload(pairs, signPayload(testBotToken, pairs))

	_, err := newTestVerifier(1700000000).Verify(raw)
	if !errors.Is(err, ErrFromFuture) {
		t.Fatalf("err = %v, want ErrFromFuture", err)
	}
}

func TestVerify_FutureWithinSkewAccepted(t *testing.T) {
	pairs := map[string]string{
		"auth_date": "1700000100",
		"user":      `{"id":42}`,
	}
	raw := encodePayload(pairs, signPayload(testBotToken, pairs))

	if _, err := newTestVerifier(1700000000).Verify(raw); err != nil {
		t.Fatalf("verify: %v", err)
	}
}

func TestVerify_MissingHash(t *testing.T) {
	_, err := newTestVerifier(1700000100).Verify("auth_date=1700000000")
	if !errors.Is(err, ErrHashMissing) {
		t.Fatalf("err = %v, want ErrHashMissing", err)
	}
}

func TestVerify_MissingAuthDate(t *testing.T) {
	pairs := map[string]string{"user": `{"id":42}`}
	raw := encodePayload(pairs, signPayload(testBotToken, pairs))

	_, err := newTestVerifier(1700000100).Verify(raw)
	if !errors.Is(err, ErrAuthDateMissing) {
		t.Fatalf("err = %v, want ErrAuthDateMissing", err)
	}
}

func TestVerify_TamperedHashFailsAtEveryPosition(t *testing.T) {
	pairs := map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"first_name":"Ann"}`,
	}
	hash := signPayload(testBotToken, pairs)
	v := newTestVerifier(1700000100)

	for i := 0; i < len(hash); i++ {
		flipped := []byte(hash)
		if flipped[i] == 'a' {
			flipped[i] = 'b'
		} else {
			flipped[i] = 'a'
		}
		raw := encodePayload(pairs, string(flipped))
		if _, err := v.Verify(raw); !errors.Is(err, ErrHashMismatch) {
			t.Fatalf("position %d: err = %v, want ErrHashMismatch", i, err)
		}
	}
}

func TestVerify_TamperedValueFails(t *testing.T) {
	pairs := map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42,"first_name":"Ann"}`,
	}
	hash := signPayload(testBotToken, pairs)
	pairs["user"] = `{"id":43,"first_name":"Ann"}`
	raw := encodePayload(pairs, hash)

	_, err := newTestVerifier(1700000100).Verify(raw)
	if !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("err = %v, want ErrHashMismatch", err)
	}
}

func TestVerify_WrongSecretFails(t *testing.T) {
	pairs := map[string]string{
		"auth_date": "1700000000",
		"user":      `{"id":42}`,
	}
	raw := encodePayload(pairs, signPayload("other-bot-token", pairs))

	_, err := newTestVerifier(1700000100).Verify(raw)
	if !errors.Is(err, ErrHashMismatch) {
		t.Fatalf("err = %v, want ErrHashMismatch", err)
	}
}

func TestVerify_PairOrderDoesNotMatter(t *testing.T) {
	pairs := map[string]string{
		"auth_date":   "1700000000",
		"query_id":    "AAH1",
		"user":        `{"id":42,"first_name":"Ann"}`,
		"start_param": "ref_7",
	}
	hash := signPayload(testBotToken, pairs)
	v := newTestVerifier(1700000100)

	orders := [][]string{
		{"auth_date", "query_id", "user", "start_param"},
		{"start_param", "user", "query_id", "auth_date"},
		{"user", "auth_date", "start_param", "query_id"},
	}
	for _, order := range orders {
		var sb strings.Builder
		for _, k := range order {
			sb.WriteString(url.QueryEscape(k))
			sb.WriteString("=")
			sb.WriteString(url.QueryEscape(pairs[k]))
			sb.WriteString("&")
		}
		sb.WriteString("hash=")
		sb.WriteString(hash)

		claims, err := v.Verify(sb.String())
		if err != nil {
			t.Fatalf("order %v: verify: %v", order, err)
		}
		if claims.StartParam != "ref_7" || claims.QueryID != "AAH1" {
			t.Fatalf("order %v: unexpected claims: %+v", order, claims)
		}
	}
}

func TestVerify_ExtraKeysParticipateInSignature(t *testing.T) {
	pairs := map[string]string{
		"auth_date":     "1700000000",
		"user":          `{"id":42}`,
		"chat_instance": "-3788475317572404878",
		"chat_type":     "sender",
	}
	raw := encodePayload(pairs, signPayload(testBotToken, pairs))

	claims, err := newTestVerifier(1700000100).Verify(raw)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if claims.ChatInstance != "-3788475317572404878" || claims.ChatType != "sender" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
