package telegram

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

// WebAppUser is the authenticated Telegram user carried inside init_data.
type WebAppUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	FirstName    string `json:"first_name"`
	LanguageCode string `json:"language_code"`
	IsPremium    bool   `json:"is_premium"`
}

var (
	ErrInvalidInitData = errors.New("invalid init data")
	ErrStaleInitData   = errors.New("stale init data")
)

// maxAuthAge bounds how old an accepted auth_date may be; replayed init_data
// older than this is rejected.
const maxAuthAge = time.Hour

// allowedSkew tolerates client clocks slightly ahead of ours.
const allowedSkew = 5 * time.Minute

// Verify checks the Telegram WebApp init_data HMAC against the bot token and
// rejects stale auth_date values. It returns the parsed query values so the
// caller can extract the user without re-parsing.
func Verify(initData, botToken string) (url.Values, error) {
	values, err := url.ParseQuery(initData)
	if err != nil {
		return nil, ErrInvalidInitData
	}

	provided, err := hex.DecodeString(values.Get("hash"))
	if err != nil || len(provided) == 0 {
		return nil, ErrInvalidInitData
	}
	values.Del("hash")

	if !hmac.Equal(computeHash(values, botToken), provided) {
		return nil, ErrInvalidInitData
	}

	authDate, err := strconv.ParseInt(values.Get("auth_date"), 10, 64)
	if err != nil {
		return nil, ErrInvalidInitData
	}
	now := time.Now().Unix()
	if now-authDate > int64(maxAuthAge.Seconds()) || authDate-now > int64(allowedSkew.Seconds()) {
		return nil, ErrStaleInitData
	}

	return values, nil
}

// computeHash implements the Telegram data-check-string scheme: sorted
// key=value lines joined by newlines, keyed by SHA256(botToken).
func computeHash(values url.Values, botToken string) []byte {
	lines := make([]string, 0, len(values))
	for k, v := range values {
		lines = append(lines, k+"="+strings.Join(v, ""))
	}
	sort.Strings(lines)

	secret := sha256.Sum256([]byte(botToken))
	h := hmac.New(sha256.New, secret[:])
	h.Write([]byte(strings.Join(lines, "\n")))
	return h.Sum(nil)
}

// ParseUser extracts the user object from verified init_data values.
func ParseUser(values url.Values) (*WebAppUser, error) {
	raw := values.Get("user")
	if raw == "" {
		return nil, ErrInvalidInitData
	}
	var user WebAppUser
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, ErrInvalidInitData
	}
	if user.ID == 0 {
		return nil, ErrInvalidInitData
	}
	return &user, nil
}
