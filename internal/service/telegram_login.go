package service

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"
)

var ErrInvalidTelegramLogin = errors.New("invalid telegram login data")

// telegramLoginMaxAge bounds replay of a captured login payload
const telegramLoginMaxAge = time.Hour

// VerifyTelegramLogin checks a Telegram Login Widget payload (id, first_name,
// username, auth_date, hash, ...) and returns the Telegram user id, which is
// also the chat id of the private chat with the bot.
func VerifyTelegramLogin(fields url.Values, botToken string, now time.Time) (int64, error) {
	hash := fields.Get("hash")
	if hash == "" || botToken == "" {
		return 0, ErrInvalidTelegramLogin
	}

	var dataCheck []string
	for k, v := range fields {
		if k == "hash" {
			continue
		}
		dataCheck = append(dataCheck, k+"="+strings.Join(v, ""))
	}
	sort.Strings(dataCheck)

	secret := sha256.Sum256([]byte(botToken))
	h := hmac.New(sha256.New, secret[:])
	h.Write([]byte(strings.Join(dataCheck, "\n")))

	provided, err := hex.DecodeString(hash)
	if err != nil || !hmac.Equal(h.Sum(nil), provided) {
		return 0, ErrInvalidTelegramLogin
	}

	authDate, err := strconv.ParseInt(fields.Get("auth_date"), 10, 64)
	if err != nil {
		return 0, ErrInvalidTelegramLogin
	}
	age := now.Sub(time.Unix(authDate, 0))
	// small clock skew is tolerated
	if age > telegramLoginMaxAge || age < -5*time.Minute {
		return 0, ErrInvalidTelegramLogin
	}

	id, err := strconv.ParseInt(fields.Get("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, ErrInvalidTelegramLogin
	}
	return id, nil
}
