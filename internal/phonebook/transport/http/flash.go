package http

import (
	"fmt"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const flashCookieName = "pb_flash"

// FlashCodec carries a one-shot message across a redirect in a signed
// cookie. The payload is an HS256 JWT so a tampered cookie is simply
// discarded instead of rendered.
type FlashCodec struct {
	secret []byte
}

func NewFlashCodec(secret string) *FlashCodec {
	return &FlashCodec{secret: []byte(secret)}
}

// Set stores msg in the flash cookie.
func (f *FlashCodec) Set(w http.ResponseWriter, msg string) {
	claims := jwt.MapClaims{
		"msg": msg,
		"exp": jwt.NewNumericDate(time.Now().Add(5 * time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(f.secret)
	if err != nil {
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   300,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// Pop returns the flash message, if any, and clears the cookie. Invalid or
// expired tokens yield an empty message.
func (f *FlashCodec) Pop(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(flashCookieName)
	if err != nil {
		return ""
	}
	http.SetCookie(w, &http.Cookie{
		Name:     flashCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	token, err := jwt.Parse(cookie.Value, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %q", t.Method.Alg())
		}
		return f.secret, nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	msg, _ := claims["msg"].(string)
	return msg
}
