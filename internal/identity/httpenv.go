package identity

import (
	"fmt"
	"net/http"
	"time"
)

// HTTPEnv implements Env using short-lived HttpOnly cookies.
type HTTPEnv struct {
	scope  string
	secure bool
	w      http.ResponseWriter
	r      *http.Request
}

func NewHTTPEnv(scope string, secure bool, w http.ResponseWriter, r *http.Request) *HTTPEnv {
	return &HTTPEnv{scope: scope, secure: secure, w: w, r: r}
}

func (e *HTTPEnv) Save(key, val string) error {
	http.SetCookie(e.w, &http.Cookie{
		Name:     e.name(key),
		Value:    val,
		Path:     "/",
		MaxAge:   int((10 * time.Minute).Seconds()),
		HttpOnly: true,
		Secure:   e.secure,
		SameSite: http.SameSiteLaxMode,
	})
	return nil
}

func (e *HTTPEnv) Load(key string) (string, error) {
	c, err := e.r.Cookie(e.name(key))
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

func (e *HTTPEnv) Clear(key string) {
	http.SetCookie(e.w, &http.Cookie{
		Name:     e.name(key),
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   e.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (e *HTTPEnv) name(key string) string {
	return fmt.Sprintf("%s-%s", e.scope, key)
}
