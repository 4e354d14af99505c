package web

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
)

// ensureToken returns configured, or a random token when it is empty.
func ensureToken(configured string) (token string, generated bool, err error) {
	token = strings.TrimSpace(configured)
	if token != "" {
		return token, false, nil
	}

	buf := make([]byte, 18)
	if _, err := rand.Read(buf); err != nil {
		return "", false, fmt.Errorf("failed to generate web token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), true, nil
}

func isAuthorized(r *http.Request, expectedToken string) bool {
	if expectedToken == "" {
		return true
	}
	got := requestToken(r)
	if got == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(expectedToken), []byte(got)) == 1
}

// requestToken reads the token from the query string or a bearer header.
func requestToken(r *http.Request) string {
	if q := strings.TrimSpace(r.URL.Query().Get("token")); q != "" {
		return q
	}

	auth := strings.TrimSpace(r.Header.Get("Authorization"))
	if auth == "" {
		return ""
	}
	const bearer = "bearer "
	if len(auth) >= len(bearer) && strings.EqualFold(auth[:len(bearer)], bearer) {
		return strings.TrimSpace(auth[len(bearer):])
	}
	return ""
}

func accessURL(addr, token string) string {
	return "http://" + advertisedHost(addr) + "/?token=" + url.QueryEscape(token)
}

// advertisedHost turns a listen address into one a local browser can open.
func advertisedHost(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		if strings.HasPrefix(addr, ":") {
			return "127.0.0.1" + addr
		}
		if !strings.Contains(addr, ":") {
			return "127.0.0.1:" + addr
		}
		return addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return net.JoinHostPort(host, port)
}
