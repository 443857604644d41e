package handlers

import (
	"net/http"
	"net/url"

	"kalenderium/internal/http/middleware"
)

func redirectWithSuccess(w http.ResponseWriter, r *http.Request, path string, message string) {
	middleware.Redirect(w, r, withQuery(path, "success", message))
}

func redirectWithError(w http.ResponseWriter, r *http.Request, path string, message string) {
	middleware.Redirect(w, r, withQuery(path, "error", message))
}

func withQuery(path, key, message string) string {
	if message == "" {
		return path
	}
	parsed, err := url.Parse(path)
	if err != nil {
		return path + "?" + key + "=" + url.QueryEscape(message)
	}
	q := parsed.Query()
	q.Set(key, message)
	parsed.RawQuery = q.Encode()
	return parsed.String()
}
