package middleware

import (
	"net/http"
	"strings"

	"github.com/pkg/errors"
)

const maxFormBytes = 1 << 20

// SanitizeForm caps form bodies, trims every posted value and rejects NUL
// bytes. Password fields are left untouched apart from the NUL check.
func SanitizeForm(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodPost, http.MethodPut, http.MethodPatch:
			if !isFormRequest(r) {
				break
			}
			r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
			if err := r.ParseForm(); err != nil {
				var maxErr *http.MaxBytesError
				if errors.As(err, &maxErr) {
					http.Error(w, "request body too large", http.StatusRequestEntityTooLarge)
					return
				}
				http.Error(w, "malformed form body", http.StatusBadRequest)
				return
			}

			for key, values := range r.PostForm {
				for i, value := range values {
					if strings.ContainsRune(value, '\x00') {
						http.Error(w, "request contains invalid characters", http.StatusBadRequest)
						return
					}
					if key != "password" {
						r.PostForm[key][i] = strings.TrimSpace(value)
					}
				}
			}
			r.Form = r.PostForm
		}

		next.ServeHTTP(w, r)
	})
}

func isFormRequest(r *http.Request) bool {
	ct := r.Header.Get("Content-Type")
	return ct == "" || strings.HasPrefix(ct, "application/x-www-form-urlencoded")
}
