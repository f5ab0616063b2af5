package middleware

import "net/http"

// Chain wraps the handler with the full middleware stack.
// Order: CORS → RequestID → Logging → Metrics → MaxBytes → mux
func Chain(handler http.Handler, allowedOrigins []string, maxBodyBytes int64) http.Handler {
	h := handler
	h = MaxBytes(maxBodyBytes)(h)
	h = Metrics(h)
	h = Logging(h)
	h = RequestID(h)
	h = CORS(allowedOrigins)(h)
	return h
}
