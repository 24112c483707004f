package middleware

import (
	"context"
	"net/http"

	"github.com/mssola/useragent"
)

// ClientDevice summarizes the requesting client, parsed from User-Agent.
// It is attached to the request context and surfaces in audit metadata.
type ClientDevice struct {
	Browser  string
	OS       string
	Mobile   bool
	Bot      bool
	RawAgent string
}

type deviceKey struct{}

// Device parses the User-Agent header and injects a ClientDevice into the
// request context. Registered before handlers that emit audit records.
func Device(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := r.Header.Get("User-Agent")
		if raw == "" {
			next.ServeHTTP(w, r)
			return
		}

		ua := useragent.New(raw)
		name, version := ua.Browser()
		dev := ClientDevice{
			Browser:  name + " " + version,
			OS:       ua.OS(),
			Mobile:   ua.Mobile(),
			Bot:      ua.Bot(),
			RawAgent: raw,
		}

		ctx := context.WithValue(r.Context(), deviceKey{}, dev)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetDevice retrieves the parsed client device from the context, if present.
func GetDevice(ctx context.Context) (ClientDevice, bool) {
	dev, ok := ctx.Value(deviceKey{}).(ClientDevice)
	return dev, ok
}
