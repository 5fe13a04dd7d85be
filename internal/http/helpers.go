package http

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/cinderlabs/cinder-client/internal/errs"
	"github.com/cinderlabs/cinder-client/internal/slots"
)

var (
	errNotFound   = errs.New(errs.KindValidation, "not_found", "not found")
	errBadRequest = errs.New(errs.KindValidation, "bad_request", "bad request")
)

func isLoopbackRequest(r *http.Request) bool {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

func isSafeLocalHost(hostport string) bool {
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	host = strings.ToLower(strings.Trim(host, "[]"))
	return host == "127.0.0.1" || host == "localhost" || host == "::1"
}

func normalizeOrigin(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	u, err := url.Parse(in)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return fmt.Sprintf("%s://%s", strings.ToLower(u.Scheme), strings.ToLower(u.Host))
}

func normalizeOrigins(in []string) []string {
	seen := map[string]struct{}{}
	out := make([]string, 0, len(in))
	for _, o := range in {
		o = normalizeOrigin(o)
		if o == "" {
			continue
		}
		if _, ok := seen[o]; ok {
			continue
		}
		seen[o] = struct{}{}
		out = append(out, o)
	}
	return out
}

// NewSessionToken returns a random token for the session header.
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// statusFor maps the error taxonomy onto HTTP status codes.
func statusFor(err error) int {
	if errs.CodeOf(err) == errNotFound.Code {
		return http.StatusNotFound
	}
	switch errs.KindOf(err) {
	case errs.KindValidation:
		return http.StatusBadRequest
	case errs.KindState:
		return http.StatusConflict
	case errs.KindNetwork:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{
		JSONKeyError: err.Error(),
		JSONKeyCode:  errs.CodeOf(err),
	})
}

func slotParam(c *gin.Context) (int, error) {
	raw := c.Param("index")
	i, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errs.Wrapf(slots.ErrSlotOutOfRange, "slot %q", raw)
	}
	return i, nil
}
