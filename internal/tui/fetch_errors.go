package tui

import (
	"context"
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"syscall"

	"github.com/studiowebux/studentcrud/internal/api"
)

// describeFetchError turns a list failure into a message that says what to
// check. Typed errors are matched first, then the error text.
func describeFetchError(err error) string {
	if err == nil {
		return ""
	}

	var statusErr *api.StatusError
	if errors.As(err, &statusErr) {
		return describeStatus(statusErr.Status)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return "Request timeout - the server took too long, try increasing api.timeout"
	}
	if errors.Is(err, context.Canceled) {
		return "Request cancelled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return "DNS resolution failed - verify the host in api.base_url"
	}

	var unknownAuthority x509.UnknownAuthorityError
	if errors.As(err, &unknownAuthority) {
		return "TLS certificate signed by unknown authority - set api.tls.ca_file"
	}
	var invalidCert x509.CertificateInvalidError
	if errors.As(err, &invalidCert) {
		return "TLS certificate is invalid: " + invalidCert.Error()
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "Request timeout - the server took too long, try increasing api.timeout"
	}

	switch {
	case errors.Is(err, syscall.ECONNREFUSED):
		return "Connection refused - check that the server is running and api.base_url is correct"
	case errors.Is(err, syscall.ECONNRESET):
		return "Connection reset by server"
	case errors.Is(err, syscall.ENETUNREACH), errors.Is(err, syscall.EHOSTUNREACH):
		return "Network unreachable - check the network connection"
	}

	return describeErrorText(err.Error())
}

func describeStatus(status int) string {
	switch {
	case status == http.StatusNotFound:
		return "Collection not found (404) - check api.base_url and api.resource"
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Sprintf("Access denied (%d)", status)
	case status == http.StatusTooManyRequests:
		return "Rate limited (429) - wait a moment and refresh"
	case status >= 500:
		return fmt.Sprintf("Server error (%d) - try again later", status)
	default:
		return fmt.Sprintf("Unexpected response (%d)", status)
	}
}

// describeErrorText matches errors that lost their type on the way up
func describeErrorText(errStr string) string {
	errLower := strings.ToLower(errStr)

	switch {
	case strings.Contains(errLower, "connection refused"):
		return "Connection refused - check that the server is running and api.base_url is correct"
	case strings.Contains(errLower, "no such host"):
		return "DNS resolution failed - verify the host in api.base_url"
	case strings.Contains(errLower, "deadline exceeded"), strings.Contains(errLower, "timeout"):
		return "Request timeout - the server took too long, try increasing api.timeout"
	case strings.Contains(errLower, "x509"), strings.Contains(errLower, "certificate"):
		return "TLS error - check api.tls settings: " + errStr
	case strings.Contains(errLower, "failed to decode response"):
		return "The server did not return a student list - check api.resource"
	}

	return errStr
}
