package cli

import (
	"crypto/x509"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
)

// Exit codes.
const (
	ExitOK                      = 0
	ExitError                   = 1
	ExitDriveConnectionRequired = 2
	ExitRedirectFailed          = 3
)

// DriveConnectionRequiredError indicates the command needs a Google Drive
// connection that is not in place yet.
type DriveConnectionRequiredError struct {
	// Pending is true when a redirect is already in progress for this session.
	Pending bool
}

func (e *DriveConnectionRequiredError) Error() string {
	if e.Pending {
		return `Google Drive connection required

A connection is already in progress. Finish it in your browser, or start over:
  teamdocs drive connect --retry`
	}
	return `Google Drive connection required

Complete the authorization in your browser, then run the command again.
To check the connection:
  teamdocs drive status`
}

// Is allows errors.Is() to work with wrapped errors.
func (e *DriveConnectionRequiredError) Is(target error) bool {
	_, ok := target.(*DriveConnectionRequiredError)
	return ok
}

// RedirectFailedError indicates the hand-off to the provider or the
// callback failed.
type RedirectFailedError struct {
	Reason error
}

func (e *RedirectFailedError) Error() string {
	return fmt.Sprintf(`Failed to connect to Google Drive: %v

To try again, run:
  teamdocs drive connect --retry`, e.Reason)
}

// Unwrap returns the underlying error.
func (e *RedirectFailedError) Unwrap() error {
	return e.Reason
}

// Is allows errors.Is() to work with wrapped errors.
func (e *RedirectFailedError) Is(target error) bool {
	_, ok := target.(*RedirectFailedError)
	return ok
}

// ExitCode maps an error to the process exit code.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, &DriveConnectionRequiredError{}):
		return ExitDriveConnectionRequired
	case errors.Is(err, &RedirectFailedError{}):
		return ExitRedirectFailed
	default:
		return ExitError
	}
}

// ConnectionErrorType categorizes the type of connection error.
type ConnectionErrorType int

const (
	ConnectionErrorUnknown ConnectionErrorType = iota
	ConnectionErrorTLS
	ConnectionErrorNetwork
	ConnectionErrorTimeout
	ConnectionErrorDNS
)

func (t ConnectionErrorType) String() string {
	switch t {
	case ConnectionErrorTLS:
		return "TLS certificate error"
	case ConnectionErrorNetwork:
		return "Network error"
	case ConnectionErrorTimeout:
		return "Connection timeout"
	case ConnectionErrorDNS:
		return "DNS resolution error"
	default:
		return "Connection error"
	}
}

// ConnectionError indicates the backend could not be reached.
type ConnectionError struct {
	Endpoint string
	Type     ConnectionErrorType
	Reason   error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("%s reaching %s: %v\n\nCheck TEAMDOCS_API_URL or apiUrl in config.yaml.", e.Type, e.Endpoint, e.Reason)
}

// Unwrap returns the underlying error.
func (e *ConnectionError) Unwrap() error {
	return e.Reason
}

// ClassifyConnectionError wraps transport-level failures in a
// ConnectionError. Errors that are not transport failures, such as HTTP
// status errors, are returned unchanged.
func ClassifyConnectionError(err error, endpoint string) error {
	if err == nil {
		return nil
	}

	var typ ConnectionErrorType
	var dnsErr *net.DNSError
	switch {
	case isTLSError(err):
		typ = ConnectionErrorTLS
	case errors.As(err, &dnsErr):
		typ = ConnectionErrorDNS
	case isTimeoutError(err):
		typ = ConnectionErrorTimeout
	case isNetworkError(err.Error()):
		typ = ConnectionErrorNetwork
	default:
		return err
	}
	return &ConnectionError{Endpoint: endpoint, Type: typ, Reason: err}
}

func isTLSError(err error) bool {
	var certErr *x509.CertificateInvalidError
	var hostErr *x509.HostnameError
	var unknownAuthErr *x509.UnknownAuthorityError
	if errors.As(err, &certErr) || errors.As(err, &hostErr) || errors.As(err, &unknownAuthErr) {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "x509:") || strings.Contains(errStr, "tls:")
}

func isTimeoutError(err error) bool {
	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Timeout() {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return strings.Contains(err.Error(), "deadline exceeded")
}

func isNetworkError(errStr string) bool {
	for _, keyword := range []string{
		"connection refused",
		"connection reset",
		"network is unreachable",
		"no route to host",
	} {
		if strings.Contains(errStr, keyword) {
			return true
		}
	}
	return false
}
