// Package verification checks the document links attached to organization verification requests.
package verification

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
)

// DefaultTrustedHosts are the document hosts accepted when none are configured.
var DefaultTrustedHosts = []string{
	"drive.google.com",
	"docs.google.com",
	"dropbox.com",
	"onedrive.live.com",
	"1drv.ms",
	"sharepoint.com",
}

var validate = validator.New()

// LinkError indicates a document link that cannot be accepted
type LinkError struct {
	Link   string
	Reason string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("invalid document link %q: %s", e.Link, e.Reason)
}

// CheckLink validates that link is a non-empty absolute http(s) URL whose host
// contains one of the trusted host substrings. The document itself is never fetched.
func CheckLink(link string, trustedHosts []string) error {
	link = strings.TrimSpace(link)
	if link == "" {
		return &LinkError{Link: link, Reason: "link is required"}
	}
	if err := validate.Var(link, "url"); err != nil {
		return &LinkError{Link: link, Reason: "not a valid URL"}
	}

	u, err := url.Parse(link)
	if err != nil {
		return &LinkError{Link: link, Reason: "not a valid URL"}
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return &LinkError{Link: link, Reason: "scheme must be http or https"}
	}

	if len(trustedHosts) == 0 {
		trustedHosts = DefaultTrustedHosts
	}
	host := strings.ToLower(u.Hostname())
	for _, trusted := range trustedHosts {
		trusted = strings.ToLower(strings.TrimSpace(trusted))
		if trusted != "" && strings.Contains(host, trusted) {
			return nil
		}
	}
	return &LinkError{Link: link, Reason: "host is not a trusted document host"}
}
