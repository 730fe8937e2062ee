package service

import "net/url"

// IsValidURL reports whether candidate is an absolute http or https URL with a host.
func IsValidURL(candidate string) bool {
	u, err := url.Parse(candidate)
	if err != nil {
		return false
	}

	// url.Parse lowercases the scheme.
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}

	return u.Host != ""
}
