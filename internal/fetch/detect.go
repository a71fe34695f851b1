package fetch

import (
	"fmt"
	"net/http"
	"strings"
)

// A Detector inspects a response and reports whether it is a block wall
// rather than real content. The reason feeds error messages and logs.
type Detector func(status int, body string) (reason string, blocked bool)

// DefaultDetectors cover the common anti-bot walls: blocking status
// codes, Cloudflare challenges, captcha interstitials, and JS walls.
// Detectors run in order; the first match wins.
var DefaultDetectors = []Detector{
	detectBlockedStatus,
	detectCloudflare,
	detectCaptcha,
	detectJSWall,
}

// Detect runs detectors in order against a response and returns the
// first matching reason.
func Detect(detectors []Detector, status int, body string) (string, bool) {
	lower := strings.ToLower(body)
	for _, d := range detectors {
		if reason, blocked := d(status, lower); blocked {
			return reason, true
		}
	}
	return "", false
}

func detectBlockedStatus(status int, _ string) (string, bool) {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		return fmt.Sprintf("status %d", status), true
	}
	return "", false
}

func detectCloudflare(_ int, body string) (string, bool) {
	for _, sig := range []string{
		"just a moment",
		"checking your browser",
		"cf-browser-verification",
		"attention required",
	} {
		if strings.Contains(body, sig) {
			return "cloudflare challenge", true
		}
	}
	return "", false
}

func detectCaptcha(_ int, body string) (string, bool) {
	for _, sig := range []string{
		"captcha-delivery.com",
		"g-recaptcha",
		"hcaptcha.com",
	} {
		if strings.Contains(body, sig) {
			return "captcha wall", true
		}
	}
	return "", false
}

func detectJSWall(_ int, body string) (string, bool) {
	for _, sig := range []string{
		"please enable js and disable any ad blocker",
		"enable javascript and cookies to continue",
	} {
		if strings.Contains(body, sig) {
			return "javascript wall", true
		}
	}
	return "", false
}
