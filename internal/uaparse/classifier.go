// Package uaparse classifies visitor user-agent strings. The Classifier
// interface keeps the parsing library swappable without touching click
// recording.
package uaparse

import (
	"strings"

	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/mssola/useragent"
)

// Classification is the derived facts for one user-agent string.
type Classification struct {
	DeviceType string
	Browser    string
	OS         string
}

type Classifier interface {
	Classify(rawUA string) Classification
}

type mssolaClassifier struct{}

// New returns the default classifier backed by mssola/useragent.
func New() Classifier {
	return mssolaClassifier{}
}

func (mssolaClassifier) Classify(rawUA string) Classification {
	if strings.TrimSpace(rawUA) == "" {
		return Classification{
			DeviceType: models.DeviceUnknown,
			Browser:    "unknown",
			OS:         "unknown",
		}
	}

	ua := useragent.New(rawUA)

	browser, _ := ua.Browser()
	if browser == "" {
		browser = "unknown"
	}

	os := ua.OSInfo().Name
	if os == "" {
		os = "unknown"
	}

	return Classification{
		DeviceType: deviceType(ua, rawUA),
		Browser:    browser,
		OS:         os,
	}
}

func deviceType(ua *useragent.UserAgent, rawUA string) string {
	lower := strings.ToLower(rawUA)
	if strings.Contains(lower, "ipad") || strings.Contains(lower, "tablet") {
		return models.DeviceTablet
	}
	if ua.Bot() {
		return models.DeviceUnknown
	}
	if ua.Mobile() {
		return models.DeviceMobile
	}
	return models.DeviceDesktop
}
