package service

import (
	"strings"
	"testing"
	"time"

	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/uaparse"
	"github.com/stretchr/testify/assert"
)

type stubClassifier struct{}

func (stubClassifier) Classify(rawUA string) uaparse.Classification {
	return uaparse.Classification{
		DeviceType: models.DeviceDesktop,
		Browser:    "Chrome",
		OS:         "Linux",
	}
}

func newTestRecorder(buffer int) *ClickRecorder {
	return NewClickRecorder(nil, nil, stubClassifier{}, buffer, 100, time.Second)
}

func TestBuildEvent(t *testing.T) {
	r := newTestRecorder(10)
	link := &models.ShortLink{ID: 7, Code: "abc123"}

	event := r.BuildEvent(link, Visit{
		UserAgent: "Mozilla/5.0",
		Referrer:  "https://news.ycombinator.com/",
		IPAddress: "203.0.113.77",
	})

	assert.Equal(t, uint(7), event.LinkID)
	assert.Equal(t, models.DeviceDesktop, event.DeviceType)
	assert.Equal(t, "Chrome", event.Browser)
	assert.Equal(t, "Linux", event.OS)
	assert.Equal(t, "https://news.ycombinator.com/", event.Referrer)
	assert.WithinDuration(t, time.Now().UTC(), event.ClickedAt, time.Minute)
}

func TestBuildEventTruncatesLongFields(t *testing.T) {
	r := newTestRecorder(10)
	link := &models.ShortLink{ID: 1}

	long := strings.Repeat("x", 2*maxFieldLength)
	event := r.BuildEvent(link, Visit{UserAgent: long, Referrer: long})

	assert.Len(t, event.UserAgent, maxFieldLength)
	assert.Len(t, event.Referrer, maxFieldLength)
}

func TestAnonymizeIP(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"v4 host zeroed", "203.0.113.77", "203.0.113.0"},
		{"v4 already network", "10.1.2.0", "10.1.2.0"},
		{"v6 tail zeroed", "2001:db8:abcd:1234::42", "2001:db8:abcd::"},
		{"garbage", "not-an-ip", ""},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, anonymizeIP(tt.in))
		})
	}
}

func TestRecordNeverBlocks(t *testing.T) {
	// Buffer of one, no worker running: the second record must drop, not block.
	r := newTestRecorder(1)
	link := &models.ShortLink{ID: 1, Code: "abc"}

	done := make(chan struct{})
	go func() {
		r.Record(link, Visit{})
		r.Record(link, Visit{})
		r.Record(link, Visit{})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Record blocked on a full buffer")
	}

	assert.Len(t, r.events, 1)
}
