package service

import (
	"context"
	"log"
	"net"
	"time"

	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/repository"
	"github.com/aman-churiwal/shortlink/internal/uaparse"
)

const maxFieldLength = 500

// Visit is the raw context of one redirect, captured before classification.
type Visit struct {
	UserAgent string
	Referrer  string
	IPAddress string
}

// ClickRecorder derives structured facts from visits and persists them in
// batches off the request path. Recording is best-effort: a full buffer or a
// failed insert is logged, never surfaced to the visitor.
type ClickRecorder struct {
	clicks     *repository.ClickRepository
	links      *repository.LinkRepository
	classifier uaparse.Classifier

	events     chan models.ClickEvent
	batchSize  int
	flushEvery time.Duration
	stop       chan struct{}
	stopped    chan struct{}
}

func NewClickRecorder(clicks *repository.ClickRepository, links *repository.LinkRepository, classifier uaparse.Classifier, bufferSize, batchSize int, flushEvery time.Duration) *ClickRecorder {
	return &ClickRecorder{
		clicks:     clicks,
		links:      links,
		classifier: classifier,
		events:     make(chan models.ClickEvent, bufferSize),
		batchSize:  batchSize,
		flushEvery: flushEvery,
		stop:       make(chan struct{}),
		stopped:    make(chan struct{}),
	}
}

// Record classifies the visit and queues the event. Never blocks.
func (r *ClickRecorder) Record(link *models.ShortLink, visit Visit) {
	event := r.BuildEvent(link, visit)

	select {
	case r.events <- event:
	default:
		log.Printf("click buffer full, dropping event for %s", link.Code)
	}
}

// BuildEvent derives the stored facts from a raw visit.
func (r *ClickRecorder) BuildEvent(link *models.ShortLink, visit Visit) models.ClickEvent {
	class := r.classifier.Classify(visit.UserAgent)

	return models.ClickEvent{
		LinkID:     link.ID,
		ClickedAt:  time.Now().UTC(),
		DeviceType: class.DeviceType,
		Browser:    class.Browser,
		OS:         class.OS,
		Referrer:   truncate(visit.Referrer, maxFieldLength),
		IPAddress:  anonymizeIP(visit.IPAddress),
		UserAgent:  truncate(visit.UserAgent, maxFieldLength),
	}
}

// Start launches the background worker that batch-inserts queued events and
// bumps each link's cached counter.
func (r *ClickRecorder) Start() {
	go func() {
		defer close(r.stopped)

		batch := make([]models.ClickEvent, 0, r.batchSize)
		ticker := time.NewTicker(r.flushEvery)
		defer ticker.Stop()

		for {
			select {
			case event := <-r.events:
				batch = append(batch, event)
				if len(batch) >= r.batchSize {
					r.flush(batch)
					batch = make([]models.ClickEvent, 0, r.batchSize)
				}
			case <-ticker.C:
				if len(batch) > 0 {
					r.flush(batch)
					batch = make([]models.ClickEvent, 0, r.batchSize)
				}
			case <-r.stop:
				// Drain whatever is still queued before exiting.
				for {
					select {
					case event := <-r.events:
						batch = append(batch, event)
					default:
						if len(batch) > 0 {
							r.flush(batch)
						}
						return
					}
				}
			}
		}
	}()
}

// Stop flushes remaining events and waits for the worker to exit.
func (r *ClickRecorder) Stop() {
	close(r.stop)
	<-r.stopped
}

func (r *ClickRecorder) flush(batch []models.ClickEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	events := make([]*models.ClickEvent, len(batch))
	perLink := make(map[uint]int64)
	for i := range batch {
		events[i] = &batch[i]
		perLink[batch[i].LinkID]++
	}

	if err := r.clicks.CreateBatch(ctx, events); err != nil {
		log.Printf("failed to insert click events: %v", err)
		return
	}

	for linkID, n := range perLink {
		if err := r.links.IncrementClicks(ctx, linkID, n); err != nil {
			log.Printf("failed to bump click count for link %d: %v", linkID, err)
		}
	}
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

// anonymizeIP zeroes the host portion: /24 for v4, /48 for v6.
func anonymizeIP(raw string) string {
	ip := net.ParseIP(raw)
	if ip == nil {
		return ""
	}

	if v4 := ip.To4(); v4 != nil {
		return v4.Mask(net.CIDRMask(24, 32)).String()
	}
	return ip.Mask(net.CIDRMask(48, 128)).String()
}
