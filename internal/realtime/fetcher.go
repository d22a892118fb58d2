// Package realtime polls a GTFS-realtime service alerts feed for station closures.
package realtime

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	gtfs "github.com/MobilityData/gtfs-realtime-bindings/golang/gtfs"
	"google.golang.org/protobuf/proto"
)

// Fetcher polls a GTFS-RT alerts feed and updates the store.
type Fetcher struct {
	alertsURL string
	interval  time.Duration
	store     *Store
	client    *http.Client
	now       func() time.Time
	logger    *slog.Logger
}

// NewFetcher creates a GTFS-RT alerts fetcher polling every interval.
func NewFetcher(alertsURL string, interval time.Duration, store *Store, logger *slog.Logger) *Fetcher {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Fetcher{
		alertsURL: alertsURL,
		interval:  interval,
		store:     store,
		client:    &http.Client{Timeout: 15 * time.Second},
		now:       time.Now,
		logger:    logger,
	}
}

// Start begins polling the alerts feed. Blocks until context is cancelled.
func (f *Fetcher) Start(ctx context.Context) {
	if err := f.Refresh(ctx); err != nil {
		f.logger.Warn("fetch alerts failed", "error", err)
	}

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := f.Refresh(ctx); err != nil {
				f.logger.Warn("fetch alerts failed", "error", err)
			}
		case <-ctx.Done():
			f.logger.Info("alerts fetcher stopped")
			return
		}
	}
}

// Refresh fetches the feed once and replaces the store's closures. On error the
// previous closures are kept.
func (f *Fetcher) Refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.alertsURL, nil)
	if err != nil {
		return fmt.Errorf("create alerts request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return fmt.Errorf("alerts request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("alerts feed returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read alerts body: %w", err)
	}

	feed := &gtfs.FeedMessage{}
	if err := proto.Unmarshal(body, feed); err != nil {
		return fmt.Errorf("parse alerts protobuf: %w", err)
	}

	closures := closuresFrom(feed, f.now())
	f.store.SetClosures(closures)
	f.logger.Info("station closures updated", "alerts", len(feed.GetEntity()), "closed", len(closures))
	return nil
}

// closuresFrom collects the stops named by active NO_SERVICE alerts.
func closuresFrom(feed *gtfs.FeedMessage, now time.Time) []Closure {
	var closures []Closure
	for _, entity := range feed.GetEntity() {
		a := entity.GetAlert()
		if a == nil || a.GetEffect() != gtfs.Alert_NO_SERVICE || !active(a, now) {
			continue
		}
		reason := closureReason(a)
		for _, ie := range a.GetInformedEntity() {
			if sid := ie.GetStopId(); sid != "" {
				closures = append(closures, Closure{StationCode: sid, Reason: reason, AlertID: entity.GetId()})
			}
		}
	}
	return closures
}

// active reports whether an alert applies at now. No active period means always.
func active(a *gtfs.Alert, now time.Time) bool {
	periods := a.GetActivePeriod()
	if len(periods) == 0 {
		return true
	}
	t := uint64(now.Unix())
	for _, p := range periods {
		if p.GetStart() <= t && (p.GetEnd() == 0 || t < p.GetEnd()) {
			return true
		}
	}
	return false
}

// closureReason phrases an alert to follow "station is currently closed".
func closureReason(a *gtfs.Alert) string {
	text := getTranslation(a.GetDescriptionText())
	if text == "" {
		text = getTranslation(a.GetHeaderText())
	}
	return strings.ToLower(strings.TrimSpace(text))
}

func getTranslation(ts *gtfs.TranslatedString) string {
	if ts == nil {
		return ""
	}
	for _, t := range ts.GetTranslation() {
		if text := t.GetText(); text != "" {
			return text
		}
	}
	return ""
}
