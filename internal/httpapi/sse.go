package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/careercardinal/jobtracker/internal/ingest"
	"github.com/careercardinal/jobtracker/pkg/log"
)

const (
	streamInterval  = time.Second
	streamKeepalive = 15 * time.Second
)

// handleIngestStream pushes the ingest run list as server sent events until
// the client goes away. A snapshot is only sent when it differs from the
// previous one; idle streams get a comment line every streamKeepalive.
// With ?active=true only pending and running runs are included.
func (s *Server) handleIngestStream(w http.ResponseWriter, r *http.Request) {
	if s.queue == nil {
		writeError(w, http.StatusNotImplemented, "ingest queue is not configured")
		return
	}
	activeOnly, _ := strconv.ParseBool(r.URL.Query().Get("active"))

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	header := w.Header()
	header.Set("Content-Type", "text/event-stream")
	header.Set("Cache-Control", "no-cache")
	header.Set("Connection", "keep-alive")
	header.Set("X-Accel-Buffering", "no")

	var (
		last     []byte
		eventID  int
		lastSent = time.Now()
	)
	push := func() error {
		payload, err := json.Marshal(streamRuns(s.queue.List(), activeOnly))
		if err != nil {
			return err
		}
		if last != nil && bytes.Equal(payload, last) {
			if time.Since(lastSent) < streamKeepalive {
				return nil
			}
			_, err = fmt.Fprint(w, ": keepalive\n\n")
		} else {
			eventID++
			_, err = fmt.Fprintf(w, "id: %d\nevent: runs\ndata: %s\n\n", eventID, payload)
			last = payload
		}
		if err != nil {
			return err
		}
		lastSent = time.Now()
		flusher.Flush()
		return nil
	}

	if _, err := fmt.Fprintf(w, "retry: %d\n\n", streamInterval.Milliseconds()); err != nil {
		return
	}
	if err := push(); err != nil {
		log.Debug("Ingest stream closed: %v", err)
		return
	}

	ticker := time.NewTicker(streamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-ticker.C:
			if err := push(); err != nil {
				log.Debug("Ingest stream closed: %v", err)
				return
			}
		}
	}
}

func streamRuns(runs []*ingest.Run, activeOnly bool) []*ingest.Run {
	if !activeOnly {
		return runs
	}
	ret := make([]*ingest.Run, 0, len(runs))
	for _, run := range runs {
		if !run.Status.Terminal() {
			ret = append(ret, run)
		}
	}
	return ret
}
