package routes

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/wesoda/anket/app"
	"github.com/wesoda/anket/httpx"
	"github.com/wesoda/anket/log"
	"github.com/wesoda/anket/store"
)

// Events streams survey and answer changes as server-sent events. Each
// request holds its own feed subscriptions and releases them when the
// client goes away; a closed feed ends the stream.
func Events(app app.App) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		flusher, ok := w.(http.Flusher)
		if !ok {
			httpx.LogStatus(w, http.StatusInternalServerError, log.WarnLevel, "events.no_flusher")
			return
		}

		surveys := app.Store.SurveyFeed().Subscribe()
		defer surveys.Cancel()
		answers := app.Store.AnswerFeed().Subscribe()
		defer answers.Cancel()

		w.Header().Set("content-type", "text/event-stream")
		w.Header().Set("cache-control", "no-cache")
		w.Header().Set("connection", "keep-alive")
		w.WriteHeader(http.StatusOK)
		flusher.Flush()

		for {
			select {
			case <-r.Context().Done():
				return
			case change, ok := <-surveys.C():
				if !ok {
					return
				}
				if err := writeEvent(w, "survey", change); err != nil {
					return
				}
				flusher.Flush()
			case change, ok := <-answers.C():
				if !ok {
					return
				}
				if err := writeEvent(w, "answer", change); err != nil {
					return
				}
				flusher.Flush()
			}
		}
	}
}

func writeEvent(w http.ResponseWriter, event string, change store.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, data)
	return err
}
