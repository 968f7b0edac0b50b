// Fakeupstream is a stand-in for the AI inference API used when running the
// gateway locally. It answers the four /ai/* paths with the status/result
// shape the gateway expects and exposes a /health endpoint for the prober.
//
// Usage:
//
//	go run ./scripts/fakeupstream -port 9000 -fail-every 5
//
// then point the gateway at it with UPSTREAM_BASE_URLS=http://localhost:9000.
// With -fail-every N every Nth call answers status "false".
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"sync/atomic"

	"github.com/google/uuid"
)

type answer struct {
	Status  string `json:"status"`
	Result  string `json:"result,omitempty"`
	Message string `json:"message,omitempty"`
	ID      string `json:"id"`
}

func main() {
	port := flag.Int("port", 9000, "port to listen on")
	failEvery := flag.Int("fail-every", 0, "answer status false on every Nth call (0 = never)")
	flag.Parse()

	log := slog.New(slog.NewTextHandler(os.Stdout, nil))
	var calls atomic.Int64

	mux := http.NewServeMux()
	for _, path := range []string{"/ai/gemini", "/ai/gemini-advance", "/ai/gemini-img", "/ai/gemini-video"} {
		mux.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
			n := calls.Add(1)
			q := r.URL.Query()
			log.Info("request", slog.String("path", r.URL.Path), slog.String("text", q.Get("text")), slog.String("url", q.Get("url")))

			a := answer{Status: "true", ID: uuid.NewString()}
			if *failEvery > 0 && n%int64(*failEvery) == 0 {
				a.Status = "false"
				a.Message = "simulated upstream failure"
			} else {
				a.Result = fmt.Sprintf("[%s] echo: %s", path, q.Get("text"))
				if u := q.Get("url"); u != "" {
					a.Result += " (media " + u + ")"
				}
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(a)
		})
	}

	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})

	addr := fmt.Sprintf(":%d", *port)
	log.Info("starting fake upstream", slog.String("addr", addr))
	if err := http.ListenAndServe(addr, mux); err != nil {
		log.Error("server failed", slog.Any("err", err))
		os.Exit(1)
	}
}
