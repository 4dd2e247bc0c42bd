package cgihost_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/add-cgi/internal/cgihost"
	"github.com/angeloszaimis/add-cgi/internal/metrics"
)

const scriptPath = "/cgi-bin/add"

var _ = Describe("Host", func() {
	var (
		h         *cgihost.Host
		collector *metrics.Collector
		log       *slog.Logger
		ctx       context.Context
		cancel    context.CancelFunc
		lastQuery string
	)

	BeforeEach(func() {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
		ctx, cancel = context.WithCancel(context.Background())
		collector = metrics.NewCollector(100, log)
		collector.Start(ctx)

		script := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastQuery = r.URL.RawQuery
			if r.URL.Query().Get("a") == "" {
				w.WriteHeader(http.StatusInternalServerError)
				w.Write([]byte("<p>a is not a number</p>"))
				return
			}
			w.Write([]byte("<output>2 + 3 = 5</output>"))
		})

		h = cgihost.New(log, scriptPath, script, collector)
	})

	AfterEach(func() {
		cancel()
	})

	serve := func(target string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		h.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
		return w
	}

	Describe("ServeHTTP", func() {
		It("should run the script with the query string", func() {
			w := serve(scriptPath + "?a=2&b=3")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("<output>2 + 3 = 5</output>"))
			Expect(lastQuery).To(Equal("a=2&b=3"))
		})

		It("should pass script failures through", func() {
			w := serve(scriptPath + "?b=3")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
		})

		It("should tag every response with a request id", func() {
			w := serve("/health")

			_, err := uuid.Parse(w.Header().Get(cgihost.RequestIDHeader))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should answer health checks", func() {
			w := serve("/health")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).To(Equal("ok"))
		})

		It("should return 404 for unknown paths", func() {
			w := serve("/cgi-bin/other")

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should record script calls in metrics", func() {
			serve(scriptPath + "?a=2&b=3")
			serve(scriptPath + "?b=3")

			Eventually(func() int64 {
				return collector.Snapshot().Scripts[scriptPath].Failures
			}).Should(Equal(int64(1)))

			snap := collector.Snapshot()
			Expect(snap.Scripts[scriptPath].Requests).To(Equal(int64(2)))
			Expect(snap.Scripts[scriptPath].StatusCodes[http.StatusOK]).To(Equal(int64(1)))
		})

		It("should expose metrics", func() {
			w := serve("/metrics")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Header().Get("Content-Type")).To(Equal("application/json"))
		})

		It("should work without a collector", func() {
			h = cgihost.New(log, scriptPath, http.NotFoundHandler(), nil)

			Expect(serve(scriptPath).Code).To(Equal(http.StatusNotFound))
			Expect(serve("/metrics").Code).To(Equal(http.StatusNotFound))
		})
	})

	Describe("NewScriptHandler", func() {
		It("should execute a CGI program and honour its Status header", func() {
			if _, err := os.Stat("/bin/sh"); err != nil {
				Skip("no /bin/sh available")
			}

			program := filepath.Join(GinkgoT().TempDir(), "add.cgi")
			Expect(os.WriteFile(program, []byte(`#!/bin/sh
printf 'Content-Type: text/html\n'
printf 'Status: 500\n'
printf '\n'
printf '<p>%s</p>\n' "$QUERY_STRING"
`), 0o755)).To(Succeed())

			h = cgihost.New(log, scriptPath, cgihost.NewScriptHandler(program, scriptPath, nil, log), collector)
			w := serve(scriptPath + "?a=foo")

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Header().Get("Content-Type")).To(Equal("text/html"))
			Expect(w.Body.String()).To(Equal("<p>a=foo</p>\n"))
		})
	})
})
