package httpserver_test

import (
	"context"
	"io"
	"net"
	"net/http"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/gemini-gateway/internal/httpserver"
)

var _ = Describe("HTTP Server", func() {
	noop := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	DescribeTable("server creation",
		func(addr string, valid bool) {
			srv, err := httpserver.New(addr, noop, httpserver.DefaultOptions())
			if valid {
				Expect(err).NotTo(HaveOccurred())
				Expect(srv).NotTo(BeNil())
			} else {
				Expect(err).To(HaveOccurred())
				Expect(srv).To(BeNil())
			}
		},
		Entry("host name", "localhost:9999", true),
		Entry("IP address", "127.0.0.1:9999", true),
		Entry("port only", ":9999", true),
		Entry("too many colons", "invalid:host:port", false),
		Entry("missing port", "localhost", false),
		Entry("empty port", "localhost:", false),
	)

	Context("server lifecycle", func() {
		var (
			testServer *httpserver.Server
			ln         net.Listener
			done       chan error
		)

		BeforeEach(func() {
			var err error
			ln, err = net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())

			testServer, err = httpserver.New(ln.Addr().String(), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
				w.Write([]byte("test"))
			}), httpserver.DefaultOptions())
			Expect(err).NotTo(HaveOccurred())

			done = make(chan error, 1)
			go func() {
				done <- testServer.Serve(ln)
			}()
		})

		AfterEach(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_ = testServer.Shutdown(ctx)
		})

		It("handles requests", func() {
			resp, err := http.Get("http://" + ln.Addr().String())
			Expect(err).NotTo(HaveOccurred())
			defer resp.Body.Close()

			Expect(resp.StatusCode).To(Equal(http.StatusOK))
			body, _ := io.ReadAll(resp.Body)
			Expect(string(body)).To(Equal("test"))
		})

		It("shuts down gracefully", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()

			Expect(testServer.Shutdown(ctx)).To(Succeed())
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})
