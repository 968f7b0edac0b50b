package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/gemini-gateway/pkg/logger"
)

var _ = Describe("Logger", func() {
	ctx := context.Background()

	Describe("New", func() {
		It("should create logger with info level", func() {
			log := logger.New("info", false, "dev")
			Expect(log).NotTo(BeNil())
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeFalse())
		})

		It("should default to info for invalid level", func() {
			log := logger.New("invalid", false, "dev")
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeFalse())
		})

		It("should respect debug level", func() {
			log := logger.New("debug", false, "dev")
			Expect(log.Enabled(ctx, slog.LevelDebug)).To(BeTrue())
		})

		It("should respect warn level", func() {
			log := logger.New("warn", false, "dev")
			Expect(log.Enabled(ctx, slog.LevelInfo)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeTrue())
		})

		It("should respect error level", func() {
			log := logger.New("error", false, "dev")
			Expect(log.Enabled(ctx, slog.LevelWarn)).To(BeFalse())
			Expect(log.Enabled(ctx, slog.LevelError)).To(BeTrue())
		})
	})

	Describe("NewWithWriter", func() {
		It("should write JSON in prod", func() {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "info", false, "prod")
			log.Info("hello")

			var line map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &line)).To(Succeed())
			Expect(line["msg"]).To(Equal("hello"))
			Expect(line["environment"]).To(Equal("prod"))
		})

		It("should write text outside prod", func() {
			var buf bytes.Buffer
			log := logger.NewWithWriter(&buf, "info", false, "staging")
			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring("msg=hello"))
			Expect(buf.String()).To(ContainSubstring("environment=staging"))
		})
	})

	Describe("WithRequest", func() {
		It("should attach request attributes", func() {
			var buf bytes.Buffer
			log := logger.WithRequest(logger.NewWithWriter(&buf, "info", false, "dev"), "req-1", "GET", "/gemini")
			log.Info("served")

			Expect(buf.String()).To(ContainSubstring("request_id=req-1"))
			Expect(buf.String()).To(ContainSubstring("method=GET"))
			Expect(buf.String()).To(ContainSubstring("path=/gemini"))
		})
	})

	Describe("Discard", func() {
		It("should drop every level", func() {
			log := logger.Discard()
			Expect(log.Enabled(ctx, slog.LevelError)).To(BeFalse())
		})
	})
})
