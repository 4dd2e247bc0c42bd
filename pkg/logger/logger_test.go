package logger_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/angeloszaimis/add-cgi/pkg/logger"
)

var _ = Describe("Logger", func() {
	var buf *bytes.Buffer

	BeforeEach(func() {
		buf = &bytes.Buffer{}
	})

	Describe("New", func() {
		It("should create logger with info level", func() {
			log := logger.New(buf, "info", false, "dev")
			Expect(log).NotTo(BeNil())
			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
			Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeFalse())
		})

		It("should respect debug level", func() {
			log := logger.New(buf, "debug", false, "dev")

			Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeTrue())
		})

		It("should respect warn level", func() {
			log := logger.New(buf, "warn", false, "dev")

			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeFalse())
			Expect(log.Enabled(context.Background(), slog.LevelWarn)).To(BeTrue())
		})

		It("should respect error level", func() {
			log := logger.New(buf, "ERROR", false, "dev")

			Expect(log.Enabled(context.Background(), slog.LevelWarn)).To(BeFalse())
			Expect(log.Enabled(context.Background(), slog.LevelError)).To(BeTrue())
		})

		It("should default to info for invalid level", func() {
			log := logger.New(buf, "invalid", false, "dev")

			Expect(log.Enabled(context.Background(), slog.LevelDebug)).To(BeFalse())
			Expect(log.Enabled(context.Background(), slog.LevelInfo)).To(BeTrue())
		})

		It("should write text records to the given writer", func() {
			log := logger.New(buf, "info", false, "dev")
			log.Info("hello", slog.String("key", "value"))

			Expect(buf.String()).To(ContainSubstring("msg=hello"))
			Expect(buf.String()).To(ContainSubstring("key=value"))
			Expect(buf.String()).To(ContainSubstring("environment=dev"))
		})

		It("should write JSON records in prod", func() {
			log := logger.New(buf, "info", false, "prod")
			log.Info("hello")

			var record map[string]any
			Expect(json.Unmarshal(buf.Bytes(), &record)).To(Succeed())
			Expect(record).To(HaveKeyWithValue("msg", "hello"))
			Expect(record).To(HaveKeyWithValue("environment", "prod"))
		})

		It("should support addSource option", func() {
			log := logger.New(buf, "info", true, "dev")
			log.Info("hello")

			Expect(buf.String()).To(ContainSubstring("source="))
		})
	})
})
