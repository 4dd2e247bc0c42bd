package handler

import (
	"bufio"
	"errors"
	"io"
	"log/slog"

	"github.com/angeloszaimis/add-cgi/internal/calc"
)

const (
	ContentType = "text/html"
	Heading     = "<h1>add.js</h1>"
)

type Handler struct {
	logger *slog.Logger
}

type response struct {
	w *bufio.Writer
}

// Respond writes exactly one response for rawQuery to w. The Content-Type
// header is always written first. An invalid operand produces the failure
// shape and a diagnostic record on the handler's logger; the returned error
// only reports failures to write to w.
func (h *Handler) Respond(w io.Writer, rawQuery string) error {
	res := &response{w: bufio.NewWriter(w)}

	res.header("Content-Type", ContentType)

	in, err := calc.ParseQuery(rawQuery)
	if err != nil {
		h.logFailure(err)

		res.header("Status", "500")
		res.endHeaders()
		res.line(Heading)
		res.line("<p>" + err.Error() + "</p>")
		return res.flush()
	}

	res.endHeaders()
	res.line(Heading)
	res.line("<output>" +
		calc.FormatNumber(in.A) + " + " +
		calc.FormatNumber(in.B) + " = " +
		calc.FormatNumber(in.Sum()) +
		"</output>")

	return res.flush()
}

func (h *Handler) logFailure(err error) {
	attrs := []any{slog.String("error", err.Error())}

	var vErr *calc.ValidationError
	if errors.As(err, &vErr) {
		attrs = append(attrs,
			slog.String("field", vErr.Field),
			slog.String("value", vErr.Value),
			slog.String("code", vErr.Code()))
	}

	h.logger.Error("Invalid request", attrs...)
}

func (r *response) header(name, value string) {
	r.line(name + ": " + value)
}

func (r *response) endHeaders() {
	r.line("")
}

// bufio.Writer keeps the first error, so only flush needs checking.
func (r *response) line(s string) {
	r.w.WriteString(s)
	r.w.WriteByte('\n')
}

func (r *response) flush() error {
	return r.w.Flush()
}

func New(logger *slog.Logger) *Handler {
	return &Handler{
		logger: logger,
	}
}
