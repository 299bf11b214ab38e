package safe

import (
	"context"
	"io"

	"github.com/secmon-lab/rolodex/pkg/utils/logging"
)

// Close closes c and logs a failure instead of returning it. A nil c is ignored.
func Close(ctx context.Context, c io.Closer) {
	if c == nil {
		return
	}
	if err := c.Close(); err != nil {
		logging.From(ctx).Warn("close failed", "error", err)
	}
}

// Write writes data to w and logs a failure or a short write. Used for response bodies
// where the status line has already been sent and nothing else can be done.
func Write(ctx context.Context, w io.Writer, data []byte) {
	if w == nil {
		return
	}
	n, err := w.Write(data)
	if err != nil {
		logging.From(ctx).Warn("write failed", "error", err, "written", n, "size", len(data))
		return
	}
	if n < len(data) {
		logging.From(ctx).Warn("short write", "written", n, "size", len(data))
	}
}
