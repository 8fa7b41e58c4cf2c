package handler

import (
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"
)

// readUpload loads a multipart file into memory. Size limits are enforced
// by the resume pipeline, the read is only capped to stay bounded.
func readUpload(c *fiber.Ctx, field string, maxBytes int64) ([]byte, error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, fmt.Errorf("%s file is required: %w", field, err)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", field, err)
	}
	defer f.Close()

	r := io.Reader(f)
	if maxBytes > 0 {
		r = io.LimitReader(f, maxBytes+1)
	}
	return io.ReadAll(r)
}
