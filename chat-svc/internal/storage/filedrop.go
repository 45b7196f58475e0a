package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"neocafe-assistant/chat-svc/internal/domain"
	"neocafe-assistant/chat-svc/internal/service"
)

// FileDropChannel writes the latest update per order to a spool directory.
// It is the fallback channel of last resort: a kiosk with no network can
// still tail the directory. Each write replaces the previous file for the
// same order.
type FileDropChannel struct {
	Dir string
}

func NewFileDropChannel(dir string) *FileDropChannel {
	return &FileDropChannel{Dir: dir}
}

var _ service.NotificationChannel = (*FileDropChannel)(nil)

func (c *FileDropChannel) Name() string { return "filedrop" }

func (c *FileDropChannel) Send(ctx context.Context, update domain.OrderUpdate) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.MkdirAll(c.Dir, 0o755); err != nil {
		return err
	}

	name := update.Order.ID
	if name == "" {
		name = "session_" + update.SessionID
	}
	path := filepath.Join(c.Dir, fmt.Sprintf("order_%s.json", name))

	payload, err := json.MarshalIndent(update, "", "  ")
	if err != nil {
		return err
	}

	// write then rename so a reader never sees a half-written file
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}
