package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
)

// AvatarBucket stores avatar images and returns their public URL.
type AvatarBucket interface {
	Put(ctx context.Context, name string, data []byte) (string, error)
}

// AvatarName is the object name of an avatar uploaded by guestID at t.
func AvatarName(guestID uuid.UUID, t time.Time) string {
	return fmt.Sprintf("avatar-%s-%d.jpg", guestID, t.UnixMilli())
}

// ValidateAvatar enforces the size cap and the JPEG format before anything is stored.
func ValidateAvatar(data []byte, maxBytes int64) error {
	if len(data) == 0 {
		return &domain.ValidationError{Field: "avatar", Message: "file is empty"}
	}
	if maxBytes > 0 && int64(len(data)) > maxBytes {
		return domain.ErrAvatarTooLarge
	}
	if http.DetectContentType(data) != "image/jpeg" {
		return domain.ErrUnsupportedImage
	}
	return nil
}

// DiskBucket writes avatars into a local directory served under PublicBaseURL.
type DiskBucket struct {
	dir     string
	baseURL string
}

func NewDiskBucket(cfg config.StorageConfig) (*DiskBucket, error) {
	if err := os.MkdirAll(cfg.AvatarDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create avatar dir: %w", err)
	}
	return &DiskBucket{dir: cfg.AvatarDir, baseURL: strings.TrimRight(cfg.PublicBaseURL, "/")}, nil
}

func (b *DiskBucket) Dir() string {
	return b.dir
}

func (b *DiskBucket) Put(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return "", fmt.Errorf("invalid object name %q", name)
	}

	// write then rename so readers never see a partial file
	tmp, err := os.CreateTemp(b.dir, ".upload-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := bytes.NewReader(data).WriteTo(tmp); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to write avatar: %w", err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(b.dir, name)); err != nil {
		return "", fmt.Errorf("failed to store avatar: %w", err)
	}
	return b.baseURL + "/" + name, nil
}
