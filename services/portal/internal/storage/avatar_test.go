package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/diagnosis/wedding-portal/pkg/config"
	"github.com/diagnosis/wedding-portal/services/portal/internal/domain"
	"github.com/google/uuid"
)

// minimal JPEG signature, enough for content sniffing
var jpegBytes = append([]byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F', 0x00}, bytes.Repeat([]byte{0}, 32)...)

func TestAvatarName(t *testing.T) {
	id := uuid.MustParse("5b7f8f5e-8a2b-4f0e-9a55-3f7d1c2b9e10")
	got := AvatarName(id, time.UnixMilli(1700000000000))
	if got != "avatar-5b7f8f5e-8a2b-4f0e-9a55-3f7d1c2b9e10-1700000000000.jpg" {
		t.Fatalf("Unexpected name %s", got)
	}
}

func TestValidateAvatar(t *testing.T) {
	if err := ValidateAvatar(jpegBytes, 1024); err != nil {
		t.Fatalf("Expected JPEG to pass, got %v", err)
	}
	if err := ValidateAvatar(jpegBytes, 10); !errors.Is(err, domain.ErrAvatarTooLarge) {
		t.Fatalf("Expected ErrAvatarTooLarge, got %v", err)
	}
	if err := ValidateAvatar([]byte("\x89PNG\r\n\x1a\n0000"), 1024); !errors.Is(err, domain.ErrUnsupportedImage) {
		t.Fatalf("Expected ErrUnsupportedImage, got %v", err)
	}
	if err := ValidateAvatar(nil, 1024); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("Expected empty file to be invalid input, got %v", err)
	}
}

func TestDiskBucket_Put(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "avatars")
	bucket, err := NewDiskBucket(config.StorageConfig{AvatarDir: dir, PublicBaseURL: "https://cdn.example/avatars/"})
	if err != nil {
		t.Fatalf("NewDiskBucket: %v", err)
	}

	url, err := bucket.Put(context.Background(), "avatar-x-1.jpg", jpegBytes)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if url != "https://cdn.example/avatars/avatar-x-1.jpg" {
		t.Fatalf("Unexpected URL %s", url)
	}

	stored, err := os.ReadFile(filepath.Join(dir, "avatar-x-1.jpg"))
	if err != nil || !bytes.Equal(stored, jpegBytes) {
		t.Fatalf("Expected stored bytes to match, err=%v", err)
	}

	if _, err := bucket.Put(context.Background(), "../escape.jpg", jpegBytes); err == nil {
		t.Fatalf("Expected path traversal to be rejected")
	}
}
