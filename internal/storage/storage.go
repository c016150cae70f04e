package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"stagesight/pkg/logger"

	"go.uber.org/zap"
)

// ObjectStorage 付款證明等檔案的存放介面
type ObjectStorage interface {
	// 上傳：回傳儲存後的路徑
	Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error)
	// 取得：取得公開存取的 URL
	PublicURL(storedPath string) string
	// 刪除：檔案不存在時視為成功
	Delete(ctx context.Context, storedPath string) error
}

type LocalStorageImpl struct {
	dir     string
	baseURL string
}

// NewLocalStorage 建立本機磁碟版 ObjectStorage，baseURL 為對外提供檔案的網址前綴
func NewLocalStorage(dir, baseURL string) (ObjectStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &LocalStorageImpl{
		dir:     dir,
		baseURL: strings.TrimRight(baseURL, "/"),
	}, nil
}

func (s *LocalStorageImpl) Upload(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	clean, err := s.resolve(objectPath)
	if err != nil {
		return "", err
	}

	full := filepath.Join(s.dir, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("create object dir: %w", err)
	}

	// 先寫暫存檔再 rename，避免讀到寫一半的檔案
	tmp := full + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return "", fmt.Errorf("write object: %w", err)
	}
	if err := os.Rename(tmp, full); err != nil {
		_ = os.Remove(tmp)
		return "", fmt.Errorf("commit object: %w", err)
	}

	logger.WithComponent("storage").Info("object stored",
		zap.String("path", clean),
		zap.String("content_type", contentType),
		zap.Int("size", len(data)),
	)
	return clean, nil
}

func (s *LocalStorageImpl) PublicURL(storedPath string) string {
	return s.baseURL + "/" + strings.TrimLeft(storedPath, "/")
}

func (s *LocalStorageImpl) Delete(ctx context.Context, storedPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	clean, err := s.resolve(storedPath)
	if err != nil {
		return err
	}

	err = os.Remove(filepath.Join(s.dir, filepath.FromSlash(clean)))
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("delete object: %w", err)
	}
	return nil
}

// resolve 正規化路徑並拒絕跳出儲存目錄的路徑
func (s *LocalStorageImpl) resolve(objectPath string) (string, error) {
	clean := strings.TrimPrefix(path.Clean("/"+objectPath), "/")
	if clean == "" || clean == "." {
		return "", fmt.Errorf("invalid object path %q", objectPath)
	}
	return clean, nil
}
