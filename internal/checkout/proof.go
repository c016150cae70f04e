package checkout

import (
	"fmt"
	"path"
	"strings"

	apperrors "stagesight/pkg/app_errors"

	"github.com/gabriel-vasile/mimetype"
)

const DefaultMaxProofSize int64 = 5 << 20

// Proof 已上傳的付款證明
type Proof struct {
	FileName    string `json:"file_name"`
	StoredPath  string `json:"stored_path,omitempty"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	// 儲存失敗時使用的示範 URL，沒有實際檔案
	Placeholder bool `json:"placeholder,omitempty"`
}

// DetectProof 以檔案內容判斷類型，只接受 image/* (SVG 除外) 與 application/pdf。
// 回傳 content type 與副檔名。
func DetectProof(data []byte, maxSize int64) (string, string, error) {
	if maxSize <= 0 {
		maxSize = DefaultMaxProofSize
	}
	if len(data) == 0 {
		return "", "", fmt.Errorf("%w: empty file", apperrors.ErrInvalidProof)
	}
	if int64(len(data)) > maxSize {
		return "", "", fmt.Errorf("%w: %d bytes, limit %d", apperrors.ErrProofTooLarge, len(data), maxSize)
	}

	mt := mimetype.Detect(data)
	contentType, _, _ := strings.Cut(mt.String(), ";")
	if !strings.HasPrefix(contentType, "image/") && contentType != "application/pdf" {
		return "", "", fmt.Errorf("%w: got %s", apperrors.ErrInvalidProof, contentType)
	}
	// 上傳檔與 API 同源提供，SVG 可夾帶 script
	if contentType == "image/svg+xml" {
		return "", "", fmt.Errorf("%w: svg is not accepted", apperrors.ErrInvalidProof)
	}
	return contentType, mt.Extension(), nil
}

func proofObjectPath(sessionID, objectID, ext string) string {
	return path.Join("payment-proofs", sessionID, objectID+ext)
}
