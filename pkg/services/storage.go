package services

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	maxImageSize   = 5 * 1024 * 1024
	uploadTokenTTL = 15 * time.Minute
)

// ImageStore keeps profile images on local disk behind HMAC-signed upload
// tokens: the client first asks for a token, then posts the file with it.
type ImageStore struct {
	basePath  string
	baseURL   string
	secretKey string
}

func NewImageStore(basePath, baseURL, secretKey string) *ImageStore {
	_ = os.MkdirAll(basePath, 0755)
	return &ImageStore{basePath: basePath, baseURL: baseURL, secretKey: secretKey}
}

type UploadToken struct {
	Token     string    `json:"upload_token"`
	ExpiresAt time.Time `json:"expires_at"`
}

type StoredImage struct {
	Filename  string `json:"filename"`
	FilePath  string `json:"file_path"`
	PublicURL string `json:"public_url"`
	FileSize  int64  `json:"file_size"`
}

// IssueUploadToken returns a short-lived token bound to userID.
func (s *ImageStore) IssueUploadToken(userID uint) UploadToken {
	now := time.Now()
	return UploadToken{
		Token:     s.sign(userID, now.Unix()),
		ExpiresAt: now.Add(uploadTokenTTL),
	}
}

// SaveImage validates the token and writes the uploaded file under the
// user's directory. Only common image extensions are accepted.
func (s *ImageStore) SaveImage(userID uint, file multipart.File, header *multipart.FileHeader, token string) (*StoredImage, error) {
	if !s.validToken(token, userID) {
		return nil, fmt.Errorf("%w: invalid upload token", ErrInvalidRequest)
	}
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !slices.Contains([]string{".jpg", ".jpeg", ".png", ".gif", ".webp"}, ext) {
		return nil, fmt.Errorf("%w: only JPG, PNG, GIF, WEBP allowed", ErrInvalidRequest)
	}
	if header.Size > maxImageSize {
		return nil, fmt.Errorf("%w: file too large, maximum size is 5MB", ErrInvalidRequest)
	}

	userDir := filepath.Join(s.basePath, strconv.Itoa(int(userID)))
	if err := os.MkdirAll(userDir, 0755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	filename := fmt.Sprintf("avatar_%d%s", time.Now().Unix(), ext)
	dst, err := os.Create(filepath.Join(userDir, filename))
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, file); err != nil {
		return nil, fmt.Errorf("save file: %w", err)
	}

	relativePath := fmt.Sprintf("%d/%s", userID, filename)
	return &StoredImage{
		Filename:  filename,
		FilePath:  relativePath,
		PublicURL: fmt.Sprintf("%s/%s", s.baseURL, relativePath),
		FileSize:  header.Size,
	}, nil
}

// DeleteImage removes a stored file; a missing file is not an error.
func (s *ImageStore) DeleteImage(imagePath string) error {
	if imagePath == "" {
		return nil
	}
	fullPath := filepath.Join(s.basePath, imagePath)
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		return nil
	}
	return os.Remove(fullPath)
}

func (s *ImageStore) sign(userID uint, timestamp int64) string {
	h := hmac.New(sha256.New, []byte(s.secretKey))
	fmt.Fprintf(h, "%d:%d", userID, timestamp)
	return fmt.Sprintf("%d.%d.%s", userID, timestamp, hex.EncodeToString(h.Sum(nil)))
}

func (s *ImageStore) validToken(token string, userID uint) bool {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return false
	}
	tokenUserID, _ := strconv.ParseUint(parts[0], 10, 32)
	timestamp, _ := strconv.ParseInt(parts[1], 10, 64)
	if uint(tokenUserID) != userID {
		return false
	}
	if time.Since(time.Unix(timestamp, 0)) > uploadTokenTTL {
		return false
	}
	expected := strings.Split(s.sign(userID, timestamp), ".")
	return hmac.Equal([]byte(parts[2]), []byte(expected[2]))
}
