package services

import (
	"bytes"
	"errors"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) *ImageStore {
	t.Helper()
	return NewImageStore(t.TempDir(), "http://localhost:5000/uploads/profiles", "unit-secret")
}

func multipartImage(t *testing.T, filename string, content []byte) (multipart.File, *multipart.FileHeader) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write(content); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	_ = w.Close()

	req := httptest.NewRequest("POST", "/", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	file, header, err := req.FormFile("image")
	if err != nil {
		t.Fatalf("parse form file: %v", err)
	}
	return file, header
}

func TestUploadTokenRoundTrip(t *testing.T) {
	s := newTestStore(t)

	tok := s.IssueUploadToken(42)
	if !s.validToken(tok.Token, 42) {
		t.Fatalf("expected freshly issued token to validate")
	}
	// bound to the issuing user
	if s.validToken(tok.Token, 43) {
		t.Fatalf("expected token to fail for another user")
	}
	// tampering breaks the signature
	tampered := strings.Replace(tok.Token, "42.", "43.", 1)
	if s.validToken(tampered, 43) {
		t.Fatalf("expected tampered token to fail")
	}
	if s.validToken("garbage", 42) {
		t.Fatalf("expected malformed token to fail")
	}
}

func TestSaveImage(t *testing.T) {
	s := newTestStore(t)
	tok := s.IssueUploadToken(7)

	file, header := multipartImage(t, "photo.png", []byte("pngdata"))
	defer file.Close()

	stored, err := s.SaveImage(7, file, header, tok.Token)
	if err != nil {
		t.Fatalf("save image: %v", err)
	}
	if !strings.HasPrefix(stored.PublicURL, "http://localhost:5000/uploads/profiles/7/") {
		t.Fatalf("unexpected public url %s", stored.PublicURL)
	}
	onDisk := filepath.Join(s.basePath, stored.FilePath)
	data, err := os.ReadFile(onDisk)
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if string(data) != "pngdata" {
		t.Fatalf("stored content mismatch")
	}
}

func TestSaveImageRejectsBadInput(t *testing.T) {
	s := newTestStore(t)
	tok := s.IssueUploadToken(7)

	file, header := multipartImage(t, "script.sh", []byte("#!/bin/sh"))
	defer file.Close()
	if _, err := s.SaveImage(7, file, header, tok.Token); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad extension, got %v", err)
	}

	file2, header2 := multipartImage(t, "photo.png", []byte("pngdata"))
	defer file2.Close()
	if _, err := s.SaveImage(7, file2, header2, "bogus-token"); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected ErrInvalidRequest for bad token, got %v", err)
	}
}
