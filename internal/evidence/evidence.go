// Package evidence validates and stores files attached to complaints.
package evidence

import (
	"attorneyhub/backend/internal/config"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrEmpty       = errors.New("evidence file is empty")
	ErrTooLarge    = errors.New("evidence file exceeds the size limit")
	ErrUnsupported = errors.New("evidence file type is not allowed")
)

// Upload is a file received with a complaint. Size is the size the client
// declared; the content is re-measured while reading.
type Upload struct {
	FileName string
	Size     int64
	Reader   io.Reader
}

// File is a validated upload held in memory.
type File struct {
	Name        string
	ContentType string
	Extension   string
	Data        []byte
}

func (f *File) Size() int64 { return int64(len(f.Data)) }

// Validate reads the upload and checks its size and sniffed content type.
// The declared file name plays no part in the type decision.
func Validate(u *Upload) (*File, error) {
	if u == nil || u.Reader == nil {
		return nil, ErrEmpty
	}
	if u.Size > config.MaxEvidenceSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrTooLarge, u.Size)
	}

	data, err := io.ReadAll(io.LimitReader(u.Reader, config.MaxEvidenceSize+1))
	if err != nil {
		return nil, fmt.Errorf("read evidence: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	if len(data) > config.MaxEvidenceSize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, config.MaxEvidenceSize)
	}

	mt := mimetype.Detect(data)
	contentType, ext, ok := allowedType(mt)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, mt.String())
	}

	return &File{
		Name:        cleanName(u.FileName, ext),
		ContentType: contentType,
		Extension:   ext,
		Data:        data,
	}, nil
}

func allowedType(mt *mimetype.MIME) (string, string, bool) {
	for ; mt != nil; mt = mt.Parent() {
		base, _, _ := strings.Cut(mt.String(), ";")
		if ext, ok := config.AllowedEvidenceTypes[base]; ok {
			return base, ext, true
		}
	}
	return "", "", false
}

// cleanName keeps the base name of the client's file and forces the
// extension of the sniffed type.
func cleanName(name, ext string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.TrimSuffix(name, filepath.Ext(name))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			return r
		case r == ' ' || r == '.':
			return '-'
		}
		return -1
	}, name)
	if name == "" || name == "-" {
		name = "evidence"
	}
	return name + ext
}

// Store persists evidence bytes under a key.
type Store interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
}

// Key is the storage key of an attachment.
func Key(complaintID, attachmentID, fileName string) string {
	return filepath.ToSlash(filepath.Join("complaints", complaintID, attachmentID+"-"+fileName))
}
