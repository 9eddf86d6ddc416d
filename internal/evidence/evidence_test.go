package evidence_test

import (
	"attorneyhub/backend/internal/config"
	"attorneyhub/backend/internal/evidence"
	"attorneyhub/backend/internal/models"
	"attorneyhub/backend/internal/storage/storagemock"
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var (
	pdfBytes = []byte("%PDF-1.4\n1 0 obj\n<< /Type /Catalog >>\nendobj\ntrailer\n%%EOF\n")
	pngBytes = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R', 0, 0, 0, 1, 0, 0, 0, 1, 8, 2, 0, 0, 0}
	jpgBytes = []byte{0xff, 0xd8, 0xff, 0xe0, 0, 0x10, 'J', 'F', 'I', 'F', 0, 1, 1, 0, 0, 1, 0, 1, 0, 0}
	exeBytes = append([]byte("MZ\x90\x00\x03\x00\x00\x00\x04\x00\x00\x00\xff\xff\x00\x00"), make([]byte, 64)...)
)

func upload(name string, data []byte) *evidence.Upload {
	return &evidence.Upload{FileName: name, Size: int64(len(data)), Reader: bytes.NewReader(data)}
}

func TestValidate_AcceptsAllowedTypes(t *testing.T) {
	tests := []struct {
		name        string
		upload      *evidence.Upload
		contentType string
		fileName    string
	}{
		{"pdf", upload("contract.pdf", pdfBytes), "application/pdf", "contract.pdf"},
		{"png", upload("screen shot.png", pngBytes), "image/png", "screen-shot.png"},
		{"jpeg", upload("photo.jpeg", jpgBytes), "image/jpeg", "photo.jpg"},
		{"misnamed pdf", upload("notes.txt", pdfBytes), "application/pdf", "notes.pdf"},
		{"path in name", upload(`C:\Users\me\..\letter.pdf`, pdfBytes), "application/pdf", "letter.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := evidence.Validate(tt.upload)
			require.NoError(t, err)
			assert.Equal(t, tt.contentType, f.ContentType)
			assert.Equal(t, tt.fileName, f.Name)
		})
	}
}

func TestValidate_Rejects(t *testing.T) {
	big := make([]byte, config.MaxEvidenceSize+1)
	copy(big, pdfBytes)

	tests := []struct {
		name   string
		upload *evidence.Upload
		want   error
	}{
		{"nil upload", nil, evidence.ErrEmpty},
		{"empty file", upload("a.pdf", nil), evidence.ErrEmpty},
		{"declared too large", &evidence.Upload{FileName: "a.pdf", Size: 6 << 20, Reader: bytes.NewReader(pdfBytes)}, evidence.ErrTooLarge},
		{"actually too large", &evidence.Upload{FileName: "a.pdf", Size: 10, Reader: bytes.NewReader(big)}, evidence.ErrTooLarge},
		{"executable named pdf", upload("totally-a.pdf", exeBytes), evidence.ErrUnsupported},
		{"plain text", upload("a.pdf", []byte(strings.Repeat("just words ", 20))), evidence.ErrUnsupported},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := evidence.Validate(tt.upload)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestValidate_ExactlyAtLimitIsAccepted(t *testing.T) {
	data := make([]byte, config.MaxEvidenceSize)
	copy(data, pdfBytes)
	f, err := evidence.Validate(upload("max.pdf", data))
	require.NoError(t, err)
	assert.Equal(t, int64(config.MaxEvidenceSize), f.Size())
}

func TestLocalStore_RoundTrip(t *testing.T) {
	store, err := evidence.NewLocalStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	key := evidence.Key("c1", "a1", "letter.pdf")
	require.NoError(t, store.Put(ctx, key, "application/pdf", pdfBytes))

	rc, err := store.Open(ctx, key)
	require.NoError(t, err)
	defer rc.Close()
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, pdfBytes, got)

	assert.Error(t, store.Put(ctx, "../outside.pdf", "application/pdf", pdfBytes))
}

type memoryStore struct {
	objects map[string][]byte
	err     error
}

func (m *memoryStore) Put(_ context.Context, key, _ string, data []byte) error {
	if m.err != nil {
		return m.err
	}
	m.objects[key] = data
	return nil
}

func (m *memoryStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(m.objects[key])), nil
}

func TestAttacher_StoresAndLinks(t *testing.T) {
	st := new(storagemock.MockStorage)
	st.On("SaveAttachment", mock.Anything, mock.AnythingOfType("*models.Attachment")).Return(nil)
	st.On("SetComplaintEvidence", mock.Anything, "c1", mock.AnythingOfType("string")).Return(nil)
	files := &memoryStore{objects: map[string][]byte{}}

	a := evidence.NewAttacher(files, st)
	att, err := a.Attach(context.Background(), "c1", upload("letter.pdf", pdfBytes))
	require.NoError(t, err)

	assert.NotEmpty(t, att.ID)
	assert.Equal(t, "c1", att.ComplaintID)
	assert.Equal(t, "complaints/c1/"+att.ID+"-letter.pdf", att.StorageKey)
	assert.Equal(t, pdfBytes, files.objects[att.StorageKey])
	st.AssertCalled(t, "SetComplaintEvidence", mock.Anything, "c1", att.ID)
	saved := st.Calls[0].Arguments.Get(1).(*models.Attachment)
	assert.Equal(t, int64(len(pdfBytes)), saved.Size)
}

func TestAttacher_StoreFailureSkipsRecords(t *testing.T) {
	st := new(storagemock.MockStorage)
	a := evidence.NewAttacher(&memoryStore{err: errors.New("disk full")}, st)

	_, err := a.Attach(context.Background(), "c1", upload("letter.pdf", pdfBytes))
	assert.Error(t, err)
	st.AssertNotCalled(t, "SaveAttachment", mock.Anything, mock.Anything)
}
