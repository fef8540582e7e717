package storage

import "io"

// Blob store key prefixes, mirroring the media layout the frontend expects.
const (
	VoucherDir   = "requisition_vouchers"
	PODir        = "purchase_orders"
	SignatureDir = "signatures"
)

// Store is a key-addressed blob store for generated PDFs and uploaded
// signature images. Keys are slash-separated relative paths.
type Store interface {
	Save(key string, data []byte) error
	Open(key string) (io.ReadCloser, error)
	Read(key string) ([]byte, error)
	Exists(key string) bool
	URL(key string) string
}
