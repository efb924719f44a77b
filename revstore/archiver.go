package revstore

import (
	"context"
	"io"
	"sync"

	"github.com/datatrails/go-datatrails-common/azblob"
	"github.com/datatrails/go-datatrails-common/logger"
)

// archiveStore is the narrow blob surface the archiver needs. The
// datatrails azblob stores satisfy it directly; tests substitute fakes.
type archiveStore interface {
	Reader(
		ctx context.Context,
		identity string,
		opts ...azblob.Option,
	) (*azblob.ReaderResponse, error)
	Put(
		ctx context.Context,
		identity string,
		source io.ReadSeekCloser,
		opts ...azblob.Option,
	) (*azblob.WriteResponse, error)
}

// Archiver mirrors saved documents into a blob store, one blob per document
// id under a fixed prefix. It is an off-box copy of the encoded trees, not a
// source of truth; the record store remains authoritative.
type Archiver struct {
	log    logger.Logger
	store  archiveStore
	prefix string

	mu sync.Mutex
	// last etag seen per document, used to guard against racy overwrites
	etags map[string]string
}

func NewArchiver(log logger.Logger, store archiveStore, prefix string) *Archiver {
	return &Archiver{
		log:    log,
		store:  store,
		prefix: prefix,
		etags:  map[string]string{},
	}
}

func (a *Archiver) blobPath(docID string) string {
	return a.prefix + docID
}

// Archive writes the encoded document record for docID.
//
// CRITICAL: writes are etag guarded. When we have read or written the blob
// before, the write must match the etag we last saw; a first write requires
// that no blob exists at all. A racing writer therefore surfaces as a store
// error rather than a silent overwrite.
func (a *Archiver) Archive(ctx context.Context, docID string, record []byte) error {
	a.mu.Lock()
	etag, known := a.etags[docID]
	a.mu.Unlock()

	var opts []azblob.Option
	if known {
		opts = append(opts, azblob.WithEtagMatch(etag))
	} else {
		// The way to spell 'fail if the blob exists' is to require that no
		// etag matches.
		opts = append(opts, azblob.WithEtagNoneMatch("*"))
	}

	_, err := a.store.Put(ctx, a.blobPath(docID), azblob.NewBytesReaderCloser(record), opts...)
	if err != nil {
		return err
	}
	a.log.Debugf("archived %q, %d bytes", docID, len(record))

	// Re-read to learn the new etag; the follow up write guards on it.
	_, err = a.readBlob(ctx, docID)
	return err
}

// Retrieve fetches the archived record for docID and remembers its etag.
func (a *Archiver) Retrieve(ctx context.Context, docID string) ([]byte, error) {
	return a.readBlob(ctx, docID)
}

func (a *Archiver) readBlob(ctx context.Context, docID string) ([]byte, error) {
	rr, err := a.store.Reader(ctx, a.blobPath(docID))
	if err != nil {
		return nil, err
	}
	data, err := io.ReadAll(rr.Reader)
	if err != nil {
		return nil, err
	}
	if rr.ETag != nil {
		a.mu.Lock()
		a.etags[docID] = *rr.ETag
		a.mu.Unlock()
	}
	return data, nil
}
