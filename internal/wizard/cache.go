package wizard

import "sync"

// DocumentCache keeps the locally cached representations of generated
// documents and the document list consistent after mutations. Entries are
// session-scoped; there is no durable backing.
type DocumentCache struct {
	mu        sync.RWMutex
	docs      map[string]Document
	list      []Document
	listValid bool
}

// NewDocumentCache constructs an empty cache.
func NewDocumentCache() *DocumentCache {
	return &DocumentCache{docs: make(map[string]Document)}
}

// GetDocument returns the cached document, if present.
func (c *DocumentCache) GetDocument(id string) (Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	doc, ok := c.docs[id]
	return doc, ok
}

// PutDocument stores the latest representation of a document and marks the
// list stale, since its entry for this document no longer matches.
func (c *DocumentCache) PutDocument(doc Document) {
	if doc.ID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs[doc.ID] = doc
	c.listValid = false
}

// InvalidateDocument drops the cached entry for one document.
func (c *DocumentCache) InvalidateDocument(id string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.docs, id)
}

// List returns the cached document list and whether it is still valid.
func (c *DocumentCache) List() ([]Document, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.listValid {
		return nil, false
	}
	out := make([]Document, len(c.list))
	copy(out, c.list)
	return out, true
}

// PutList replaces the cached document list.
func (c *DocumentCache) PutList(docs []Document) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = make([]Document, len(docs))
	copy(c.list, docs)
	c.listValid = true
}

// InvalidateList marks the document list stale.
func (c *DocumentCache) InvalidateList() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
	c.listValid = false
}
