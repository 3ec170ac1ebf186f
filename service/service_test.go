package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/mddocs/service/vo"
	"github.com/foomo/mddocs/store"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []string
	data   []any
}

func (p *recordingPublisher) Publish(event string, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	p.data = append(p.data, data)
}

func newTestService(t *testing.T, settings Settings) (Service, *recordingPublisher, string) {
	t.Helper()
	root := t.TempDir()
	st, err := store.New(root)
	require.NoError(t, err)
	pub := &recordingPublisher{}
	return NewService(st, settings, pub), pub, root
}

func TestCreateDocument(t *testing.T) {
	svc, pub, _ := newTestService(t, Settings{})

	resp, err := svc.CreateDocument(context.Background(), vo.CreateRequest{FilePath: "new/page", Content: "# Hi"})
	require.NoError(t, err)
	assert.Equal(t, &vo.CreateResponse{Success: true, Path: "/new/page"}, resp)
	assert.Equal(t, []string{EventDocumentCreated}, pub.events)
	assert.Equal(t, map[string]string{"path": "/new/page"}, pub.data[0])

	doc, err := svc.GetDocument(context.Background(), "new/page")
	require.NoError(t, err)
	assert.Equal(t, vo.Markdown("# Hi"), doc.Markdown)
}

func TestCreateDocumentConflict(t *testing.T) {
	svc, pub, _ := newTestService(t, Settings{})

	_, err := svc.CreateDocument(context.Background(), vo.CreateRequest{FilePath: "new/page", Content: "# Hi"})
	require.NoError(t, err)
	_, err = svc.CreateDocument(context.Background(), vo.CreateRequest{FilePath: "new/page", Content: "# Other"})
	require.ErrorIs(t, err, store.ErrConflict)
	assert.False(t, IsValidation(err))
	assert.Len(t, pub.events, 1)

	doc, err := svc.GetDocument(context.Background(), "new/page")
	require.NoError(t, err)
	assert.Equal(t, vo.Markdown("# Hi"), doc.Markdown)
}

func TestCreateDocumentValidation(t *testing.T) {
	svc, pub, _ := newTestService(t, Settings{})

	tests := map[string]struct {
		req     vo.CreateRequest
		message string
	}{
		"empty path":      {req: vo.CreateRequest{Content: "x"}, message: msgFieldsRequired},
		"empty content":   {req: vo.CreateRequest{FilePath: "x"}, message: msgFieldsRequired},
		"traversal":       {req: vo.CreateRequest{FilePath: "../x", Content: "x"}, message: msgInvalidPath},
		"only slashes":    {req: vo.CreateRequest{FilePath: "///", Content: "x"}, message: msgInvalidPath},
		"unknown format":  {req: vo.CreateRequest{FilePath: "x", Content: "x", Format: "rst"}},
		"import disabled": {req: vo.CreateRequest{FilePath: "x", SourceURL: "https://example.com"}},
	}
	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := svc.CreateDocument(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, IsValidation(err), err.Error())
			if tt.message != "" {
				assert.Equal(t, tt.message, ValidationMessage(err))
			} else {
				assert.NotEmpty(t, ValidationMessage(err))
			}
		})
	}
	assert.Empty(t, pub.events)
}

func TestCreateDocumentFromHTML(t *testing.T) {
	svc, _, root := newTestService(t, Settings{})

	_, err := svc.CreateDocument(context.Background(), vo.CreateRequest{
		FilePath: "imported",
		Format:   vo.FormatHTML,
		Selector: "article",
		Content:  `<html><head><title>Imported: Page</title></head><body><nav>x</nav><article><h2>Hello</h2></article></body></html>`,
	})
	require.NoError(t, err)

	raw, err := os.ReadFile(filepath.Join(root, "imported.md"))
	require.NoError(t, err)
	assert.Contains(t, string(raw), "## Hello")

	doc, err := svc.GetDocument(context.Background(), "imported")
	require.NoError(t, err)
	assert.Equal(t, "Imported: Page", doc.Title)
	assert.Contains(t, string(doc.Markdown), "## Hello")
	assert.NotContains(t, string(doc.Markdown), "title:")
}

func TestCreateDocumentFromHTMLBadSelector(t *testing.T) {
	svc, _, _ := newTestService(t, Settings{})

	_, err := svc.CreateDocument(context.Background(), vo.CreateRequest{
		FilePath: "imported",
		Format:   vo.FormatHTML,
		Selector: "#nope",
		Content:  `<p>hi</p>`,
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestCreateDocumentFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><main><p>remote body</p></main></body></html>`))
	}))
	defer srv.Close()

	svc, _, _ := newTestService(t, Settings{AllowImport: true, HTTPClient: srv.Client()})

	resp, err := svc.CreateDocument(context.Background(), vo.CreateRequest{
		FilePath:  "remote/page",
		SourceURL: srv.URL,
		Selector:  "main",
	})
	require.NoError(t, err)
	assert.Equal(t, "/remote/page", resp.Path)

	doc, err := svc.GetDocument(context.Background(), "remote/page")
	require.NoError(t, err)
	assert.Equal(t, "Page", doc.Title)
	assert.Contains(t, string(doc.Markdown), "remote body")

	_, err = svc.CreateDocument(context.Background(), vo.CreateRequest{
		FilePath:  "remote/other",
		SourceURL: "ftp://example.com/file",
	})
	require.Error(t, err)
	assert.True(t, IsValidation(err))
}

func TestListDocuments(t *testing.T) {
	svc, _, _ := newTestService(t, Settings{})
	for _, p := range []string{"b", "a", "dir/c"} {
		_, err := svc.CreateDocument(context.Background(), vo.CreateRequest{FilePath: p, Content: "x"})
		require.NoError(t, err)
	}

	tree, err := svc.ListDocuments(context.Background())
	require.NoError(t, err)
	var slugs []string
	for _, d := range tree.Flatten() {
		slugs = append(slugs, d.Slug)
	}
	assert.Equal(t, []string{"a", "b", "dir/c"}, slugs)
}
