// Package assets serves the page and its static files from a pluggable
// source.
//
// Three sources are provided:
//
//	assets.Embedded()                      // files bundled into the binary
//	assets.Dir("./web")                    // a directory on disk
//	assets.S3(client, "my-bucket", "site/") // objects in an S3 bucket
//
// Handler serves any Source over HTTP:
//
//	r.Handle("/*", assets.Handler(src, assets.WithCacheControl(assets.CacheProduction)))
package assets

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"os"
	"path"
	"time"

	"github.com/vango-dev/catsite/web"
)

// ErrNotFound is returned when a source has no file of the given name.
var ErrNotFound = errors.New("assets: not found")

// Info describes an opened file.
type Info struct {
	Size        int64
	ModTime     time.Time
	ContentType string
}

// Source opens static files by slash-separated relative name.
type Source interface {
	Open(ctx context.Context, name string) (io.ReadCloser, Info, error)
}

// ContentType returns the MIME type for a file name, defaulting to
// application/octet-stream.
func ContentType(name string) string {
	if ct := mime.TypeByExtension(path.Ext(name)); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// FS returns a source reading from fsys.
func FS(fsys fs.FS) Source {
	return &fsSource{fsys: fsys}
}

// Embedded returns a source reading the page bundled into the binary.
func Embedded() Source {
	return FS(web.Files())
}

// Dir returns a source reading from a directory on disk.
func Dir(dir string) Source {
	return FS(os.DirFS(dir))
}

type fsSource struct {
	fsys fs.FS
}

func (s *fsSource) Open(ctx context.Context, name string) (io.ReadCloser, Info, error) {
	if err := ctx.Err(); err != nil {
		return nil, Info{}, err
	}
	f, err := s.fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || errors.Is(err, fs.ErrInvalid) {
			return nil, Info{}, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, Info{}, err
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, Info{}, err
	}
	if st.IsDir() {
		f.Close()
		return nil, Info{}, fmt.Errorf("%w: %s is a directory", ErrNotFound, name)
	}
	return f, Info{
		Size:        st.Size(),
		ModTime:     st.ModTime(),
		ContentType: ContentType(name),
	}, nil
}
