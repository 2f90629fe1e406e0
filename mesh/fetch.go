package mesh

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	getter "github.com/hashicorp/go-getter"
)

// Fetch returns a local path for src. Existing local files are used as is,
// anything else is downloaded into dir with go-getter (http, s3, gcs, git::
// and the other getter source forms).
func Fetch(ctx context.Context, src, dir string) (string, error) {
	if info, err := os.Stat(src); err == nil && !info.IsDir() {
		return src, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("fetch %s: %w", src, err)
	}

	name := filepath.Base(strings.SplitN(src, "?", 2)[0])
	if name == "" || name == "." || name == "/" {
		name = "input.obj"
	}
	dst := filepath.Join(dir, name)
	if err := getter.GetFile(dst, src, getter.WithContext(ctx)); err != nil {
		return "", fmt.Errorf("fetch %s: %w", src, err)
	}
	return dst, nil
}

// FetchObj fetches src and loads it as an OBJ mesh.
func FetchObj(ctx context.Context, src, dir string) (*ObjMesh, error) {
	p, err := Fetch(ctx, src, dir)
	if err != nil {
		return nil, err
	}
	return LoadObjFile(p)
}
