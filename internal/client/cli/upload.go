package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"os"
	"path/filepath"
)

var errUploadUsage = errors.New("usage: upload <path>")

// readFile is a test seam for os.ReadFile.
var readFile = os.ReadFile

// Upload sends a local image. The content type comes from the file extension,
// or from the leading bytes when the extension is unknown.
func (a *App) Upload(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUploadUsage
	}
	path := args[0]

	data, err := readFile(path)
	if err != nil {
		return err
	}

	contentType := mime.TypeByExtension(filepath.Ext(path))
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	res, err := a.api.Upload(ctx, filepath.Base(path), contentType, bytes.NewReader(data))
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Uploaded as", res.Key)
	fmt.Fprintln(a.out, "Download link (valid 15 minutes):", res.URL)
	return nil
}
