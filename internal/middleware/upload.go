package middleware

import (
	"errors"        // Error inspection
	"net/http"      // Body size limit
	"os"            // Upload directory
	"path/filepath" // File names
	"strings"       // Extension matching

	"wallet_api/internal/apperr" // Typed errors

	"github.com/gabriel-vasile/mimetype" // Content sniffing
	"github.com/gin-gonic/gin"           // Gin web framework
	"github.com/google/uuid"             // Stored file names
)

// UploadURLPrefix is the public path uploaded files are served under
const UploadURLPrefix = "/uploads/"

// Accepted image extensions and the MIME types sniffed from their content
var (
	imageExtensions = map[string]bool{".svg": true, ".jpg": true, ".jpeg": true, ".png": true, ".webp": true}
	imageMIMEs      = []string{"image/svg+xml", "image/jpeg", "image/png", "image/webp"}
)

// UploadedFile describes a file stored by SingleImage
type UploadedFile struct {
	Name string // Stored file name
	Path string // Location on disk
	URL  string // Public path
	MIME string // Sniffed content type
	Size int64  // Size in bytes
}

// UploadFrom returns the file stored by SingleImage
func UploadFrom(c *gin.Context) (UploadedFile, bool) {
	v, ok := c.Get(uploadKey)
	if !ok {
		return UploadedFile{}, false
	}
	f, ok := v.(UploadedFile)
	return f, ok
}

// SingleImage accepts one image in the multipart field and stores it in dir
// under a random name. Files above maxSize or of another type are rejected.
func SingleImage(field, dir string, maxSize int64) gin.HandlerFunc {
	tooLarge := apperr.Validation("File too large", apperr.FieldError{Field: field, Rule: "max"})
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxSize+1<<20) // Room for multipart framing
		fh, err := c.FormFile(field)
		if err != nil {
			var maxErr *http.MaxBytesError
			if errors.As(err, &maxErr) {
				Abort(c, tooLarge)
				return
			}
			Abort(c, apperr.Validation("An image file is required", apperr.FieldError{Field: field, Rule: "required"}))
			return
		}
		if fh.Size > maxSize {
			Abort(c, tooLarge)
			return
		}

		ext := strings.ToLower(filepath.Ext(fh.Filename))
		invalid := apperr.Validation("Only svg, jpg, png and webp images are allowed", apperr.FieldError{Field: field, Rule: "image"})
		if !imageExtensions[ext] {
			Abort(c, invalid)
			return
		}
		f, err := fh.Open()
		if err != nil {
			Abort(c, err)
			return
		}
		mtype, err := mimetype.DetectReader(f)
		f.Close()
		if err != nil {
			Abort(c, err)
			return
		}
		if !mimetype.EqualsAny(mtype.String(), imageMIMEs...) {
			Abort(c, invalid)
			return
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			Abort(c, err)
			return
		}
		name := uuid.NewString() + ext
		path := filepath.Join(dir, name)
		if err := c.SaveUploadedFile(fh, path); err != nil {
			Abort(c, err)
			return
		}
		c.Set(uploadKey, UploadedFile{Name: name, Path: path, URL: UploadURLPrefix + name, MIME: mtype.String(), Size: fh.Size})
		c.Next()
	}
}
