// Package images stores downloaded figure attachments on disk. Files are
// content addressed so re-running a conversion never duplicates data, and a
// small SQLite index maps (law ID, Fig src) pairs to stored files so repeated
// conversions skip the download entirely.
package images

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/h2non/filetype"
	"go.uber.org/zap"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	// decode-only formats seen in law attachments
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const schema = `CREATE TABLE IF NOT EXISTS attachments (
	law_id TEXT NOT NULL,
	src    TEXT NOT NULL,
	file   TEXT NOT NULL,
	PRIMARY KEY (law_id, src)
);`

// Cache is an on-disk attachment store. Not safe for concurrent use, a single
// conversion run owns it.
type Cache struct {
	dir      string
	conn     *sqlite.Conn
	maxWidth int
	log      *zap.Logger
}

// Open creates or opens the cache under dir. maxWidth > 0 downscales stored
// raster images wider than that, preserving aspect ratio.
func Open(dir string, maxWidth int, log *zap.Logger) (*Cache, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("unable to create image cache directory: %w", err)
	}

	conn, err := sqlite.OpenConn(filepath.Join(dir, "index.db"), sqlite.OpenReadWrite|sqlite.OpenCreate)
	if err != nil {
		return nil, fmt.Errorf("unable to open image cache index: %w", err)
	}
	if err := sqlitex.ExecuteTransient(conn, schema, nil); err != nil {
		conn.Close()
		return nil, fmt.Errorf("unable to initialize image cache index: %w", err)
	}
	return &Cache{dir: dir, conn: conn, maxWidth: maxWidth, log: log}, nil
}

func (c *Cache) Close() error {
	return c.conn.Close()
}

// Lookup returns the stored file name for a previously cached attachment.
func (c *Cache) Lookup(lawID, src string) (string, bool, error) {
	var file string
	err := sqlitex.Execute(c.conn,
		`SELECT file FROM attachments WHERE law_id = ? AND src = ?`,
		&sqlitex.ExecOptions{
			Args: []any{lawID, src},
			ResultFunc: func(stmt *sqlite.Stmt) error {
				file = stmt.ColumnText(0)
				return nil
			},
		})
	if err != nil {
		return "", false, fmt.Errorf("image cache lookup: %w", err)
	}
	if file == "" {
		return "", false, nil
	}
	if _, err := os.Stat(filepath.Join(c.dir, file)); err != nil {
		// index entry without a file, treat as missing
		return "", false, nil
	}
	return file, true, nil
}

// Store writes attachment data to the cache and returns the stored file name.
// The name is derived from the content hash, so identical figures referenced
// by different laws share one file.
func (c *Cache) Store(lawID, src string, data []byte) (string, error) {
	if len(data) == 0 {
		return "", fmt.Errorf("empty attachment data for %s", src)
	}

	data, ext := c.normalize(src, data)

	sum := sha256.Sum256(data)
	name := hex.EncodeToString(sum[:]) + ext

	path := filepath.Join(c.dir, name)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := os.WriteFile(path, data, 0644); err != nil {
			return "", fmt.Errorf("unable to write cached image: %w", err)
		}
	} else if err != nil {
		return "", err
	}

	err := sqlitex.Execute(c.conn,
		`INSERT OR REPLACE INTO attachments (law_id, src, file) VALUES (?, ?, ?)`,
		&sqlitex.ExecOptions{Args: []any{lawID, src, name}})
	if err != nil {
		return "", fmt.Errorf("image cache insert: %w", err)
	}
	return name, nil
}

// normalize sniffs the payload type and optionally downscales wide raster
// images. Payloads that cannot be decoded are stored untouched.
func (c *Cache) normalize(src string, data []byte) ([]byte, string) {
	ext := ".bin"
	if kind, err := filetype.Match(data); err == nil && kind != filetype.Unknown {
		ext = "." + kind.Extension
	} else if e := filepath.Ext(src); e != "" {
		ext = e
	}

	if c.maxWidth <= 0 || !filetype.IsImage(data) {
		return data, ext
	}

	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		c.log.Debug("Unable to decode image for resizing, keeping original",
			zap.String("src", src), zap.Error(err))
		return data, ext
	}
	if img.Bounds().Dx() <= c.maxWidth {
		return data, ext
	}

	format, err := imaging.FormatFromExtension(ext)
	if err != nil {
		// decodable but not re-encodable (e.g. webp), keep original
		return data, ext
	}

	resized := imaging.Resize(img, c.maxWidth, 0, imaging.Lanczos)
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, format); err != nil {
		c.log.Warn("Unable to encode resized image, keeping original",
			zap.String("src", src), zap.Error(err))
		return data, ext
	}
	c.log.Debug("Image resized",
		zap.String("src", src), zap.Int("was", img.Bounds().Dx()), zap.Int("now", c.maxWidth))
	return buf.Bytes(), ext
}
