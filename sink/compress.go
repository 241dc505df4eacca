package sink

import (
	"io"
	"os"

	"github.com/klauspost/compress/gzip"
	"go.uber.org/multierr"
)

const gzipSuffix = ".gz"

// compressFile replaces path with path.gz.
func compressFile(path string) (err error) {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, src.Close()) }()

	dst, err := os.OpenFile(path+gzipSuffix, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return err
	}

	zw := gzip.NewWriter(dst)
	_, copyErr := io.Copy(zw, src)
	if err := multierr.Combine(copyErr, zw.Close(), dst.Sync(), dst.Close()); err != nil {
		_ = os.Remove(path + gzipSuffix)
		return err
	}
	return os.Remove(path)
}
