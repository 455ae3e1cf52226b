package main

import (
	"bufio"
	"context"
	"fmt"
	"image/png"
	"io"
	"os"
	"path"
	"strings"

	"spheretrace/sampleimage"

	"cloud.google.com/go/storage"
	googleopt "google.golang.org/api/option"
)

// parseGCSPath splits gs://bucket/object.  ok is false for anything else.
func parseGCSPath(name string) (bucket, object string, ok bool) {
	rest := strings.TrimPrefix(name, "gs://")
	if rest == name {
		return "", "", false
	}
	slash := strings.Index(rest, "/")
	if slash <= 0 || slash == len(rest)-1 {
		return "", "", false
	}
	return rest[:slash], rest[slash+1:], true
}

func contentType(name string) (string, error) {
	switch strings.ToLower(path.Ext(name)) {
	case ".png":
		return "image/png", nil
	case ".ppm":
		return "image/x-portable-pixmap", nil
	}
	return "", fmt.Errorf("unsupported output format %q; use .png or .ppm", path.Ext(name))
}

// encodeImage writes pix in the format named by the extension of name.
func encodeImage(w io.Writer, name string, pix *sampleimage.PixelBuffer) error {
	ct, err := contentType(name)
	if err != nil {
		return err
	}

	switch ct {
	case "image/png":
		if err := png.Encode(w, pix.ToRGBA()); err != nil {
			return fmt.Errorf("while encoding png: %w", err)
		}
	case "image/x-portable-pixmap":
		if err := writePPM(w, pix); err != nil {
			return fmt.Errorf("while encoding ppm: %w", err)
		}
	}
	return nil
}

// writePPM writes pix as a plain-text (P3) pixmap, top row first.
func writePPM(w io.Writer, pix *sampleimage.PixelBuffer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "P3\n%d %d\n255\n", pix.ColSize, pix.RowSize)
	for _, p := range pix.Pix {
		fmt.Fprintf(bw, "%d %d %d\n", p[0], p[1], p[2])
	}
	return bw.Flush()
}

// writeOutput stores the rendered image at name, which is either a local
// path or a gs://bucket/object URL.
func writeOutput(ctx context.Context, name string, pix *sampleimage.PixelBuffer) error {
	ct, err := contentType(name)
	if err != nil {
		return err
	}

	if bucket, object, ok := parseGCSPath(name); ok {
		gcs, err := storage.NewClient(ctx, googleopt.WithGRPCConnectionPool(1))
		if err != nil {
			return fmt.Errorf("while creating GCS client: %w", err)
		}
		defer gcs.Close()

		w := gcs.Bucket(bucket).Object(object).NewWriter(ctx)
		w.ContentType = ct
		if err := encodeImage(w, name, pix); err != nil {
			w.Close()
			return err
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("while finishing upload to %s: %w", name, err)
		}
		return nil
	}

	out, err := os.Create(name)
	if err != nil {
		return fmt.Errorf("while opening output file: %w", err)
	}
	if err := encodeImage(out, name, pix); err != nil {
		out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("while closing output file: %w", err)
	}
	return nil
}
