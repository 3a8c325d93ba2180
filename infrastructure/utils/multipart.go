package utils

import (
	"io"
	"mime/multipart"
)

// StreamMultipart encodes r as a single multipart file field without buffering it in memory.
// Extra form fields are written before the file part. The returned reader must be consumed
// or closed for the writer goroutine to exit.
func StreamMultipart(field, fileName string, r io.Reader, fields map[string]string) (io.ReadCloser, string) {
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeMultipart(mw, field, fileName, r, fields)
		if cerr := mw.Close(); err == nil {
			err = cerr
		}
		pw.CloseWithError(err)
	}()
	return pr, mw.FormDataContentType()
}

func writeMultipart(mw *multipart.Writer, field, fileName string, r io.Reader, fields map[string]string) error {
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			return err
		}
	}
	part, err := mw.CreateFormFile(field, fileName)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, r)
	return err
}
