package httpserver

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/bryanwahyu/healthinsure-ai/internal/middleware"
)

// multipartMemory is how much of a multipart body is kept in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

// scalar accepts a JSON string, number, boolean or null as text, so clients
// may send {"age": 30} or {"age": "30"}.
type scalar string

func (s *scalar) UnmarshalJSON(b []byte) error {
	switch {
	case len(b) == 0 || string(b) == "null":
		*s = ""
	case b[0] == '"':
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = scalar(v)
	case b[0] == '{' || b[0] == '[':
		return fmt.Errorf("expected a string or number")
	default:
		*s = scalar(b)
	}
	return nil
}

// fields is a request body flattened to named values, read from JSON, a
// urlencoded form or a multipart form.
type fields struct {
	values map[string]string
	files  map[string]*multipart.FileHeader
}

// get returns the first non-empty value among the given names.
func (f *fields) get(names ...string) string {
	for _, n := range names {
		if v := f.values[n]; v != "" {
			return v
		}
	}
	return ""
}

func (f *fields) flag(names ...string) bool {
	switch strings.ToLower(strings.TrimSpace(f.get(names...))) {
	case "true", "1", "yes", "on":
		return true
	}
	return false
}

type uploadedFile struct {
	*multipart.FileHeader
	ContentType string
}

func (u uploadedFile) read() ([]byte, error) {
	file, err := u.Open()
	if err != nil {
		return nil, err
	}
	defer file.Close()
	return io.ReadAll(file)
}

// file returns a non-empty uploaded file part.
func (f *fields) file(name string) (uploadedFile, bool) {
	fh, ok := f.files[name]
	if !ok || fh == nil || (fh.Filename == "" && fh.Size == 0) {
		return uploadedFile{}, false
	}
	return uploadedFile{FileHeader: fh, ContentType: fh.Header.Get("Content-Type")}, true
}

func (r *Router) readFields(w http.ResponseWriter, req *http.Request) (*fields, error) {
	req.Body = http.MaxBytesReader(w, req.Body, r.maxUpload)
	f := &fields{values: map[string]string{}, files: map[string]*multipart.FileHeader{}}

	mediaType, _, _ := mime.ParseMediaType(req.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var raw map[string]scalar
		if err := json.NewDecoder(req.Body).Decode(&raw); err != nil {
			var tooLarge *http.MaxBytesError
			switch {
			case errors.As(err, &tooLarge):
				return nil, err
			case errors.Is(err, io.EOF):
				return f, nil
			default:
				return nil, &badRequestError{msg: "invalid JSON body"}
			}
		}
		for k, v := range raw {
			f.values[k] = middleware.SanitizeString(string(v))
		}
	case "multipart/form-data":
		if err := req.ParseMultipartForm(multipartMemory); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, &badRequestError{msg: "invalid multipart form"}
		}
		for k, vs := range req.MultipartForm.Value {
			if len(vs) > 0 {
				f.values[k] = middleware.SanitizeString(vs[0])
			}
		}
		for k, fhs := range req.MultipartForm.File {
			if len(fhs) > 0 {
				f.files[k] = fhs[0]
			}
		}
	default:
		if err := req.ParseForm(); err != nil {
			var tooLarge *http.MaxBytesError
			if errors.As(err, &tooLarge) {
				return nil, err
			}
			return nil, &badRequestError{msg: "invalid form body"}
		}
		for k := range req.PostForm {
			f.values[k] = middleware.SanitizeString(req.PostForm.Get(k))
		}
	}
	return f, nil
}
