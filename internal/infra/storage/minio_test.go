package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "application/pdf", contentTypeFor("a/b.PDF"))
	assert.Equal(t, "text/csv", contentTypeFor("data.csv"))
	assert.Equal(t, "application/octet-stream", contentTypeFor("noext"))
}

func TestObjectURL(t *testing.T) {
	assert.Equal(t, "http://minio:9000/uploads/s1/x.pdf", ObjectURL("minio:9000", "uploads", "s1/x.pdf"))
}
