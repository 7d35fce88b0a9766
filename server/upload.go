package server

import (
	"encoding/base64"
	"io/ioutil"

	"github.com/gin-gonic/gin"
	"github.com/pkg/errors"

	"github.com/wrenhq/wren/model"
)

// maxImageBytes bounds accepted uploads.
const maxImageBytes = 8 << 20

// imageFromForm reads an optional uploaded image from a multipart form and
// returns it as an inline data-URI reference. The core only ever stores the
// reference string; swapping in an object store later means changing this
// one function. Returns "" with no error when the field is absent.
func imageFromForm(c *gin.Context, field string) (string, error) {
	header, err := c.FormFile(field)
	if err != nil {
		// No file attached.
		return "", nil
	}
	if header.Size > maxImageBytes {
		return "", errors.Wrap(model.ErrValidation, "image too large")
	}

	file, err := header.Open()
	if err != nil {
		return "", errors.Wrap(model.ErrValidation, "unreadable image upload")
	}
	defer file.Close()

	raw, err := ioutil.ReadAll(file)
	if err != nil {
		return "", errors.Wrap(model.ErrValidation, "unreadable image upload")
	}

	mime := header.Header.Get("Content-Type")
	if mime == "" {
		mime = "application/octet-stream"
	}
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(raw), nil
}
