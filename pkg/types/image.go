package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Image references an uploaded object. Filename is the storage key.
type Image struct {
	URL      string `json:"url"`
	Filename string `json:"filename"`
}

// IsZero reports whether the image carries no reference.
func (i Image) IsZero() bool {
	return i.URL == "" && i.Filename == ""
}

// Thumbnail returns a resized variant URL for edit forms. param names the
// width query parameter of the resizing proxy in front of storage; when it is
// empty the original URL is returned.
func (i Image) Thumbnail(param string, width int) string {
	if i.URL == "" || param == "" || width <= 0 {
		return i.URL
	}
	sep := "?"
	if strings.Contains(i.URL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s=%d", i.URL, sep, url.QueryEscape(param), width)
}

func (i Image) Value() (driver.Value, error) {
	raw, err := json.Marshal(i)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}

func (i *Image) Scan(value interface{}) error {
	var raw []byte
	switch v := value.(type) {
	case nil:
		*i = Image{}
		return nil
	case string:
		raw = []byte(v)
	case []byte:
		raw = v
	default:
		return fmt.Errorf("image: unsupported scan type %T", value)
	}
	var decoded Image
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return fmt.Errorf("image: decode: %w", err)
	}
	*i = decoded
	return nil
}
