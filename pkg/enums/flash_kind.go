package enums

import "fmt"

// FlashKind classifies one-shot messages shown after a redirect.
type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
)

func (k FlashKind) String() string {
	return string(k)
}

func (k FlashKind) IsValid() bool {
	return k == FlashSuccess || k == FlashError
}

func ParseFlashKind(value string) (FlashKind, error) {
	kind := FlashKind(value)
	if !kind.IsValid() {
		return "", fmt.Errorf("invalid flash kind %q", value)
	}
	return kind, nil
}
