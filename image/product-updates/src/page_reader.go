package main

import (
	"errors"
	"os"
)

// PageReader loads custom error pages.
type PageReader interface {
	readPage(path string) (string, error)
}

type diskPageReader struct{}

func NewPageReader() PageReader {
	return diskPageReader{}
}

func (diskPageReader) readPage(path string) (string, error) {
	if path == "" {
		return "", errors.New("page path is empty")
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	return string(content), nil
}
