package main

import (
	"bytes"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode"
)

// readInput reads the named file, or in when no file is given or it is "-".
func readInput(args []string, in io.Reader) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}
	return data, nil
}

// unwrapWire turns text-armoured input back into serialized bytes. Hex and
// base64 input may contain whitespace anywhere.
func unwrapWire(data []byte, format string) ([]byte, error) {
	switch format {
	case "raw":
		return data, nil
	case "hex":
		out, err := hex.DecodeString(stripSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("decode hex input: %w", err)
		}
		return out, nil
	case "base64":
		out, err := base64.StdEncoding.DecodeString(stripSpace(string(data)))
		if err != nil {
			return nil, fmt.Errorf("decode base64 input: %w", err)
		}
		return out, nil
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

// wrapWire renders serialized bytes in format. Text formats end in a newline.
func wrapWire(data []byte, format string) ([]byte, error) {
	switch format {
	case "raw":
		return data, nil
	case "hex":
		return []byte(hex.EncodeToString(data) + "\n"), nil
	case "base64":
		return []byte(base64.StdEncoding.EncodeToString(data) + "\n"), nil
	}
	return nil, fmt.Errorf("unknown output format %q", format)
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// trimJSON drops a UTF-8 byte order mark some editors prepend.
func trimJSON(data []byte) []byte {
	return bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
}
