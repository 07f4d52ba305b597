package utils

import (
	"bytes"

	"github.com/mapcase/mapgeo_browser/config"

	"golang.org/x/text/transform"
)

func BytesToString(bs []byte) string {
	n := bytes.IndexByte(bs, 0)
	if n < 0 {
		n = len(bs)
	}

	s, _, err := transform.Bytes(config.GetEncoding().NewDecoder(), bs[0:n])
	if err != nil {
		panic(err)
	}

	return string(s)
}

func StringToBytes(s string, nilTerminate bool) []byte {
	bs, _, err := transform.Bytes(config.GetEncoding().NewEncoder(), []byte(s))
	if err != nil {
		panic(err)
	}

	if nilTerminate {
		bs = append(bs, 0)
	}
	return bs
}
