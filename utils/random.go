package utils

import (
	"crypto/rand"
	"encoding/hex"
	"strings"
)

func GenerateCode(n int) (string, error) {
	byt := make([]byte, n)
	if _, err := rand.Read(byt); err != nil {
		return "", err
	}
	return strings.ToUpper(hex.EncodeToString(byt)), nil
}

// GenerateTicketCode returns a printable code like "TKT-9F2A61C0B3D4".
func GenerateTicketCode() (string, error) {
	code, err := GenerateCode(6)
	if err != nil {
		return "", err
	}
	return "TKT-" + code, nil
}
