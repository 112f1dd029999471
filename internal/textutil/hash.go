package textutil

import (
	"crypto/md5"
	"encoding/hex"
)

// FolderHashLength is the number of hex characters kept from the title digest.
const FolderHashLength = 10

// FolderHash returns the source folder identifier for a title.
func FolderHash(title string) string {
	sum := md5.Sum([]byte(title))
	return hex.EncodeToString(sum[:])[:FolderHashLength]
}
