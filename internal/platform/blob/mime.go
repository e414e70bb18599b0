package blob

import (
	"log"
	"mime"
)

// ContentTypeXLSX is the media type of Office Open XML spreadsheets.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func init() {
	ensureMimeType(".xlsx", ContentTypeXLSX)
}

func ensureMimeType(ext, typ string) {
	if mime.TypeByExtension(ext) != "" {
		return
	}
	if err := mime.AddExtensionType(ext, typ); err != nil {
		log.Printf("blob: failed to register MIME type for %s: %v", ext, err)
	}
}
