package constants

// Attachment limits enforced by the attachment service before anything
// touches disk.
const (
	MaxAttachmentSize = 10 * 1024 * 1024 // 10 MiB
	MaxFilenameLength = 255
	MinDescriptionLen = 1
	MaxDescriptionLen = 1000
)

// AllowedExtensions is the extension allow-list, lowercase with leading
// dot. Executables are deliberately absent.
var AllowedExtensions = map[string]bool{
	// documents
	".pdf": true, ".doc": true, ".docx": true, ".xls": true,
	".xlsx": true, ".ppt": true, ".pptx": true, ".txt": true,
	".md": true, ".csv": true, ".rtf": true, ".odt": true,
	// images
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true,
	".bmp": true, ".svg": true, ".webp": true,
	// archives
	".zip": true, ".tar": true, ".gz": true, ".rar": true, ".7z": true,
}
