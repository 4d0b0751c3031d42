package tools

// Tool describes a named transformation capability and its submission limits.
// Descriptors are static configuration; the orchestrator consults them for
// validation only and never mutates them.
type Tool struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Category      string `json:"category"`
	MaxFiles      int    `json:"max_files"`
	MaxFileSizeMB int64  `json:"max_file_size_mb"`
}

// MaxFileSizeBytes returns the per-file size limit in bytes.
func (t Tool) MaxFileSizeBytes() int64 {
	return t.MaxFileSizeMB * 1024 * 1024
}

// Generator tools take no input files (MaxFiles == 0); everything else
// requires at least one upload.
var registry = map[string]Tool{
	// PDF tools
	"merge-pdf":        {ID: "merge-pdf", Name: "Merge PDF", Category: "pdf", MaxFiles: 20, MaxFileSizeMB: 50},
	"split-pdf":        {ID: "split-pdf", Name: "Split PDF", Category: "pdf", MaxFiles: 1, MaxFileSizeMB: 50},
	"extract-pages":    {ID: "extract-pages", Name: "Extract Pages", Category: "pdf", MaxFiles: 1, MaxFileSizeMB: 50},
	"delete-pages":     {ID: "delete-pages", Name: "Delete Pages", Category: "pdf", MaxFiles: 1, MaxFileSizeMB: 50},
	"rotate-pages":     {ID: "rotate-pages", Name: "Rotate Pages", Category: "pdf", MaxFiles: 1, MaxFileSizeMB: 50},
	"compress-pdf":     {ID: "compress-pdf", Name: "Compress PDF", Category: "pdf", MaxFiles: 1, MaxFileSizeMB: 100},
	"add-watermark":    {ID: "add-watermark", Name: "Add Watermark", Category: "pdf", MaxFiles: 1, MaxFileSizeMB: 50},
	"remove-metadata":  {ID: "remove-metadata", Name: "Remove Metadata", Category: "pdf", MaxFiles: 1, MaxFileSizeMB: 50},
	"jpg-to-pdf":       {ID: "jpg-to-pdf", Name: "JPG to PDF", Category: "pdf", MaxFiles: 20, MaxFileSizeMB: 25},
	"images-to-pdf":    {ID: "images-to-pdf", Name: "Images to PDF", Category: "pdf", MaxFiles: 20, MaxFileSizeMB: 25},

	// Image tools
	"convert-image":     {ID: "convert-image", Name: "Convert Image", Category: "images", MaxFiles: 10, MaxFileSizeMB: 25},
	"compress-image":    {ID: "compress-image", Name: "Compress Image", Category: "images", MaxFiles: 10, MaxFileSizeMB: 25},
	"resize-image":      {ID: "resize-image", Name: "Resize Image", Category: "images", MaxFiles: 10, MaxFileSizeMB: 25},
	"crop-image":        {ID: "crop-image", Name: "Crop Image", Category: "images", MaxFiles: 1, MaxFileSizeMB: 25},
	"rotate-flip-image": {ID: "rotate-flip-image", Name: "Rotate / Flip Image", Category: "images", MaxFiles: 10, MaxFileSizeMB: 25},
	"remove-exif":       {ID: "remove-exif", Name: "Remove EXIF", Category: "images", MaxFiles: 10, MaxFileSizeMB: 25},
	"watermark-image":   {ID: "watermark-image", Name: "Watermark Image", Category: "images", MaxFiles: 10, MaxFileSizeMB: 25},

	// Archive tools
	"zip-create":    {ID: "zip-create", Name: "Create ZIP", Category: "archive", MaxFiles: 50, MaxFileSizeMB: 100},
	"zip-extract":   {ID: "zip-extract", Name: "Extract ZIP", Category: "archive", MaxFiles: 1, MaxFileSizeMB: 200},
	"tar-gz-create": {ID: "tar-gz-create", Name: "Create TAR.GZ", Category: "archive", MaxFiles: 50, MaxFileSizeMB: 100},

	// Text and extras
	"case-converter":       {ID: "case-converter", Name: "Case Converter", Category: "text", MaxFiles: 1, MaxFileSizeMB: 10},
	"word-counter":         {ID: "word-counter", Name: "Word Counter", Category: "text", MaxFiles: 1, MaxFileSizeMB: 10},
	"extract-emails":       {ID: "extract-emails", Name: "Extract Emails", Category: "text", MaxFiles: 1, MaxFileSizeMB: 10},
	"extract-urls":         {ID: "extract-urls", Name: "Extract URLs", Category: "text", MaxFiles: 1, MaxFileSizeMB: 10},
	"base64-encode-decode": {ID: "base64-encode-decode", Name: "Base64 Encode / Decode", Category: "text", MaxFiles: 1, MaxFileSizeMB: 25},
	"url-encode-decode":    {ID: "url-encode-decode", Name: "URL Encode / Decode", Category: "text", MaxFiles: 1, MaxFileSizeMB: 10},
	"hash-generator":       {ID: "hash-generator", Name: "Hash Generator", Category: "text", MaxFiles: 1, MaxFileSizeMB: 100},
	"json-formatter":       {ID: "json-formatter", Name: "JSON Formatter", Category: "text", MaxFiles: 1, MaxFileSizeMB: 25},
	"csv-json-converter":   {ID: "csv-json-converter", Name: "CSV / JSON Converter", Category: "text", MaxFiles: 1, MaxFileSizeMB: 25},
	"uuid-generator":       {ID: "uuid-generator", Name: "UUID Generator", Category: "extras", MaxFiles: 0, MaxFileSizeMB: 0},
	"password-generator":   {ID: "password-generator", Name: "Password Generator", Category: "extras", MaxFiles: 0, MaxFileSizeMB: 0},
	"qr-code-generator":    {ID: "qr-code-generator", Name: "QR Code Generator", Category: "extras", MaxFiles: 0, MaxFileSizeMB: 0},
	"barcode-generator":    {ID: "barcode-generator", Name: "Barcode Generator", Category: "extras", MaxFiles: 0, MaxFileSizeMB: 0},
	"unix-time-converter":  {ID: "unix-time-converter", Name: "Unix Time Converter", Category: "extras", MaxFiles: 0, MaxFileSizeMB: 0},
	"file-size-converter":  {ID: "file-size-converter", Name: "File Size Converter", Category: "extras", MaxFiles: 0, MaxFileSizeMB: 0},
}

// ByID returns the descriptor for a tool id.
// Parameters:
//   - id: tool identifier as submitted by the client.
// Returns:
//   - Tool: descriptor if registered.
//   - bool: false when the id is unknown.
func ByID(id string) (Tool, bool) {
	t, ok := registry[id]
	return t, ok
}

// All returns every registered tool descriptor.
func All() []Tool {
	out := make([]Tool, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	return out
}
