package domain

// UploadKind says what an uploaded file will be referenced from.
type UploadKind string

const (
	UploadCover        UploadKind = "cover"
	UploadDocument     UploadKind = "document"
	UploadVerification UploadKind = "verification"
)

func (k UploadKind) Valid() bool {
	switch k {
	case UploadCover, UploadDocument, UploadVerification:
		return true
	}
	return false
}

// Upload is a stored file. Reference is used verbatim in Book.CoverImage,
// Book.PDFFile and VerificationRequest.Image.
type Upload struct {
	Reference   string     `json:"reference"`
	URL         string     `json:"url"`
	Kind        UploadKind `json:"kind"`
	ContentType string     `json:"contentType"`
	Size        int64      `json:"size"`
}
