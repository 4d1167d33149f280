package dto

// SignUploadRequest asks for client-side upload parameters
type SignUploadRequest struct {
	Folder       string `json:"folder"`
	PublicID     string `json:"public_id"`
	ResourceType string `json:"resource_type"` // image, video or auto
	Overwrite    *bool  `json:"overwrite"`
	Invalidate   bool   `json:"invalidate"`
}

// SignUploadResponse carries everything the client needs to upload directly
// to the media CDN. Params differ between signed and unsigned mode.
type SignUploadResponse struct {
	Mode      string                 `json:"mode"` // signed or unsigned
	UploadURL string                 `json:"upload_url"`
	Params    map[string]interface{} `json:"params"`
}
