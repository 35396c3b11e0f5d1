package clientcli

// UploadOptions configures an upload operation.
type UploadOptions struct {
	LocalPath   string
	Path        string // remote directory, checked against the bucket's allowed paths
	Bucket      string // empty = server default
	FileName    string // optional, single-file uploads only; server generates one if empty
	ContentType string // optional, auto-detect if empty
	Overwrite   bool
	Recursive   bool
}

// UploadResult represents the result of uploading a single file.
type UploadResult struct {
	LocalPath string `json:"local_path"`
	Path      string `json:"path"`
	URL       string `json:"url"`
	FileName  string `json:"file_name"`
	Size      int64  `json:"size_bytes"`
	Err       error  `json:"-"` // nil on success
}

// Bucket is a bucket visible to the caller.
type Bucket struct {
	Name         string   `json:"name"`
	Alias        string   `json:"alias"`
	Provider     string   `json:"provider"`
	BucketName   string   `json:"bucketName,omitempty"`
	Region       string   `json:"region,omitempty"`
	Endpoint     string   `json:"endpoint,omitempty"`
	CustomDomain string   `json:"customDomain,omitempty"`
	BindingName  string   `json:"bindingName,omitempty"`
	AllowedPaths []string `json:"allowedPaths"`
}

// serverUpload mirrors the JSON response of POST /upload.
type serverUpload struct {
	Success  bool   `json:"success"`
	URL      string `json:"url"`
	FileName string `json:"fileName"`
}

// serverBuckets mirrors the JSON response of GET /buckets.
type serverBuckets struct {
	Success bool     `json:"success"`
	Buckets []Bucket `json:"buckets"`
}

// serverError mirrors the JSON error body.
type serverError struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message"`
}
