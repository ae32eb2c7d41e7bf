package types

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

type HealthResponse struct {
	OK       bool   `json:"ok"`
	Version  string `json:"version"`
	LogLevel string `json:"logLevel"`
}

// OpenSessionResponse echoes the bearer token and its absolute expiry
// in Unix milliseconds.
type OpenSessionResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
}

type ExportAcceptedResponse struct {
	JobID string `json:"jobId"`
}

type UploadResponse struct {
	Success  bool              `json:"success"`
	S3Key    string            `json:"s3Key"`
	S3URL    string            `json:"s3Url"`
	FileName string            `json:"fileName"`
	FileSize int               `json:"fileSize"`
	Metadata map[string]string `json:"metadata"`
}

type PresignedURLResponse struct {
	Success   bool   `json:"success"`
	S3Key     string `json:"s3Key"`
	S3URL     string `json:"s3Url,omitempty"`
	URL       string `json:"downloadUrl,omitempty"`
	ExpiresIn int    `json:"expiresIn"`
}

type ConfigUpdateResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// ConfigView is the sanitized runtime configuration: secrets are
// reduced to presence flags.
type ConfigView struct {
	Influx struct {
		URL    string `json:"url,omitempty"`
		Org    string `json:"org,omitempty"`
		Bucket string `json:"bucket,omitempty"`
	} `json:"influx"`
	Blockchain struct {
		RPCURL          string `json:"rpcUrl,omitempty"`
		ContractAddress string `json:"contractAddress,omitempty"`
		HasPrivateKey   bool   `json:"hasPrivateKey"`
	} `json:"blockchain"`
	Connector struct {
		Port              string   `json:"port"`
		SessionTTLSeconds int      `json:"sessionTtlSeconds"`
		LogLevel          string   `json:"logLevel"`
		AllowedOrigins    []string `json:"allowedOrigins"`
	} `json:"connector"`
}
