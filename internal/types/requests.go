package types

// OpenSessionRequest carries the shared-secret PIN.
type OpenSessionRequest struct {
	Pin string `json:"pin"`
}

type RevokeSessionRequest struct {
	Token string `json:"token"`
}

// ExportRequest describes the time range and selector of a bulk export.
type ExportRequest struct {
	Start       string            `json:"start"`
	End         string            `json:"end"`
	Measurement string            `json:"measurement,omitempty"`
	Filters     map[string]string `json:"filters,omitempty"`
	Datasets    []string          `json:"datasets,omitempty"`
}

// UploadRequest carries a base64-encoded artifact for object storage.
type UploadRequest struct {
	FileContent string         `json:"fileContent"`
	FileName    string         `json:"fileName"`
	FileHash    string         `json:"fileHash,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

type AnchorRequest struct {
	FileSHA256  string         `json:"fileSha256"`
	DatasetName string         `json:"datasetName"`
	TimeStart   string         `json:"timeStart"`
	TimeEnd     string         `json:"timeEnd"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// ConfigUpdateRequest updates the env-file backed configuration.
// Omitted sections and fields are left untouched.
type ConfigUpdateRequest struct {
	Influx *struct {
		URL    string `json:"url,omitempty"`
		Org    string `json:"org,omitempty"`
		Bucket string `json:"bucket,omitempty"`
		Token  string `json:"token,omitempty"`
	} `json:"influx,omitempty"`
	Blockchain *struct {
		RPCURL          string `json:"rpcUrl,omitempty"`
		ContractAddress string `json:"contractAddress,omitempty"`
		PrivateKey      string `json:"privateKey,omitempty"`
	} `json:"blockchain,omitempty"`
	Connector *struct {
		Port              int    `json:"port,omitempty"`
		SessionTTLSeconds int    `json:"sessionTtlSeconds,omitempty"`
		LogLevel          string `json:"logLevel,omitempty"`
		AllowedOrigins    string `json:"allowedOrigins,omitempty"`
	} `json:"connector,omitempty"`
}
