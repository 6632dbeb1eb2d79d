package storage

import "time"

// MinIOConfig holds MinIO connection configuration.
type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
	Bucket    string
	Region    string
	// URLExpiry bounds the lifetime of presigned download links.
	URLExpiry time.Duration
}

// Enabled reports whether an endpoint is configured.
func (c *MinIOConfig) Enabled() bool {
	return c != nil && c.Endpoint != ""
}
